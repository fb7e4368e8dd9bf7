package aor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daedaluz/gorig/rig"
	"github.com/daedaluz/gorig/serial"
)

func TestSetFreqEncodesTenDigitZeroPaddedHzAndAcceptsEmptyAck(t *testing.T) {
	var port *serial.MemPort
	port = serial.NewMemPort(func(written []byte) []byte { return []byte{'\r'} })
	r := Open(port)

	require.NoError(t, r.SetFreq(context.Background(), 14_074_000))
	require.Equal(t, []byte("RF0014074000\r"), port.Writes[0])
}

func TestSetFreqSurfacesNonEmptyReplyAsRejection(t *testing.T) {
	port := serial.NewMemPort(func(written []byte) []byte { return []byte("?\r") })
	r := Open(port)

	err := r.SetFreq(context.Background(), 14_074_000)
	require.Error(t, err)
}

func TestGetFreqQueriesRXAndParsesRFFieldFromTheReply(t *testing.T) {
	port := serial.NewMemPort(func(written []byte) []byte { return []byte("RF0014074000\r") })
	r := Open(port)

	hz, err := r.GetFreq(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(14_074_000), hz)
	require.Equal(t, []byte("RX\r"), port.Writes[0])
}

func TestModeRoundTripsForEverySupportedMode(t *testing.T) {
	for m, w := range modeToByte {
		var port *serial.MemPort
		port = serial.NewMemPort(func(written []byte) []byte { return []byte("MD" + string(w) + "\r") })
		r := Open(port)

		require.NoError(t, r.SetMode(context.Background(), m))
		require.Equal(t, []byte("MD"+string(w)+"\r"), port.Writes[0])

		got, err := r.GetMode(context.Background())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
}

func TestSetModeRejectsUnsupportedMode(t *testing.T) {
	port := serial.NewMemPort(func([]byte) []byte { return nil })
	r := Open(port)
	err := r.SetMode(context.Background(), rig.ModeRTTY)
	require.Error(t, err)
}

func TestDecodeAR7030FreqAppliesReferenceScaleFactor(t *testing.T) {
	hz, err := DecodeAR7030Freq([]byte{0x28, 0xa7, 0x7e})
	require.NoError(t, err)
	require.Equal(t, int64(7_074_001), hz)
}

func TestDecodeAR7030FreqRejectsWrongLength(t *testing.T) {
	_, err := DecodeAR7030Freq([]byte{0x00, 0x74})
	require.Error(t, err)
}
