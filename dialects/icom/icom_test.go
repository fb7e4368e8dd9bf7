package icom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daedaluz/gorig/rig"
	"github.com/daedaluz/gorig/serial"
)

func TestEncodeDecodeBCDFreqRoundTrip(t *testing.T) {
	hz := int64(14_074_000)
	bcd := encodeBCDFreq(hz)
	require.Equal(t, []byte{0x00, 0x40, 0x07, 0x14, 0x00}, bcd)

	got, err := decodeBCDFreq(bcd)
	require.NoError(t, err)
	require.Equal(t, hz, got)
}

func TestDecodeBCDFreqRejectsNonBCDNibbles(t *testing.T) {
	_, err := decodeBCDFreq([]byte{0x00, 0x00, 0x00, 0x00, 0xAF})
	require.Error(t, err)
}

func TestFrameLayout(t *testing.T) {
	r := &Rig{trxAddr: defaultTRX, ctrlAddr: defaultCtrl}
	wire := r.frame(cmdReadFreq, nil)
	require.Equal(t, []byte{preamble, preamble, defaultTRX, defaultCtrl, cmdReadFreq, terminator}, wire)
}

func TestGetFreqDecodesBCDReplyBody(t *testing.T) {
	wantHz := int64(14_074_000)
	bcd := encodeBCDFreq(wantHz)

	var port *serial.MemPort
	port = serial.NewMemPort(func(written []byte) []byte {
		reply := []byte{preamble, preamble, defaultCtrl, defaultTRX, cmdReadFreq}
		reply = append(reply, bcd...)
		reply = append(reply, terminator)
		return reply
	})
	r := Open(port)

	hz, err := r.GetFreq(context.Background())
	require.NoError(t, err)
	require.Equal(t, wantHz, hz)
	require.Len(t, port.Writes, 1)
	require.Equal(t, []byte{preamble, preamble, defaultTRX, defaultCtrl, cmdReadFreq, terminator}, port.Writes[0])
}

func TestSetModeRejectsUnsupportedMode(t *testing.T) {
	port := serial.NewMemPort(func([]byte) []byte { return nil })
	r := Open(port)
	err := r.SetMode(context.Background(), rig.ModeAMN)
	require.Error(t, err)
}

func TestGetModeDecodesWireByte(t *testing.T) {
	var port *serial.MemPort
	port = serial.NewMemPort(func(written []byte) []byte {
		return []byte{preamble, preamble, defaultCtrl, defaultTRX, cmdReadMode, modeWire[rig.ModeCW], 0x00, terminator}
	})
	r := Open(port)

	m, err := r.GetMode(context.Background())
	require.NoError(t, err)
	require.Equal(t, rig.ModeCW, m)
}

func TestSetPTTEncodesOnOff(t *testing.T) {
	var port *serial.MemPort
	port = serial.NewMemPort(func(written []byte) []byte {
		return []byte{preamble, preamble, defaultCtrl, defaultTRX, cmdSetPTT, terminator}
	})
	r := Open(port)

	require.NoError(t, r.SetPTT(context.Background(), true))
	require.Equal(t, []byte{preamble, preamble, defaultTRX, defaultCtrl, cmdSetPTT, 0x00, 0x01, terminator}, port.Writes[0])

	require.NoError(t, r.SetPTT(context.Background(), false))
	require.Equal(t, []byte{preamble, preamble, defaultTRX, defaultCtrl, cmdSetPTT, 0x00, 0x00, terminator}, port.Writes[1])
}
