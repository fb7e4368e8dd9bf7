package kenwood

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daedaluz/gorig/rig"
)

func TestEncodeFreqProducesElevenDigitField(t *testing.T) {
	caps, ok := rig.Lookup(ModelTS2000)
	require.True(t, ok)
	d := Dialect{}

	wire, err := d.EncodeFreq(14_074_000, caps)
	require.NoError(t, err)
	require.Equal(t, "00014074000", wire)

	hz, err := d.DecodeFreq(wire, caps)
	require.NoError(t, err)
	require.Equal(t, int64(14_074_000), hz)
}

func TestModeRoundTripsForEverySupportedMode(t *testing.T) {
	caps, ok := rig.Lookup(ModelTS2000)
	require.True(t, ok)
	d := Dialect{}

	for m := range caps.ModeWire {
		wire, err := d.EncodeMode(m, caps)
		require.NoError(t, err)
		decoded, err := d.DecodeMode(wire, caps)
		require.NoError(t, err)
		require.Equal(t, m, decoded)
	}
}

func TestQuestionMarkAlwaysMeansBusy(t *testing.T) {
	d := Dialect{}
	require.False(t, d.QuestionMarkMeansRejected("FA014074000", nil))
	require.False(t, d.QuestionMarkMeansRejected("PS1", nil))
}

func TestVerifyCommandSkipsTXAndRX(t *testing.T) {
	d := Dialect{}
	probe, matchLen := d.VerifyCommand("TX", &rig.CapsRecord{})
	require.Equal(t, "", probe)
	require.Equal(t, 0, matchLen)

	probe, matchLen = d.VerifyCommand("RX", &rig.CapsRecord{})
	require.Equal(t, "", probe)
	require.Equal(t, 0, matchLen)
}

func TestMorseFramesChunkAtTwentyFourBytesUnpadded(t *testing.T) {
	d := Dialect{}
	frames := d.MorseFrames("CQ CQ DE W1AW TEST MESSAGE", &rig.CapsRecord{})
	require.Len(t, frames, 2)
	require.Equal(t, "KY CQ CQ DE W1AW TEST MESSA", frames[0])
	require.Equal(t, "KY GE", frames[1])
}
