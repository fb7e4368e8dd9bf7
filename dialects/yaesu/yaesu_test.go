package yaesu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daedaluz/gorig/rig"
)

func TestEncodeFreqProducesNineDigitField(t *testing.T) {
	caps, ok := rig.Lookup(ModelFT991)
	require.True(t, ok)

	wire, err := Dialect{}.EncodeFreq(14_074_000, caps)
	require.NoError(t, err)
	require.Equal(t, "014074000", wire)

	hz, err := Dialect{}.DecodeFreq(wire, caps)
	require.NoError(t, err)
	require.Equal(t, int64(14_074_000), hz)
}

func TestModeRoundTripsForEverySupportedMode(t *testing.T) {
	caps, ok := rig.Lookup(ModelFT991)
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

func TestEncodeWidthPicksFirstStepAtOrAboveRequested(t *testing.T) {
	caps, ok := rig.Lookup(ModelFT991)
	require.True(t, ok)
	d := Dialect{}

	wire, resolved, err := d.EncodeWidth(rig.ModeCW, 300, caps)
	require.NoError(t, err)
	require.Equal(t, 500, resolved)

	hz, err := d.DecodeWidth(rig.ModeCW, wire, caps)
	require.NoError(t, err)
	require.Equal(t, 500, hz)
}

func TestQuestionMarkGatingIsCommandDependent(t *testing.T) {
	d := Dialect{}
	require.True(t, d.QuestionMarkMeansRejected("EX0820600", nil), "EX-menu writes reject outright")
	require.False(t, d.QuestionMarkMeansRejected("FA014074000", nil), "a busy FA write should retry, not fail")
}

func TestVerifyCommandSkipsExMenusAndBandStackRecalls(t *testing.T) {
	d := Dialect{}
	probe, matchLen := d.VerifyCommand("EX0820600", &rig.CapsRecord{})
	require.Equal(t, "", probe)
	require.Equal(t, 0, matchLen)

	probe, matchLen = d.VerifyCommand("BS05", &rig.CapsRecord{})
	require.Equal(t, "", probe)
	require.Equal(t, 0, matchLen)

	probe, matchLen = d.VerifyCommand("FA014074000", &rig.CapsRecord{})
	require.Equal(t, "FA", probe)
	require.Equal(t, 2, matchLen)
}

func TestBandStackIndexFollowsHamBandEdges(t *testing.T) {
	require.Equal(t, 1, bandStackIndex(3_573_000))
	require.Equal(t, 5, bandStackIndex(14_074_000))
	require.Equal(t, 11, bandStackIndex(146_520_000))
}
