package rig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIFDecodesFrequencyTXVFOAndSplit(t *testing.T) {
	// 11-digit freq, then padding out to byte 32 for the split flag,
	// matching the reference driver's info[28]/[29]/[30]/[32] layout.
	freq := "00014074000"            // bytes 0-10
	padding := strings.Repeat("0", 28-len(freq)) // bytes 11-27
	tail := "1" + "2" + "0" + "0" + "1"          // bytes 28-32: tx, mode, vfo, filler, split
	body := freq + padding + tail
	raw := []byte("IF" + body + ";")

	hz, txOn, vfoDigit, split, err := ParseIF(raw)
	require.NoError(t, err)
	require.Equal(t, int64(14_074_000), hz)
	require.True(t, txOn)
	require.Equal(t, byte('0'), vfoDigit)
	require.True(t, split)
}

func TestParseIFShortFrameSkipsSplitWithoutError(t *testing.T) {
	freq := "00014074000"
	body := freq + strings.Repeat("0", 20) // 31 bytes total: too short for byte 32
	raw := []byte("IF" + body + ";")

	_, _, _, split, err := ParseIF(raw)
	require.NoError(t, err)
	require.False(t, split)
}

func TestParseIFRejectsTooShortFrame(t *testing.T) {
	_, _, _, _, err := ParseIF([]byte("IF123;"))
	require.Error(t, err)
}
