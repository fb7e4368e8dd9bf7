package rig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheServesFreshFreqWithinTTL(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.SetClock(func() time.Time { return now })

	c.WriteFreq(MainA, 14_074_000)
	hz, age, ok := c.ReadFreq(MainA)
	require.True(t, ok)
	require.Equal(t, int64(14_074_000), hz)
	require.Zero(t, age)

	now = now.Add(499 * time.Millisecond)
	_, _, ok = c.ReadFreq(MainA)
	require.True(t, ok, "499ms is still within the 500ms TTL")

	now = now.Add(2 * time.Millisecond)
	_, _, ok = c.ReadFreq(MainA)
	require.False(t, ok, "501ms has aged out of the 500ms TTL")
}

func TestCacheSetTTLOverridesOneAttribute(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.SetClock(func() time.Time { return now })
	c.SetTTL("mode", 50*time.Millisecond)

	c.WriteFreq(MainA, 7_074_000)
	c.WriteMode(MainA, ModeUSB)

	now = now.Add(60 * time.Millisecond)
	_, _, freqOk := c.ReadFreq(MainA)
	_, _, modeOk := c.ReadMode(MainA)
	require.True(t, freqOk, "freq keeps the default 500ms TTL")
	require.False(t, modeOk, "mode's overridden 50ms TTL has already expired")
}

func TestInvalidateVFOClearsOnlyModeAndWidth(t *testing.T) {
	c := NewCache()
	c.WriteFreq(MainA, 14_074_000)
	c.WriteMode(MainA, ModeUSB)
	c.WriteWidth(MainA, 2400)

	c.InvalidateVFO(MainA)

	hz, _, freqOk := c.ReadFreq(MainA)
	_, _, modeOk := c.ReadMode(MainA)
	_, _, widthOk := c.ReadWidth(MainA)

	require.True(t, freqOk, "freq survives a mode/width-only invalidation")
	require.Equal(t, int64(14_074_000), hz)
	require.False(t, modeOk)
	require.False(t, widthOk)
}

func TestInvalidateAllClearsEverything(t *testing.T) {
	c := NewCache()
	c.WriteFreq(MainA, 14_074_000)
	c.WriteMode(MainA, ModeUSB)
	c.WritePTT(true)
	c.WriteSplit(true)
	c.WriteIF([]byte("IF01407400000000+0000000000001500000;"))

	c.InvalidateAll()

	_, _, freqOk := c.ReadFreq(MainA)
	_, _, modeOk := c.ReadMode(MainA)
	ptt, _, pttOk := c.ReadPTT()
	split, _, splitOk := c.ReadSplit()
	_, ifOk := c.ReadIF()

	require.False(t, freqOk)
	require.False(t, modeOk)
	require.False(t, pttOk)
	require.False(t, splitOk)
	require.False(t, ifOk)
	require.False(t, ptt)
	require.False(t, split)
}

func TestInvalidateIFDropsOnlyTheRawFrame(t *testing.T) {
	c := NewCache()
	c.WriteFreq(MainA, 14_074_000)
	c.WriteIF([]byte("IF...;"))

	c.InvalidateIF()

	_, ifOk := c.ReadIF()
	_, _, freqOk := c.ReadFreq(MainA)
	require.False(t, ifOk)
	require.True(t, freqOk)
}
