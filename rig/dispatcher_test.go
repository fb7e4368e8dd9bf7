package rig_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daedaluz/gorig/dialects/kenwood"
	"github.com/daedaluz/gorig/dialects/yaesu"
	"github.com/daedaluz/gorig/rig"
	"github.com/daedaluz/gorig/serial"
)

func ft991(t *testing.T) *rig.CapsRecord {
	caps, ok := rig.Lookup(yaesu.ModelFT991)
	require.True(t, ok, "FT-991 must be registered by dialects/yaesu's init()")
	return caps
}

func ft450(t *testing.T) *rig.CapsRecord {
	caps, ok := rig.Lookup(yaesu.ModelFT450)
	require.True(t, ok)
	return caps
}

func ts450(t *testing.T) *rig.CapsRecord {
	caps, ok := rig.Lookup(kenwood.ModelTS450)
	require.True(t, ok)
	return caps
}

func ts2000(t *testing.T) *rig.CapsRecord {
	caps, ok := rig.Lookup(kenwood.ModelTS2000)
	require.True(t, ok)
	return caps
}

// scriptedPort maps the exact bytes written to a canned reply,
// keyed by the command with its terminator already attached.
func scriptedPort(t *testing.T, script map[string]string) *serial.MemPort {
	var p *serial.MemPort
	p = serial.NewMemPort(func(written []byte) []byte {
		reply, ok := script[string(written)]
		if !ok {
			return nil
		}
		return []byte(reply)
	})
	return p
}

// Scenario 1: set then get frequency round-trip.
func TestSetThenGetFreqRoundTrip(t *testing.T) {
	port := scriptedPort(t, map[string]string{
		"AI0;":         "",
		"FA;":          "FA014074000;",
	})
	r, err := rig.Open(context.Background(), port, ft991(t), yaesu.Dialect{})
	require.NoError(t, err)

	require.NoError(t, r.SetFreq(context.Background(), rig.MainA, 14_074_000))
	require.Equal(t, "FA014074000;", string(port.Writes[len(port.Writes)-2]))

	hz, err := r.GetFreq(context.Background(), rig.MainA)
	require.NoError(t, err)
	require.Equal(t, int64(14_074_000), hz)
}

// Scenario 2: band-change bandstack settle on the FT-991.
func TestBandChangeEmitsBandstackRecall(t *testing.T) {
	port := scriptedPort(t, map[string]string{
		"AI0;": "",
		"FA;":  "FA014074000;",
	})
	r, err := rig.Open(context.Background(), port, ft991(t), yaesu.Dialect{})
	require.NoError(t, err)

	require.NoError(t, r.SetFreq(context.Background(), rig.MainA, 3_573_000))
	start := time.Now()
	require.NoError(t, r.SetFreq(context.Background(), rig.MainA, 14_074_000))
	elapsed := time.Since(start)

	var sawBandStack bool
	for _, w := range port.Writes {
		if string(w) == "BS05;" {
			sawBandStack = true
		}
	}
	require.True(t, sawBandStack, "crossing from 80m to 20m must recall bandstack register 5")
	require.GreaterOrEqual(t, elapsed, 500*time.Millisecond, "a bandstack recall must settle for 500ms")
}

// Scenario 3: power-on dance.
func TestPowerOnDance(t *testing.T) {
	port := scriptedPort(t, map[string]string{
		"AI0;": "",
		"PS1;": "",
		"FA;":  "FA014074000;",
		"PS;":  "PS1;",
	})
	r, err := rig.Open(context.Background(), port, ft991(t), yaesu.Dialect{})
	require.NoError(t, err)

	require.NoError(t, r.SetPowerstat(context.Background(), rig.PowerOn))

	var ps1Count int
	for _, w := range port.Writes {
		if string(w) == "PS1;" {
			ps1Count++
		}
	}
	require.Equal(t, 2, ps1Count, "PS1 is written, slept on, then written again")

	stat, err := r.GetPowerstat(context.Background())
	require.NoError(t, err)
	require.Equal(t, rig.PowerOn, stat)
}

// Scenario 4: rejected command classification on the TS-450.
func TestTS450PowerstatRejectionLatches(t *testing.T) {
	port := scriptedPort(t, map[string]string{
		"AI0;": "",
		"PS;":  "N;",
	})
	r, err := rig.Open(context.Background(), port, ts450(t), kenwood.Dialect{})
	require.NoError(t, err)

	_, err1 := r.GetPowerstat(context.Background())
	require.Error(t, err1)
	var gerr1 *rig.Error
	require.ErrorAs(t, err1, &gerr1)
	require.Equal(t, rig.KindUnavailable, gerr1.Kind)

	writesAfterFirst := len(port.Writes)

	_, err2 := r.GetPowerstat(context.Background())
	require.Error(t, err2)
	require.Equal(t, writesAfterFirst, len(port.Writes), "a latched rejection must not touch the wire again")
}

// Scenario 5: repeater offset encoding by band.
func TestRepeaterOffsetEncodingByBand(t *testing.T) {
	t.Run("FT-991 on 2m", func(t *testing.T) {
		port := scriptedPort(t, map[string]string{
			"AI0;":       "",
			"FA;":        "FA144300000;",
			"EX0820600;": "",
		})
		r, err := rig.Open(context.Background(), port, ft991(t), yaesu.Dialect{})
		require.NoError(t, err)
		require.NoError(t, r.SetFreq(context.Background(), rig.MainA, 144_300_000))
		require.NoError(t, r.SetRptrOffset(context.Background(), 600_000))

		var sawOffset bool
		for _, w := range port.Writes {
			if string(w) == "EX0820600;" {
				sawOffset = true
			}
		}
		require.True(t, sawOffset)
	})

	t.Run("FT-450 on 10m", func(t *testing.T) {
		port := scriptedPort(t, map[string]string{
			"AI0;":      "",
			"FA;":       "FA029600000;",
			"EX050006;": "",
		})
		r, err := rig.Open(context.Background(), port, ft450(t), yaesu.Dialect{})
		require.NoError(t, err)
		require.NoError(t, r.SetFreq(context.Background(), rig.MainA, 29_600_000))
		require.NoError(t, r.SetRptrOffset(context.Background(), 600_000))

		var sawOffset bool
		for _, w := range port.Writes {
			if string(w) == "EX050006;" {
				sawOffset = true
			}
		}
		require.True(t, sawOffset)
	})
}

// Scenario 6: morse playback length handling.
func TestSendMorseChunksAndPadsTo28Bytes(t *testing.T) {
	port := scriptedPort(t, map[string]string{
		"AI0;": "",
		"KY;":  "KY0;",
	})
	r, err := rig.Open(context.Background(), port, ft991(t), yaesu.Dialect{})
	require.NoError(t, err)

	require.NoError(t, r.SendMorse(context.Background(), "CQ CQ DE W1AW"))

	var frame string
	for _, w := range port.Writes {
		if strings.HasPrefix(string(w), "KY ") {
			frame = string(w)
		}
	}
	require.NotEmpty(t, frame, "must have written a KY text frame")
	want := "KY " + "CQ CQ DE W1AW" + strings.Repeat(" ", 28-len("CQ CQ DE W1AW")) + ";"
	require.Equal(t, want, frame)
}

// Scenario 7: anti-VOX get/set through the per-model EX-menu override,
// including a model where get and set diverge.
func TestAntiVoxUsesPerModelMenuMnemonics(t *testing.T) {
	t.Run("TS-2000 shares one mnemonic for get and set", func(t *testing.T) {
		port := scriptedPort(t, map[string]string{
			"AI0;":       "",
			"ID;":        "ID019;",
			"EX0080005;": "",
			"EX;":        "EX0080005;",
			"EX008;":     "EX0080005;",
		})
		r, err := rig.Open(context.Background(), port, ts2000(t), kenwood.Dialect{})
		require.NoError(t, err)

		require.NoError(t, r.SetAntiVox(context.Background(), 5))
		got, err := r.GetAntiVox(context.Background())
		require.NoError(t, err)
		require.Equal(t, 5, got)
	})

	t.Run("TS-450 can set anti-VOX but not read it back", func(t *testing.T) {
		port := scriptedPort(t, map[string]string{
			"AI0;":       "",
			"EX0090003;": "",
			"EX;":        "EX0090003;",
		})
		r, err := rig.Open(context.Background(), port, ts450(t), kenwood.Dialect{})
		require.NoError(t, err)

		require.NoError(t, r.SetAntiVox(context.Background(), 3))
		_, err = r.GetAntiVox(context.Background())
		require.Error(t, err, "TS-450's AntiVoxCommand reports get as unavailable")
	})
}
