// Package kenwood implements rig.AsciiDialect for the Kenwood TS
// family (TS-2000, TS-590S, TS-450): 11-digit frequency fields, a
// single mode character (1-9, B, D, E), and a bare "?;" that always means busy
// rather than rejected (spec §9 open question a's Kenwood side of the
// split).
package kenwood

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daedaluz/gorig/rig"
)

// Model IDs are namespaced under VendorKenwood (rig.MakeModelID) so
// they cannot collide with another manufacturer's own "450".
var (
	ModelTS2000 = rig.MakeModelID(rig.VendorKenwood, 2000)
	ModelTS590S = rig.MakeModelID(rig.VendorKenwood, 590)
	ModelTS450  = rig.MakeModelID(rig.VendorKenwood, 450)
)

var commonCommands = []string{
	"AI", "FA", "FB", "FN", "ID", "KY", "LV", "MC", "MD", "PC",
	"PS", "RX", "SH", "SP", "SC", "TX", "VS",
}

// Real Kenwood firmware has no dedicated anti-VOX command the way it
// does for VOX gain/delay ("VG"/"VD" in kenwood.c); anti-VOX only
// lives behind the EX-menu, written with the same "EX"+3-digit-menu+
// 4-digit-value shape kenwood.c's CTCSS-tone write uses
// ("EX%03d%04d", kenwood.c:4197). Menu numbers differ per model.
const (
	antiVoxMenuTS2000 = "EX008"
	antiVoxMenuTS590S = "EX014"
	antiVoxMenuTS450  = "EX009"
)

func init() {
	rig.Register(newTS2000())
	rig.Register(newTS590S())
	rig.Register(newTS450())
}

func newTS2000() *rig.CapsRecord {
	cmds := append(append([]string(nil), commonCommands...), antiVoxMenuTS2000)
	c := rig.NewCapsRecord(ModelTS2000, "TS-2000", "Kenwood", cmds)
	fillCommonCaps(c)
	c.MemoryChannels = 300
	return c
}

func newTS590S() *rig.CapsRecord {
	cmds := append(append([]string(nil), commonCommands...), antiVoxMenuTS590S)
	c := rig.NewCapsRecord(ModelTS590S, "TS-590S", "Kenwood", cmds)
	fillCommonCaps(c)
	c.MemoryChannels = 110
	return c
}

func newTS450() *rig.CapsRecord {
	cmds := append(append([]string(nil), commonCommands...), antiVoxMenuTS450)
	c := rig.NewCapsRecord(ModelTS450, "TS-450", "Kenwood", cmds)
	fillCommonCaps(c)
	c.MemoryChannels = 100
	return c
}

func fillCommonCaps(c *rig.CapsRecord) {
	c.Baud.Min, c.Baud.Max = 1200, 57600
	c.DataBits, c.StopBits = 8, 2
	c.WriteDelay = 0
	c.PostWriteDelay = 0
	c.Timeout = 2 * time.Second
	c.Retry = 3
	c.Terminator = ";"
	c.MaxReplyLen = 64
	c.IFRespLen = 38

	c.RXRanges = []rig.FreqRange{
		{LowHz: 100_000, HighHz: 60_000_000},
		{LowHz: 142_000_000, HighHz: 152_000_000},
	}
	c.TXRanges = []rig.FreqRange{
		{LowHz: 1_800_000, HighHz: 54_000_000},
		{LowHz: 144_000_000, HighHz: 148_000_000},
	}
	c.TuningSteps = []int64{1, 10, 100, 1_000}

	for mode, steps := range map[rig.Mode][]rig.PassbandStep{
		rig.ModeLSB: {{Hz: 1800, WireIndex: 1}, {Hz: 2400, WireIndex: 2}, {Hz: 3000, WireIndex: 3}},
		rig.ModeUSB: {{Hz: 1800, WireIndex: 1}, {Hz: 2400, WireIndex: 2}, {Hz: 3000, WireIndex: 3}},
		rig.ModeCW:  {{Hz: 200, WireIndex: 1}, {Hz: 500, WireIndex: 2}, {Hz: 2400, WireIndex: 3}},
		rig.ModeFM:  {{Hz: 12000, WireIndex: 1}, {Hz: 15000, WireIndex: 2}},
		rig.ModeAM:  {{Hz: 6000, WireIndex: 1}, {Hz: 9000, WireIndex: 2}},
	} {
		c.Filters[mode] = steps
	}

	modeWire := map[rig.Mode]byte{
		rig.ModeLSB: '1', rig.ModeUSB: '2', rig.ModeCW: '3', rig.ModeFM: '4',
		rig.ModeAM: '5', rig.ModeRTTY: '6', rig.ModeCWR: '7', rig.ModePKTLSB: '8',
		rig.ModePKTUSB: '9', rig.ModeFMN: 'B', rig.ModePKTFMN: 'D', rig.ModeRTTYR: 'E',
	}
	for m, w := range modeWire {
		c.ModeWire[m] = w
		c.WireMode[w] = m
	}

	c.SetFuncs = rig.FuncAI | rig.FuncVOX | rig.FuncNB | rig.FuncRIT | rig.FuncXIT
	c.GetFuncs = c.SetFuncs
	c.SetLevels = rig.LevelRFPower | rig.LevelMicGain | rig.LevelAF | rig.LevelSQL
	c.GetLevels = c.SetLevels | rig.LevelStrength | rig.LevelSWR
}

// Dialect is the stateless rig.AsciiDialect singleton every Kenwood
// CapsRecord shares.
type Dialect struct{}

var _ rig.AsciiDialect = Dialect{}

func (Dialect) Name() string       { return "kenwood" }
func (Dialect) Terminator() string { return ";" }
func (Dialect) MaxReplyLen() int   { return 64 }
func (Dialect) IFCommand() string  { return "IF" }

func (Dialect) IsSetCommand(cmd string) bool {
	switch cmd {
	case "TX", "RX":
		return true
	}
	return len(cmd) > 2
}

// QuestionMarkMeansRejected is always false on Kenwood: a bare "?;" is
// always "busy, try again", never a refusal (spec §9 open question a).
func (Dialect) QuestionMarkMeansRejected(cmd string, caps *rig.CapsRecord) bool {
	return false
}

func (Dialect) VerifyCommand(cmd string, caps *rig.CapsRecord) (string, int) {
	if caps.FastSetCommands {
		return "", 0
	}
	mnem := cmd
	if len(mnem) > 2 {
		mnem = cmd[:2]
	}
	switch mnem {
	case "TX", "RX":
		return "", 0
	}
	return mnem, 2
}

func (Dialect) EncodeFreq(hz int64, caps *rig.CapsRecord) (string, error) {
	return fmt.Sprintf("%011d", hz), nil
}

func (Dialect) DecodeFreq(wire string, caps *rig.CapsRecord) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(wire), 10, 64)
}

func (Dialect) EncodeMode(m rig.Mode, caps *rig.CapsRecord) (string, error) {
	w, ok := caps.ModeWire[m]
	if !ok {
		return "", fmt.Errorf("mode %s unsupported on %s", m, caps.ModelName)
	}
	return string(w), nil
}

func (Dialect) DecodeMode(wire string, caps *rig.CapsRecord) (rig.Mode, error) {
	if len(wire) == 0 {
		return 0, fmt.Errorf("empty mode wire value")
	}
	m, ok := caps.WireMode[wire[0]]
	if !ok {
		return 0, fmt.Errorf("unrecognized mode byte %q", wire[0])
	}
	return m, nil
}

func (Dialect) EncodeWidth(mode rig.Mode, requestedHz int, caps *rig.CapsRecord) (string, int, error) {
	steps := caps.Filters[mode]
	if len(steps) == 0 {
		return "", 0, fmt.Errorf("no passband table for mode %s", mode)
	}
	for _, s := range steps {
		if s.Hz >= requestedHz {
			return fmt.Sprintf("%02d", s.WireIndex), s.Hz, nil
		}
	}
	last := steps[len(steps)-1]
	return fmt.Sprintf("%02d", last.WireIndex), last.Hz, nil
}

func (Dialect) DecodeWidth(mode rig.Mode, wire string, caps *rig.CapsRecord) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(wire))
	if err != nil {
		return 0, err
	}
	for _, s := range caps.Filters[mode] {
		if s.WireIndex == idx {
			return s.Hz, nil
		}
	}
	return 0, fmt.Errorf("wire index %d not in passband table for mode %s", idx, mode)
}

// OpenSequence turns AI off and detects the TS-2000's ID-echo quirk,
// per the supplemented behavior in original kenwood.c's
// ID-string/ID-number handling this dialect generalizes. It reads no
// firmware revision: no TS-590S quirk bits are set.
func (Dialect) OpenSequence(ctx context.Context, r *rig.AsciiRig) error {
	if _, err := r.WriteCommand(ctx, "AI0", false); err != nil {
		return err
	}
	if r.Caps().ModelID != ModelTS2000 {
		return nil
	}
	frame, err := r.WriteCommand(ctx, "ID", true)
	if err == nil && strings.HasPrefix(strings.TrimSuffix(string(frame.Reply), ";"), "ID") {
		return nil
	}
	// Some TS-2000 firmware gives no usable answer to a bare "ID" query
	// (silence, or the frequency echo) while still answering "FA";
	// synthesize the expected "ID019" form rather than surfacing a
	// protocol error.
	if _, faErr := r.WriteCommand(ctx, "FA", true); faErr != nil {
		if err == nil {
			err = faErr
		}
		return err
	}
	_, werr := r.WriteCommand(ctx, "ID019", false)
	return werr
}

func (Dialect) CloseSequence(ctx context.Context, r *rig.AsciiRig) error {
	return nil
}

func (Dialect) BeforeSetFreq(ctx context.Context, r *rig.AsciiRig, vfo rig.VFO, hz int64, bandChange bool) error {
	return nil
}

func (Dialect) AfterSetFreq(ctx context.Context, r *rig.AsciiRig, vfo rig.VFO, hz int64, bandChange bool) error {
	return nil
}

func (Dialect) AfterSetPTT(ctx context.Context, r *rig.AsciiRig, on bool) error {
	return nil
}

// AntiVoxCommand returns the EX-menu mnemonic for caps' model. The
// TS-450's earlier firmware only ever exposed this as a write — the
// same read/write asymmetry the reference driver shows for VOX gain
// and VOX delay, which have a set_level case (kenwood.c:3333,3323)
// but no matching get_level case at all — so GetAntiVox is
// unavailable there; TS-2000 and TS-590S read and write through the
// same bare mnemonic.
func (Dialect) AntiVoxCommand(caps *rig.CapsRecord, isGet bool) string {
	switch caps.ModelID {
	case ModelTS590S:
		return antiVoxMenuTS590S
	case ModelTS450:
		if isGet {
			return ""
		}
		return antiVoxMenuTS450
	default:
		return antiVoxMenuTS2000
	}
}

func (Dialect) MorseFrames(text string, caps *rig.CapsRecord) []string {
	const chunkLen = 24
	var frames []string
	for len(text) > 0 {
		chunk := text
		if len(chunk) > chunkLen {
			chunk = chunk[:chunkLen]
			text = text[chunkLen:]
		} else {
			text = ""
		}
		frames = append(frames, "KY "+chunk)
	}
	return frames
}

func (Dialect) PowerOnCommands() (string, string, string) {
	return "PS1", "PS1", "FA"
}

func (Dialect) PowerOffCommand() string {
	return "PS0"
}
