// Package yaesu implements rig.AsciiDialect for the Yaesu "new CAT"
// family (FT-991, FT-450, FT-DX3000): 9-digit zero-padded frequency
// fields, a single hex-like mode digit, and the "?;" reply whose
// meaning — busy or rejected — is command-dependent rather than fixed
// (spec §9 open question a).
package yaesu

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daedaluz/gorig/rig"
)

// Model IDs are namespaced under VendorYaesu (rig.MakeModelID) so they
// cannot collide with another manufacturer's own "450" or "991".
var (
	ModelFT991    = rig.MakeModelID(rig.VendorYaesu, 991)
	ModelFT450    = rig.MakeModelID(rig.VendorYaesu, 450)
	ModelFTDX3000 = rig.MakeModelID(rig.VendorYaesu, 3000)
)

var commonCommands = []string{
	"AI", "BS", "EX050", "EX082", "FA", "FB", "FN", "ID", "KY",
	"LV", "MC", "MD", "PC", "PS", "RX", "SH", "SP", "SC", "TX", "VS",
}

// Anti-VOX lives behind its own EX-menu item (spec §4.3's per-model
// override table), and that menu number is not shared across models.
const (
	antiVoxMenuFT991    = "EX117"
	antiVoxMenuFT450    = "EX110"
	antiVoxMenuFTDX3000 = "EX125"
)

func init() {
	rig.Register(newFT991())
	rig.Register(newFT450())
	rig.Register(newFTDX3000())
}

func newFT991() *rig.CapsRecord {
	cmds := append(append([]string(nil), commonCommands...), antiVoxMenuFT991)
	c := rig.NewCapsRecord(ModelFT991, "FT-991", "Yaesu", cmds)
	fillCommonCaps(c)
	c.RptrOffsetTable = []rig.RptrOffsetEntry{
		{Band: rig.Band2m, Command: "EX082", StepHz: 1_000},
		{Band: rig.Band70cm, Command: "EX082", StepHz: 1_000},
	}
	return c
}

func newFT450() *rig.CapsRecord {
	cmds := append(append([]string(nil), commonCommands...), antiVoxMenuFT450)
	c := rig.NewCapsRecord(ModelFT450, "FT-450", "Yaesu", cmds)
	fillCommonCaps(c)
	c.RptrOffsetTable = []rig.RptrOffsetEntry{
		{Band: rig.BandAllHF, Command: "EX050", StepHz: 100_000},
	}
	return c
}

func newFTDX3000() *rig.CapsRecord {
	cmds := append(append([]string(nil), commonCommands...), antiVoxMenuFTDX3000)
	c := rig.NewCapsRecord(ModelFTDX3000, "FT-DX3000", "Yaesu", cmds)
	fillCommonCaps(c)
	return c
}

func fillCommonCaps(c *rig.CapsRecord) {
	c.Baud.Min, c.Baud.Max = 4800, 38400
	c.DataBits, c.StopBits = 8, 2
	c.WriteDelay = 0
	c.PostWriteDelay = 0
	c.Timeout = 2 * time.Second
	c.Retry = 3
	c.Terminator = ";"
	c.MaxReplyLen = 64
	c.IFRespLen = 27

	c.RXRanges = []rig.FreqRange{
		{LowHz: 30_000, HighHz: 56_000_000},
		{LowHz: 118_000_000, HighHz: 164_000_000},
		{LowHz: 420_000_000, HighHz: 470_000_000},
	}
	c.TXRanges = c.RXRanges
	c.TuningSteps = []int64{10, 100, 1_000, 10_000}

	for mode, steps := range map[rig.Mode][]rig.PassbandStep{
		rig.ModeLSB: {{Hz: 1800, WireIndex: 0}, {Hz: 2400, WireIndex: 1}, {Hz: 3000, WireIndex: 2}},
		rig.ModeUSB: {{Hz: 1800, WireIndex: 0}, {Hz: 2400, WireIndex: 1}, {Hz: 3000, WireIndex: 2}},
		rig.ModeCW:  {{Hz: 250, WireIndex: 0}, {Hz: 500, WireIndex: 1}, {Hz: 2400, WireIndex: 2}},
		rig.ModeFM:  {{Hz: 9000, WireIndex: 0}, {Hz: 16000, WireIndex: 1}},
		rig.ModeAM:  {{Hz: 6000, WireIndex: 0}, {Hz: 9000, WireIndex: 1}},
	} {
		c.Filters[mode] = steps
	}

	modeWire := map[rig.Mode]byte{
		rig.ModeLSB: '1', rig.ModeUSB: '2', rig.ModeCW: '3', rig.ModeFM: '4',
		rig.ModeAM: '5', rig.ModeRTTY: '6', rig.ModeCWR: '7', rig.ModePKTLSB: '8',
		rig.ModeFMN: '9', rig.ModePKTFM: 'A', rig.ModeRTTYR: 'C',
	}
	for m, w := range modeWire {
		c.ModeWire[m] = w
		c.WireMode[w] = m
	}

	c.SetFuncs = rig.FuncAI | rig.FuncVOX | rig.FuncNB | rig.FuncRIT | rig.FuncXIT | rig.FuncTUNER
	c.GetFuncs = c.SetFuncs
	c.SetLevels = rig.LevelRFPower | rig.LevelMicGain | rig.LevelAF | rig.LevelSQL
	c.GetLevels = c.SetLevels | rig.LevelStrength | rig.LevelSWR

	c.MemoryChannels = 117
}

// Dialect is the stateless rig.AsciiDialect singleton every Yaesu
// CapsRecord shares; per-model differences live entirely in the
// CapsRecord tables above.
type Dialect struct{}

var _ rig.AsciiDialect = Dialect{}

func (Dialect) Name() string       { return "yaesu" }
func (Dialect) Terminator() string { return ";" }
func (Dialect) MaxReplyLen() int   { return 64 }
func (Dialect) IFCommand() string  { return "IF" }

// IsSetCommand applies spec §4.2 step 2: longer than the bare 2-letter
// mnemonic means a parameter was attached, i.e. a set.
func (Dialect) IsSetCommand(cmd string) bool {
	switch cmd {
	case "TX", "RX":
		return true
	}
	return len(cmd) > 2
}

// questionMarkRejects lists the commands whose "?;" reply means the
// rig refused the request outright rather than "busy, try later" —
// spec §9 open question (a)'s command-dependent gating.
var questionMarkRejects = map[string]bool{
	"EX050": true, "EX082": true, "PC": true, "MC": true,
}

func (Dialect) QuestionMarkMeansRejected(cmd string, caps *rig.CapsRecord) bool {
	if questionMarkRejects[cmd] {
		return true
	}
	if strings.HasPrefix(cmd, "EX") && len(cmd) >= 5 && questionMarkRejects[cmd[:5]] {
		return true
	}
	if len(cmd) > 2 && questionMarkRejects[cmd[:2]] {
		return true
	}
	return false
}

// VerifyCommand reuses the bare mnemonic as its own probe for every
// two-letter set, comparing the first 2 bytes of the reply (spec
// §4.5 step 2). KY/KM/AC/EX/BS skip verification entirely per spec
// §4.5's representative mapping; TX/RX are PTT and skip here too
// (AsciiRig.SetPTT writes them directly and does not read PTT back).
func (Dialect) VerifyCommand(cmd string, caps *rig.CapsRecord) (string, int) {
	if caps.FastSetCommands {
		return "", 0
	}
	mnem := cmd
	if len(mnem) > 2 {
		mnem = cmd[:2]
	}
	switch mnem {
	case "TX", "RX", "KY", "KM", "AC", "EX", "BS":
		return "", 0
	}
	return mnem, 2
}

// EncodeFreq formats Hz as the Yaesu "new CAT" family's 9-digit
// frequency field (spec §4.4: "Yaesu 8-9 digits behind FA/FB").
func (Dialect) EncodeFreq(hz int64, caps *rig.CapsRecord) (string, error) {
	return fmt.Sprintf("%09d", hz), nil
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

// OpenSequence silences AI ("AI0") before any caller-facing operation
// runs. It does not query the rig's identity, current VFO or split
// state.
func (Dialect) OpenSequence(ctx context.Context, r *rig.AsciiRig) error {
	_, err := r.WriteCommand(ctx, "AI0", false)
	return err
}

func (Dialect) CloseSequence(ctx context.Context, r *rig.AsciiRig) error {
	return nil
}

// bandStackIndex maps a frequency to the BS-command band index, the
// HF-band-granular table spec §8 scenario 2's "BS05;" is drawn from
// (finer than the coarse rig.Band bucket used for cache invalidation
// and repeater-offset lookup).
var bandStackEdges = []struct {
	lowHz int64
	idx   int
}{
	{1_800_000, 0}, {3_500_000, 1}, {5_000_000, 2}, {7_000_000, 3},
	{10_100_000, 4}, {14_000_000, 5}, {18_068_000, 6}, {21_000_000, 7},
	{24_890_000, 8}, {28_000_000, 9}, {50_000_000, 10}, {144_000_000, 11},
	{430_000_000, 12},
}

func bandStackIndex(hz int64) int {
	idx := 0
	for _, e := range bandStackEdges {
		if hz >= e.lowHz {
			idx = e.idx
		}
	}
	return idx
}

// BeforeSetFreq emits the FT-991 bandstack recall "BS05;" ahead of the
// real frequency write whenever the bandstack index actually changes
// (spec §8 scenario 2): the coarse bandChange hint from the dispatcher
// undercounts HF sub-bands, so this recomputes from the cached
// previous frequency directly.
func (d Dialect) BeforeSetFreq(ctx context.Context, r *rig.AsciiRig, vfo rig.VFO, hz int64, bandChange bool) error {
	oldHz, ok := r.CachedFreq(vfo)
	if !ok || bandStackIndex(oldHz) == bandStackIndex(hz) {
		return nil
	}
	_, err := r.WriteCommand(ctx, fmt.Sprintf("BS%02d", bandStackIndex(hz)), false)
	return err
}

// AfterSetFreq sleeps 500ms once a bandstack recall fired, giving the
// rig's synthesizer time to settle (spec §8 scenario 2).
func (d Dialect) AfterSetFreq(ctx context.Context, r *rig.AsciiRig, vfo rig.VFO, hz int64, bandChange bool) error {
	oldHz, ok := r.CachedFreq(vfo)
	if ok && bandStackIndex(oldHz) != bandStackIndex(hz) {
		r.Sleep(ctx, 500*time.Millisecond)
	}
	return nil
}

// AfterSetPTT reproduces the FT-DX3000's empirical PTT-off settle
// (spec §9 open question b): a caller that immediately follows with
// SetFreq needs this 300ms gap already elapsed.
func (d Dialect) AfterSetPTT(ctx context.Context, r *rig.AsciiRig, on bool) error {
	if !on && r.Caps().ModelID == ModelFTDX3000 {
		r.Sleep(ctx, 300*time.Millisecond)
	}
	return nil
}

// AntiVoxCommand returns the EX-menu mnemonic that reads and writes
// anti-VOX on caps' model. EX-menu access is symmetric on this family
// (bare mnemonic reads the current value, mnemonic+4-digit value
// writes it — the same read/write split kenwood.c's real "EX%03d%04d"
// menu-write uses, just without a distinct read mnemonic), so isGet
// does not change which string comes back here; it stays a parameter
// because the override table spec §4.3 describes is keyed on
// (rig_id, is_get), and Kenwood's TS-450 (package kenwood) is where that second
// axis actually matters.
func (Dialect) AntiVoxCommand(caps *rig.CapsRecord, isGet bool) string {
	switch caps.ModelID {
	case ModelFT450:
		return antiVoxMenuFT450
	case ModelFTDX3000:
		return antiVoxMenuFTDX3000
	default:
		return antiVoxMenuFT991
	}
}

func (Dialect) MorseFrames(text string, caps *rig.CapsRecord) []string {
	const chunkLen = 28
	var frames []string
	for len(text) > 0 {
		chunk := text
		if len(chunk) > chunkLen {
			chunk = chunk[:chunkLen]
			text = text[chunkLen:]
		} else {
			text = ""
		}
		chunk = chunk + strings.Repeat(" ", chunkLen-len(chunk))
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
