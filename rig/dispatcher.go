package rig

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daedaluz/gorig/internal/telemetry"
	"github.com/daedaluz/gorig/serial"
)

// AsciiRig is the polymorphic Rig surface (spec §4.7) for the ASCII
// "new CAT"/Kenwood family of dialects. It resolves VFO aliases,
// shapes commands per dialect, and drives Validator -> Codec ->
// SetVerify/Transaction -> Cache for every operation, exactly the
// data-flow spec §2 describes.
//
// An AsciiRig is confined to the goroutine that owns it (spec §5): no
// method is safe for concurrent use from multiple goroutines.
type AsciiRig struct {
	port    serial.Port
	caps    *CapsRecord
	dialect AsciiDialect
	cache   *Cache
	metrics *Metrics
	logger  *telemetry.Logger

	state   TransactionState
	curVFO  VFO
	txVFO   VFO
	satmode bool
	fastSet bool
	power   Powerstat
	quirks  uint32

	// rejected latches commands the rig has already refused outright
	// (spec §8 scenario 4: "priv-flag has_ps=0 after first rejection";
	// subsequent calls short-circuit without touching the wire).
	rejected map[string]bool
}

// OpenOption configures an AsciiRig at Open time.
type OpenOption func(*AsciiRig)

// WithLogger attaches a structured logger; nil (the default) makes
// every log call a no-op.
func WithLogger(l *telemetry.Logger) OpenOption {
	return func(r *AsciiRig) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFastSet enables the high-throughput bypass from spec §4.5 point
// 4: every set skips write-then-verify regardless of per-command
// FastSetCommands.
func WithFastSet() OpenOption {
	return func(r *AsciiRig) { r.fastSet = true }
}

// WithSatMode enables satellite mode, which changes how VFOOther
// resolves (spec §4.7: "Sub maps to SubA in satmode").
func WithSatMode() OpenOption {
	return func(r *AsciiRig) { r.satmode = true }
}

// WithCache injects a pre-built Cache, used by tests that need a
// deterministic clock.
func WithCache(c *Cache) OpenOption {
	return func(r *AsciiRig) { r.cache = c }
}

// Open runs the dialect's open sequence and returns a ready-to-use
// AsciiRig. The built-in dialects' sequences turn AI off (Kenwood also
// checks the TS-2000's identity); none reads firmware quirks or the
// rig's current VFO/split state: the AsciiRig starts on MainA, with
// the TX VFO also MainA.
func Open(ctx context.Context, port serial.Port, caps *CapsRecord, dialect AsciiDialect, opts ...OpenOption) (*AsciiRig, error) {
	r := &AsciiRig{
		port:    port,
		caps:    caps,
		dialect: dialect,
		cache:   NewCache(),
		metrics: &Metrics{},
		logger:  telemetry.Nop(),
		curVFO:   MainA,
		txVFO:    MainA,
		power:    PowerOn,
		rejected: map[string]bool{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if caps.FastSetCommands {
		r.fastSet = true
	}
	if err := dialect.OpenSequence(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Close runs the dialect's close sequence and releases the port.
func (r *AsciiRig) Close(ctx context.Context) error {
	if err := r.dialect.CloseSequence(ctx, r); err != nil {
		r.port.Close()
		return err
	}
	return r.port.Close()
}

// Metrics exposes the Rig's transaction counters.
func (r *AsciiRig) Metrics() *Metrics { return r.metrics }

// Caps exposes the Rig's immutable capability record.
func (r *AsciiRig) Caps() *CapsRecord { return r.caps }

// CachedFreq exposes the cache's last-known frequency for vfo,
// regardless of freshness, for dialect Hooks that need to reason about
// a band transition (e.g. bandstack recall) without re-reading the
// wire.
func (r *AsciiRig) CachedFreq(vfo VFO) (int64, bool) {
	hz, _, _ := r.cache.ReadFreq(vfo)
	return hz, hz != 0
}

// WriteCommand runs a raw transaction, letting a dialect's Hooks
// implementation emit wire traffic of its own (e.g. a bandstack-recall
// command ahead of the real frequency write) through the same
// Transaction machinery every other operation uses.
func (r *AsciiRig) WriteCommand(ctx context.Context, cmd string, expectReply bool) (Frame, error) {
	return r.transact(ctx, cmd, expectReply)
}

// resolveVFO applies spec §4.6's alias resolution.
func (r *AsciiRig) resolveVFO(v VFO) VFO {
	switch v {
	case VFOCurr:
		return r.curVFO
	case VFOTX:
		return r.txVFO
	case VFORX:
		return r.curVFO
	case VFOOther:
		return r.otherVFO()
	default:
		return v
	}
}

func (r *AsciiRig) otherVFO() VFO {
	if r.satmode {
		switch r.curVFO {
		case MainA, MainB, MainC:
			return SubA
		default:
			return MainA
		}
	}
	switch r.curVFO {
	case MainA:
		return MainB
	case MainB:
		return MainA
	case SubA:
		return SubB
	case SubB:
		return SubA
	default:
		return r.curVFO
	}
}

func freqCmd(vfo VFO) string {
	switch vfo {
	case MainB, SubB, SubC:
		return "FB"
	default:
		return "FA"
	}
}

// SetFreq implements spec §8 scenario 1/2 and the round_to_step
// invariant from §8.
func (r *AsciiRig) SetFreq(ctx context.Context, vfoAlias VFO, hz int64) error {
	vfo := r.resolveVFO(vfoAlias)
	cmd := freqCmd(vfo)
	if err := r.validate("SetFreq", cmd); err != nil {
		return err
	}
	if _, ok := r.caps.RXRangeFor(hz); !ok {
		return newErr("SetFreq", KindInvalid, r.caps.ModelName, cmd, fmt.Errorf("%d Hz out of range", hz))
	}
	hz = r.caps.RoundToStep(hz)

	oldHz, _, haveOld := r.cache.ReadFreq(vfo)
	bandChange := haveOld && BandOf(oldHz) != BandOf(hz)

	if err := r.dialect.BeforeSetFreq(ctx, r, vfo, hz, bandChange); err != nil {
		return err
	}

	wire, err := r.dialect.EncodeFreq(hz, r.caps)
	if err != nil {
		return newErr("SetFreq", KindInvalid, r.caps.ModelName, cmd, err)
	}

	if err := r.setVerify(ctx, cmd+wire); err != nil {
		r.cache.InvalidateVFO(vfo)
		return err
	}

	afterErr := r.dialect.AfterSetFreq(ctx, r, vfo, hz, bandChange)

	if bandChange {
		r.cache.InvalidateAll()
	} else {
		r.cache.InvalidateVFO(vfo)
	}
	r.cache.WriteFreq(vfo, hz)

	return afterErr
}

// GetFreq serves from cache when fresh (spec §8: "Cache read within
// 500ms of a successful set returns the value that was set").
func (r *AsciiRig) GetFreq(ctx context.Context, vfoAlias VFO) (int64, error) {
	vfo := r.resolveVFO(vfoAlias)
	cmd := freqCmd(vfo)
	if err := r.validate("GetFreq", cmd); err != nil {
		return 0, err
	}
	if hz, _, ok := r.cache.ReadFreq(vfo); ok {
		r.metrics.CacheHits.Add(1)
		return hz, nil
	}
	r.metrics.CacheMisses.Add(1)

	frame, err := r.transact(ctx, cmd, true)
	if err != nil {
		return 0, err
	}
	body := r.stripTerm(frame.Reply)
	if len(body) < 2 {
		return 0, newErr("GetFreq", KindProtocol, r.caps.ModelName, cmd, nil)
	}
	hz, err := r.dialect.DecodeFreq(body[2:], r.caps)
	if err != nil {
		return 0, newErr("GetFreq", KindProtocol, r.caps.ModelName, cmd, err)
	}
	r.cache.WriteFreq(vfo, hz)
	return hz, nil
}

func (r *AsciiRig) stripTerm(b []byte) string {
	return strings.TrimSuffix(string(b), r.dialect.Terminator())
}

// SetMode sets mode and, unless width is PassbandNoChange, the filter
// width for vfoAlias. Spec §8: "set_mode(m); set_width(w) yields a
// final narrow-flag consistent with the per-mode staircase."
func (r *AsciiRig) SetMode(ctx context.Context, vfoAlias VFO, mode Mode, width int) error {
	vfo := r.resolveVFO(vfoAlias)
	if err := r.validate("SetMode", "MD"); err != nil {
		return err
	}
	wire, err := r.dialect.EncodeMode(mode, r.caps)
	if err != nil {
		return newErr("SetMode", KindInvalid, r.caps.ModelName, "MD", err)
	}
	if err := r.setVerify(ctx, "MD"+wire); err != nil {
		r.cache.InvalidateVFO(vfo)
		return err
	}
	r.cache.InvalidateVFO(vfo)
	r.cache.WriteMode(vfo, mode)

	if width == PassbandNoChange {
		return nil
	}
	return r.SetWidth(ctx, vfoAlias, mode, width)
}

func (r *AsciiRig) GetMode(ctx context.Context, vfoAlias VFO) (Mode, error) {
	vfo := r.resolveVFO(vfoAlias)
	if err := r.validate("GetMode", "MD"); err != nil {
		return 0, err
	}
	if m, _, ok := r.cache.ReadMode(vfo); ok {
		r.metrics.CacheHits.Add(1)
		return m, nil
	}
	r.metrics.CacheMisses.Add(1)
	frame, err := r.transact(ctx, "MD", true)
	if err != nil {
		return 0, err
	}
	body := r.stripTerm(frame.Reply)
	if len(body) < 2 {
		return 0, newErr("GetMode", KindProtocol, r.caps.ModelName, "MD", nil)
	}
	mode, err := r.dialect.DecodeMode(body[2:], r.caps)
	if err != nil {
		return 0, newErr("GetMode", KindProtocol, r.caps.ModelName, "MD", err)
	}
	r.cache.WriteMode(vfo, mode)
	return mode, nil
}

// SetWidth implements the per-mode passband staircase from spec §4.4.
func (r *AsciiRig) SetWidth(ctx context.Context, vfoAlias VFO, mode Mode, hz int) error {
	vfo := r.resolveVFO(vfoAlias)
	if err := r.validate("SetWidth", "SH"); err != nil {
		return err
	}
	wire, resolved, err := r.dialect.EncodeWidth(mode, hz, r.caps)
	if err != nil {
		return newErr("SetWidth", KindInvalid, r.caps.ModelName, "SH", err)
	}
	if err := r.setVerify(ctx, "SH"+wire); err != nil {
		return err
	}
	r.cache.WriteWidth(vfo, resolved)
	return nil
}

func (r *AsciiRig) GetWidth(ctx context.Context, vfoAlias VFO, mode Mode) (int, error) {
	vfo := r.resolveVFO(vfoAlias)
	if err := r.validate("GetWidth", "SH"); err != nil {
		return 0, err
	}
	if hz, _, ok := r.cache.ReadWidth(vfo); ok {
		r.metrics.CacheHits.Add(1)
		return hz, nil
	}
	frame, err := r.transact(ctx, "SH", true)
	if err != nil {
		return 0, err
	}
	body := r.stripTerm(frame.Reply)
	hz, err := r.dialect.DecodeWidth(mode, body[2:], r.caps)
	if err != nil {
		return 0, newErr("GetWidth", KindProtocol, r.caps.ModelName, "SH", err)
	}
	r.cache.WriteWidth(vfo, hz)
	return hz, nil
}

// SetVFO selects the dispatcher's current VFO.
func (r *AsciiRig) SetVFO(ctx context.Context, vfo VFO) error {
	if err := r.validate("SetVFO", "VS"); err != nil {
		return err
	}
	idx := "0"
	if vfo == MainB || vfo == SubB {
		idx = "1"
	}
	if err := r.setVerify(ctx, "VS"+idx); err != nil {
		return err
	}
	r.curVFO = vfo
	return nil
}

func (r *AsciiRig) GetVFO(ctx context.Context) (VFO, error) {
	return r.curVFO, nil
}

// SetSplit turns split on/off and, when on, records the TX VFO.
func (r *AsciiRig) SetSplit(ctx context.Context, on bool, txVFO VFO) error {
	if err := r.validate("SetSplit", "SP"); err != nil {
		return err
	}
	val := "0"
	if on {
		val = "1"
	}
	if err := r.setVerify(ctx, "SP"+val); err != nil {
		return err
	}
	r.cache.WriteSplit(on)
	if on {
		r.txVFO = r.resolveVFO(txVFO)
	} else {
		r.txVFO = r.curVFO
	}
	return nil
}

func (r *AsciiRig) GetSplit(ctx context.Context) (bool, VFO, error) {
	if on, _, ok := r.cache.ReadSplit(); ok {
		return on, r.txVFO, nil
	}
	frame, err := r.transact(ctx, r.dialect.IFCommand(), true)
	if err != nil {
		return false, 0, err
	}
	_, _, _, split, ifErr := ParseIF(frame.Reply)
	if ifErr != nil {
		return false, 0, newErr("GetSplit", KindProtocol, r.caps.ModelName, r.dialect.IFCommand(), ifErr)
	}
	r.cache.WriteSplit(split)
	return split, r.txVFO, nil
}

// SetPTT keys or unkeys the transmitter. PTT is not routed through the
// generic SetVerify wrapper, and SetPTT does not read the PTT state
// back either: it caches the requested state once TX/RX is written.
func (r *AsciiRig) SetPTT(ctx context.Context, on bool) error {
	cmd := "RX"
	if on {
		cmd = "TX"
	}
	if err := r.validate("SetPTT", cmd); err != nil {
		return err
	}
	if _, err := r.transact(ctx, cmd, false); err != nil {
		return err
	}
	r.cache.WritePTT(on)
	if err := r.dialect.AfterSetPTT(ctx, r, on); err != nil {
		return err
	}
	return nil
}

func (r *AsciiRig) GetPTT(ctx context.Context) (bool, error) {
	if on, _, ok := r.cache.ReadPTT(); ok {
		return on, nil
	}
	frame, err := r.transact(ctx, r.dialect.IFCommand(), true)
	if err != nil {
		return false, err
	}
	_, txOn, _, _, ifErr := ParseIF(frame.Reply)
	if ifErr != nil {
		return false, newErr("GetPTT", KindProtocol, r.caps.ModelName, r.dialect.IFCommand(), ifErr)
	}
	r.cache.WritePTT(txOn)
	return txOn, nil
}

// SetFunc toggles one of the boolean function bits named in spec §4.
// fnID is the function's bit position encoded as two decimal digits
// (00-63), matching the "FN" command's generic parameter shape this
// engine uses for every dialect (real rigs spread functions across
// many distinct two-letter commands; this module's representative
// registry exposes them uniformly through one mnemonic).
func (r *AsciiRig) SetFunc(ctx context.Context, fn Func, on bool) error {
	if err := r.validate("SetFunc", "FN"); err != nil {
		return err
	}
	if r.caps.SetFuncs&fn == 0 {
		return newErr("SetFunc", KindUnavailable, r.caps.ModelName, "FN", nil)
	}
	val := "0"
	if on {
		val = "1"
	}
	return r.setVerify(ctx, fmt.Sprintf("FN%02d%s", bitIndex(fn), val))
}

func (r *AsciiRig) GetFunc(ctx context.Context, fn Func) (bool, error) {
	if err := r.validate("GetFunc", "FN"); err != nil {
		return false, err
	}
	if r.caps.GetFuncs&fn == 0 {
		return false, newErr("GetFunc", KindUnavailable, r.caps.ModelName, "FN", nil)
	}
	frame, err := r.transact(ctx, fmt.Sprintf("FN%02d", bitIndex(fn)), true)
	if err != nil {
		return false, err
	}
	body := r.stripTerm(frame.Reply)
	return strings.HasSuffix(body, "1"), nil
}

func bitIndex(fn Func) int {
	for i := 0; i < 64; i++ {
		if fn == 1<<uint(i) {
			return i
		}
	}
	return 0
}

// SetLevel sets a continuously-valued parameter, spec §4.4's
// calibration tables apply only to get-side meter readings; set-side
// values are written as-is on the dialect's native scale.
func (r *AsciiRig) SetLevel(ctx context.Context, lvl Level, value int) error {
	if err := r.validate("SetLevel", "LV"); err != nil {
		return err
	}
	if r.caps.SetLevels&(1<<uint(lvl)) == 0 {
		return newErr("SetLevel", KindUnavailable, r.caps.ModelName, "LV", nil)
	}
	return r.setVerify(ctx, fmt.Sprintf("LV%02d%04d", lvl, value))
}

func (r *AsciiRig) GetLevel(ctx context.Context, lvl Level) (int, error) {
	if err := r.validate("GetLevel", "LV"); err != nil {
		return 0, err
	}
	if r.caps.GetLevels&(1<<uint(lvl)) == 0 {
		return 0, newErr("GetLevel", KindUnavailable, r.caps.ModelName, "LV", nil)
	}
	frame, err := r.transact(ctx, fmt.Sprintf("LV%02d", lvl), true)
	if err != nil {
		return 0, err
	}
	body := r.stripTerm(frame.Reply)
	if len(body) < 4 {
		return 0, newErr("GetLevel", KindProtocol, r.caps.ModelName, "LV", nil)
	}
	v, err := strconv.Atoi(body[4:])
	if err != nil {
		return 0, newErr("GetLevel", KindProtocol, r.caps.ModelName, "LV", err)
	}
	return v, nil
}

// SetMemoryChannel recalls memory channel ch, spec §3's "memory-
// channel layout".
func (r *AsciiRig) SetMemoryChannel(ctx context.Context, ch int) error {
	if err := r.validate("SetMemoryChannel", "MC"); err != nil {
		return err
	}
	if ch < 0 || ch >= r.caps.MemoryChannels {
		return newErr("SetMemoryChannel", KindInvalid, r.caps.ModelName, "MC", fmt.Errorf("channel %d out of range", ch))
	}
	if err := r.setVerify(ctx, fmt.Sprintf("MC%03d", ch)); err != nil {
		return err
	}
	r.cache.InvalidateAll()
	return nil
}

func (r *AsciiRig) GetMemoryChannel(ctx context.Context) (int, error) {
	if err := r.validate("GetMemoryChannel", "MC"); err != nil {
		return 0, err
	}
	frame, err := r.transact(ctx, "MC", true)
	if err != nil {
		return 0, err
	}
	body := r.stripTerm(frame.Reply)
	if len(body) < 5 {
		return 0, newErr("GetMemoryChannel", KindProtocol, r.caps.ModelName, "MC", nil)
	}
	return strconv.Atoi(body[2:5])
}

// SetRptrOffset encodes the offset via spec §4.3's band-keyed table
// (scenario 5 literally exercises this).
func (r *AsciiRig) SetRptrOffset(ctx context.Context, hz int64) error {
	freqVFO := r.resolveVFO(VFOCurr)
	curHz, _, ok := r.cache.ReadFreq(freqVFO)
	if !ok {
		return newErr("SetRptrOffset", KindInvalid, r.caps.ModelName, "EX", fmt.Errorf("current frequency unknown"))
	}
	entry, found := r.caps.RptrOffsetFor(curHz)
	if !found {
		return newErr("SetRptrOffset", KindUnavailable, r.caps.ModelName, "EX", nil)
	}
	if err := r.validate("SetRptrOffset", entry.Command); err != nil {
		return err
	}
	steps := hz / entry.StepHz
	digits := 3
	if entry.StepHz == 1_000 {
		digits = 4
	}
	wire := fmt.Sprintf("%0*d", digits, steps)
	return r.setVerify(ctx, entry.Command+wire)
}

func (r *AsciiRig) GetRptrOffset(ctx context.Context) (int64, error) {
	freqVFO := r.resolveVFO(VFOCurr)
	curHz, _, ok := r.cache.ReadFreq(freqVFO)
	if !ok {
		return 0, newErr("GetRptrOffset", KindInvalid, r.caps.ModelName, "EX", fmt.Errorf("current frequency unknown"))
	}
	entry, found := r.caps.RptrOffsetFor(curHz)
	if !found {
		return 0, newErr("GetRptrOffset", KindUnavailable, r.caps.ModelName, "EX", nil)
	}
	frame, err := r.transact(ctx, entry.Command, true)
	if err != nil {
		return 0, err
	}
	body := r.stripTerm(frame.Reply)
	if len(body) <= len(entry.Command) {
		return 0, newErr("GetRptrOffset", KindProtocol, r.caps.ModelName, entry.Command, nil)
	}
	steps, err := strconv.ParseInt(body[len(entry.Command):], 10, 64)
	if err != nil {
		return 0, newErr("GetRptrOffset", KindProtocol, r.caps.ModelName, entry.Command, err)
	}
	return steps * entry.StepHz, nil
}

// SetAntiVox writes the anti-VOX level through the dialect's (rig_id,
// is_get) override table (spec §4.3).
func (r *AsciiRig) SetAntiVox(ctx context.Context, value int) error {
	cmd := r.dialect.AntiVoxCommand(r.caps, false)
	if cmd == "" {
		return newErr("SetAntiVox", KindUnavailable, r.caps.ModelName, "", nil)
	}
	if err := r.validate("SetAntiVox", cmd); err != nil {
		return err
	}
	return r.setVerify(ctx, fmt.Sprintf("%s%04d", cmd, value))
}

func (r *AsciiRig) GetAntiVox(ctx context.Context) (int, error) {
	cmd := r.dialect.AntiVoxCommand(r.caps, true)
	if cmd == "" {
		return 0, newErr("GetAntiVox", KindUnavailable, r.caps.ModelName, "", nil)
	}
	if err := r.validate("GetAntiVox", cmd); err != nil {
		return 0, err
	}
	frame, err := r.transact(ctx, cmd, true)
	if err != nil {
		return 0, err
	}
	body := r.stripTerm(frame.Reply)
	if len(body) <= len(cmd) {
		return 0, newErr("GetAntiVox", KindProtocol, r.caps.ModelName, cmd, nil)
	}
	return strconv.Atoi(body[len(cmd):])
}

// SendMorse plays text through the rig's built-in keyer, spec §8
// scenario 6: a KY; busy poll precedes each chunk, retried while busy.
func (r *AsciiRig) SendMorse(ctx context.Context, text string) error {
	if err := r.validate("SendMorse", "KY"); err != nil {
		return err
	}
	for _, frame := range r.dialect.MorseFrames(text, r.caps) {
		if err := r.pollKeyerReady(ctx); err != nil {
			return err
		}
		if _, err := r.transact(ctx, strings.TrimSuffix(frame, r.dialect.Terminator()), false); err != nil {
			return err
		}
	}
	return nil
}

func (r *AsciiRig) pollKeyerReady(ctx context.Context) error {
	for attempt := 0; attempt < r.caps.Retry; attempt++ {
		frame, err := r.transact(ctx, "KY", true)
		if err != nil {
			return err
		}
		body := r.stripTerm(frame.Reply)
		switch body {
		case "KY0", "KY2":
			return nil
		case "KY1":
			r.logger.Debugf("keyer busy, retrying")
			continue
		default:
			return newErr("SendMorse", KindProtocol, r.caps.ModelName, "KY", nil)
		}
	}
	return newErr("SendMorse", KindBusy, r.caps.ModelName, "KY", nil)
}

// SetPowerstat drives spec §4.7/§8 scenario 3's power-on dance, or the
// single-shot power-off.
func (r *AsciiRig) SetPowerstat(ctx context.Context, p Powerstat) error {
	first, second, poll := r.dialect.PowerOnCommands()
	if p == PowerOff {
		off := r.dialect.PowerOffCommand()
		if err := r.validate("SetPowerstat", off[:2]); err != nil {
			return err
		}
		if _, err := r.transact(ctx, off, false); err != nil {
			return err
		}
		r.power = PowerOff
		r.cache.InvalidateAll()
		return nil
	}

	if _, err := r.transact(ctx, first, false); err != nil {
		return err
	}
	sleepCtx(ctx, 1200*time.Millisecond)
	if _, err := r.transact(ctx, second, false); err != nil {
		return err
	}

	for i := 0; i < 8; i++ {
		sleepCtx(ctx, 1*time.Second)
		frame, err := r.transact(ctx, poll, true)
		if err == nil && strings.HasPrefix(r.stripTerm(frame.Reply), poll[:2]) {
			r.power = PowerOn
			return nil
		}
	}
	return newErr("SetPowerstat", KindTimeout, r.caps.ModelName, poll, fmt.Errorf("rig did not wake after power-on"))
}

// GetPowerstat queries the rig's "PS" command directly (spec §8
// scenario 4: a rig that rejects PS latches KindUnavailable and every
// later call short-circuits without touching the wire).
func (r *AsciiRig) GetPowerstat(ctx context.Context) (Powerstat, error) {
	if !r.caps.Supports("PS") {
		return r.power, newErr("GetPowerstat", KindUnavailable, r.caps.ModelName, "PS", nil)
	}
	frame, err := r.transact(ctx, "PS", true)
	if err != nil {
		var gerr *Error
		if errors.As(err, &gerr) && gerr.Kind == KindRejected {
			return r.power, newErr("GetPowerstat", KindUnavailable, r.caps.ModelName, "PS", nil)
		}
		return r.power, err
	}
	body := r.stripTerm(frame.Reply)
	if strings.HasSuffix(body, "1") {
		r.power = PowerOn
	} else {
		r.power = PowerOff
	}
	return r.power, nil
}

// Sleep is a context-aware delay, exposed so dialect Hooks can
// reproduce the empirical inter-command pauses real rigs need (spec
// §8 scenarios 2 and 3) without importing time.Sleep directly.
func (r *AsciiRig) Sleep(ctx context.Context, d time.Duration) {
	sleepCtx(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
