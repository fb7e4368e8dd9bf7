package rig

import "context"

// Codec is the pure value<->wire conversion surface from spec §4.4.
// Implementations do no I/O and must round-trip for every value a
// CapsRecord claims to support (spec §8).
type Codec interface {
	// EncodeFreq formats hz, already rounded to caps's smallest step,
	// as the dialect's wire parameter string (no command prefix).
	EncodeFreq(hz int64, caps *CapsRecord) (string, error)
	// DecodeFreq parses a dialect frequency parameter back to Hz.
	DecodeFreq(wire string, caps *CapsRecord) (int64, error)

	// EncodeMode returns the wire parameter for m, and DecodeMode the
	// inverse.
	EncodeMode(m Mode, caps *CapsRecord) (string, error)
	DecodeMode(wire string, caps *CapsRecord) (Mode, error)

	// EncodeWidth picks the first passband step for mode whose Hz is
	// >= requestedHz, returning the wire parameter and the width it
	// resolves to. PassbandNoChange gets no special case here;
	// AsciiRig.SetMode skips the width write for it before calling this.
	EncodeWidth(mode Mode, requestedHz int, caps *CapsRecord) (wire string, resolvedHz int, err error)
	// DecodeWidth returns the exact Hz for a wire passband index.
	DecodeWidth(mode Mode, wire string, caps *CapsRecord) (hz int, err error)
}

// Hooks carries the handful of per-dialect behaviors the distilled
// spec calls out by name: the open/close sequences (§4.7), the
// repeater-offset and anti-VOX override tables (§4.3), morse chunking
// (§8 scenario 6), and post-conditions specific to a command (§4.7
// point 7). Kenwood and Yaesu each implement this differently; AsciiRig
// calls through it instead of hard-coding vendor behavior.
type Hooks interface {
	// OpenSequence detects rig identity and primes dispatcher state
	// (current VFO, split, AI-off), per spec §4.7.
	OpenSequence(ctx context.Context, r *AsciiRig) error
	// CloseSequence restores AI and optionally powers off.
	CloseSequence(ctx context.Context, r *AsciiRig) error

	// BeforeSetFreq runs ahead of every frequency-set write, with
	// bandChange telling whether the coarse Band changed, e.g. the FT-991
	// bandstack recall "BS05;" (spec §8 scenario 2, which the real FA
	// write must follow, not precede).
	BeforeSetFreq(ctx context.Context, r *AsciiRig, vfo VFO, hz int64, bandChange bool) error
	// AfterSetFreq runs post-conditions specific to a frequency change,
	// e.g. the FT-991 500ms bandstack settle sleep (spec §8 scenario 2).
	AfterSetFreq(ctx context.Context, r *AsciiRig, vfo VFO, hz int64, bandChange bool) error
	// AfterSetPTT runs post-conditions specific to a PTT transition,
	// e.g. the FT-DX3000 PTT-off settle (spec §9 open question b).
	AfterSetPTT(ctx context.Context, r *AsciiRig, on bool) error

	// AntiVoxCommand resolves spec §4.3's (rig_id, is_get) table.
	AntiVoxCommand(caps *CapsRecord, isGet bool) string

	// MorseFrames splits text into the wire frames SendMorse writes,
	// already padded/chunked per the dialect's KY-style limits (spec
	// §8 scenario 6).
	MorseFrames(text string, caps *CapsRecord) []string

	// PowerOnCommands returns the exact commands the power-on dance
	// uses (spec §4.7, §8 scenario 3): the wake command, the real
	// command, and the poll; the sleeps between them are AsciiRig's.
	// PowerOffCommand is the single shot used to power off.
	PowerOnCommands() (first, second, poll string)
	PowerOffCommand() string
}

// AsciiDialect is everything the shared ASCII CAT engine (Transaction,
// Validator, SetVerify, Dispatcher) needs from one vendor family. It
// is the "common capability-set abstraction holding function pointers
// per CapsRecord" spec §9 calls for: shared logic lives in AsciiRig,
// differences live here.
type AsciiDialect interface {
	Codec
	Hooks

	Name() string
	Terminator() string
	MaxReplyLen() int
	// IFCommand names the status-frame command this dialect caches
	// raw (spec §4.2 step 1) — "IF" for Yaesu/Kenwood.
	IFCommand() string

	// IsSetCommand applies spec §4.2 step 2's heuristic: length >2, or
	// one of a short list of always-set two-letter commands (RX/TX).
	IsSetCommand(cmd string) bool

	// QuestionMarkMeansRejected implements spec §4.2 step 6 / §9 open
	// question (a): whether a bare "?"-reply to cmd on this model
	// classifies as Rejected (Yaesu, command-dependent) instead of the
	// default Busy (Kenwood, always).
	QuestionMarkMeansRejected(cmd string, caps *CapsRecord) bool

	// VerifyCommand returns the probe command SetVerify (spec §4.5)
	// should write after cmd succeeds, and how many leading bytes of
	// the probe reply must match cmd's own prefix. "" skips
	// verification entirely.
	VerifyCommand(cmd string, caps *CapsRecord) (probe string, matchLen int)
}
