package rig

import (
	"sort"
	"time"

	"github.com/daedaluz/gorig/serial"
)

// FreqRange is one receive or transmit allocation for a region, spec
// §3's "receive/transmit frequency ranges per region".
type FreqRange struct {
	LowHz, HighHz int64
	Modes         []Mode
}

func (r FreqRange) contains(hz int64) bool {
	return hz >= r.LowHz && hz <= r.HighHz
}

// PassbandStep is one entry of the per-mode filter-width staircase
// from spec §4.4: encode(mode, requested) picks the first step whose
// Hz is >= requested.
type PassbandStep struct {
	Hz        int
	WireIndex int
}

// Vendor namespaces a dialect package's model numbers so two
// manufacturers that happen to both call a radio "450" don't collide
// in the global registry, the same problem Hamlib's RIG_MAKE_MODEL
// macro solves by combining a backend code with a per-model number.
type Vendor int

const (
	VendorYaesu Vendor = 1 + iota
	VendorKenwood
)

// MakeModelID combines a Vendor with a manufacturer's own model
// number into the registry's single flat ID space.
func MakeModelID(v Vendor, model int) int {
	return int(v)*100_000 + model
}

// RptrOffsetEntry is one row of the Yaesu repeater-offset table named
// in spec §4.3, kept generic so other dialects could register their
// own band-keyed override tables the same way.
type RptrOffsetEntry struct {
	Band    Band
	Command string
	StepHz  int64
}

// CapsRecord is the immutable per-model capability record from spec
// §3. Exactly one is registered per supported model; CapsRecords live
// for the process lifetime once registered (spec §9, "Global
// registry").
type CapsRecord struct {
	ModelID   int
	ModelName string
	Mfg       string

	Baud struct{ Min, Max int }
	DataBits, StopBits int
	Parity             serial.Parity
	Handshake          serial.Handshake

	WriteDelay     time.Duration
	PostWriteDelay time.Duration
	Timeout        time.Duration
	Retry          int

	Terminator  string
	MaxReplyLen int
	IFRespLen   int

	RXRanges []FreqRange
	TXRanges []FreqRange

	TuningSteps []int64

	// Filters maps a mode to its passband staircase, sorted by Hz
	// ascending.
	Filters map[Mode][]PassbandStep

	// ModeWire maps the mode enum to this dialect's single wire
	// character/index.
	ModeWire map[Mode]byte
	WireMode map[byte]Mode

	CTCSSTable []int // tenths of a Hz, e.g. 885 == 88.5Hz

	VFOOps []VFO

	SetFuncs, GetFuncs Func
	SetLevels, GetLevels Level

	AttenuatorSteps []int
	PreampSteps     []int

	MemoryChannels int

	RptrOffsetTable []RptrOffsetEntry

	FastSetCommands bool

	// supported is the sorted allow-list of CAT mnemonics this model
	// answers to. The validator (§4.3) binary-searches it; in a
	// hamlib-scale registry with ~100 shared models this would instead
	// be a single table of mnemonic -> bitmask-of-models, but with the
	// handful of representative models this module registers a sorted
	// per-model slice gives the same "binary search is the single
	// authority" property without the indirection.
	supported []string
}

// NewCapsRecord builds a CapsRecord and freezes its command allow-list
// into sorted order so Supports can binary search it.
func NewCapsRecord(modelID int, name, mfg string, supportedCmds []string) *CapsRecord {
	c := &CapsRecord{
		ModelID:   modelID,
		ModelName: name,
		Mfg:       mfg,
		supported: append([]string(nil), supportedCmds...),
		Filters:   map[Mode][]PassbandStep{},
		ModeWire:  map[Mode]byte{},
		WireMode:  map[byte]Mode{},
	}
	sort.Strings(c.supported)
	return c
}

// Supports answers spec §4.3's validator question: "is command X
// supported on this model?"
func (c *CapsRecord) Supports(cmd string) bool {
	i := sort.SearchStrings(c.supported, cmd)
	return i < len(c.supported) && c.supported[i] == cmd
}

// RXRangeFor returns the receive range containing hz, if any.
func (c *CapsRecord) RXRangeFor(hz int64) (FreqRange, bool) {
	for _, r := range c.RXRanges {
		if r.contains(hz) {
			return r, true
		}
	}
	return FreqRange{}, false
}

// RoundToStep rounds hz down to the nearest multiple of the smallest
// tuning step the model supports, spec §8's round_to_step.
func (c *CapsRecord) RoundToStep(hz int64) int64 {
	if len(c.TuningSteps) == 0 {
		return hz
	}
	step := c.TuningSteps[0]
	for _, s := range c.TuningSteps {
		if s < step {
			step = s
		}
	}
	if step <= 0 {
		return hz
	}
	return (hz / step) * step
}

// BandOf classifies hz into the coarse §4.3 repeater-offset bucket.
func BandOf(hz int64) Band {
	switch {
	case hz >= 420_000_000 && hz < 450_000_000:
		return Band70cm
	case hz >= 144_000_000 && hz < 148_000_000:
		return Band2m
	case hz >= 50_000_000 && hz < 54_000_000:
		return Band6m
	case hz < 30_000_000:
		return BandAllHF
	default:
		return BandAllHF
	}
}

// RptrOffsetFor looks up this model's repeater-offset command/step for
// the band hz falls in.
func (c *CapsRecord) RptrOffsetFor(hz int64) (RptrOffsetEntry, bool) {
	band := BandOf(hz)
	for _, e := range c.RptrOffsetTable {
		if e.Band == band {
			return e, true
		}
	}
	return RptrOffsetEntry{}, false
}

// Registry is the process-wide, append-only CapsRecord table from
// spec §4.8: each backend family's init() Registers its models once
// at load; there is no runtime mutation afterward.
type Registry struct {
	byID map[int]*CapsRecord
	all  []*CapsRecord
}

var globalRegistry = &Registry{byID: map[int]*CapsRecord{}}

// Register adds caps to the process-wide registry. Intended to be
// called from a dialect package's init().
func Register(caps *CapsRecord) {
	globalRegistry.byID[caps.ModelID] = caps
	globalRegistry.all = append(globalRegistry.all, caps)
}

// Lookup finds a registered model by id.
func Lookup(modelID int) (*CapsRecord, bool) {
	c, ok := globalRegistry.byID[modelID]
	return c, ok
}

// All returns every registered CapsRecord, in registration order.
func All() []*CapsRecord {
	return append([]*CapsRecord(nil), globalRegistry.all...)
}
