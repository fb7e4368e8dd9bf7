// Package rig is the shared CAT protocol engine: transaction framing,
// per-rig command validation, value<->wire codecs, the write-then-
// verify set policy, and the short-lived VFO/mode/width cache every
// vendor dialect in dialects/ is built on top of.
package rig

import "time"

// VFO identifies an addressable tuning slot, including the alias
// slots the dispatcher resolves before touching the cache (spec
// §4.6's "Curr/Other" plus the TX/RX aliases named in §4.7).
type VFO int

const (
	VFOCurr VFO = iota
	VFOOther
	VFOTX
	VFORX
	MainA
	MainB
	MainC
	SubA
	SubB
	SubC
	VFOMem
)

func (v VFO) String() string {
	switch v {
	case VFOCurr:
		return "Curr"
	case VFOOther:
		return "Other"
	case VFOTX:
		return "TX"
	case VFORX:
		return "RX"
	case MainA:
		return "MainA"
	case MainB:
		return "MainB"
	case MainC:
		return "MainC"
	case SubA:
		return "SubA"
	case SubB:
		return "SubB"
	case SubC:
		return "SubC"
	case VFOMem:
		return "Mem"
	default:
		return "Unknown"
	}
}

// Mode is the demodulation mode enum named in spec §4.4.
type Mode int

const (
	ModeLSB Mode = iota
	ModeUSB
	ModeCW
	ModeFM
	ModeAM
	ModeRTTY
	ModeCWR
	ModePKTLSB
	ModePKTUSB
	ModePKTFM
	ModeAMN
	ModeFMN
	ModeC4FM
	ModePKTFMN
	ModeRTTYR
	modeCount
)

func (m Mode) String() string {
	names := [...]string{"LSB", "USB", "CW", "FM", "AM", "RTTY", "CWR",
		"PKTLSB", "PKTUSB", "PKTFM", "AMN", "FMN", "C4FM", "PKTFMN", "RTTYR"}
	if int(m) < 0 || int(m) >= len(names) {
		return "Unknown"
	}
	return names[m]
}

// PassbandNoChange is the sentinel width value that leaves the current
// filter width untouched (spec §4.4).
const PassbandNoChange = -1

// Func is a single toggleable rig function bit (spec's "functions").
type Func uint64

const (
	FuncAI Func = 1 << iota
	FuncNB
	FuncCOMP
	FuncVOX
	FuncTONE
	FuncTSQL
	FuncSBKIN
	FuncFBKIN
	FuncANF
	FuncNR
	FuncAIP
	FuncAPF
	FuncMON
	FuncLOCK
	FuncMUTE
	FuncVSC
	FuncREV
	FuncSQL
	FuncRIT
	FuncXIT
	FuncTUNER
)

// Level is a single continuously-valued rig parameter (spec's
// "levels").
type Level int

const (
	LevelPreamp Level = iota
	LevelAtt
	LevelVOX
	LevelAF
	LevelRF
	LevelSQL
	LevelIF
	LevelAPF
	LevelNR
	LevelCWPitch
	LevelRFPower
	LevelMicGain
	LevelKeySpeed
	LevelNotchFreq
	LevelComp
	LevelAGC
	LevelBkinDelay
	LevelBalance
	LevelVoxGain
	LevelAntiVox
	LevelRawStr
	LevelSWR
	LevelALC
	LevelStrength
)

// Band groups tuning ranges the way the repeater-offset table in spec
// §4.3 keys on: "AllHF" covers every HF allocation as one bucket, VHF
// and UHF allocations get their own.
type Band int

const (
	BandAllHF Band = iota
	Band10m
	Band6m
	Band2m
	Band70cm
)

// Classification is the outcome of reading a reply frame, spec §4.2
// step 6 and §7's error-kind taxonomy collapsed to the subset that a
// single transaction can directly observe.
type Classification int

const (
	ClassOk Classification = iota
	ClassRejected
	ClassBusy
	ClassOverflow
	ClassCommError
	ClassTimeout
	ClassMalformed
)

// Frame is a single request/response exchange, spec §3.
type Frame struct {
	Request        []byte
	Reply          []byte
	Classification Classification
}

// TransactionState is the per-call state machine named in spec §3.
type TransactionState int

const (
	StateIdle TransactionState = iota
	StateWriting
	StateAwaitingReply
	StateVerifying
)

// Powerstat is the coarse on/off state driven through §4.7's
// power-on dance.
type Powerstat int

const (
	PowerOff Powerstat = iota
	PowerOn
)

// defaultCacheTTL is spec §6's 500ms cache freshness window.
const defaultCacheTTL = 500 * time.Millisecond
