// Package serial owns the byte-oriented transport a CAT dialect talks
// over: a real termios-configured serial device on Linux, or a TCP
// socket standing in for one (spec §6 allows "a serial (or TCP)
// link"). Nothing in this package knows about CAT framing, retries,
// or error classification — that is the transaction layer's job.
package serial

import (
	"context"
	"time"
)

// Parity mirrors the handful of parity settings a CapsRecord names.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// Handshake mirrors the flow-control choices a CapsRecord names.
type Handshake int

const (
	HandshakeNone Handshake = iota
	HandshakeHardware
	HandshakeXonXoff
)

// Config is the set of line parameters a CapsRecord supplies when
// opening a Rig. Zero values are filled from sensible RS-232 defaults
// by the concrete transport.
type Config struct {
	Baud       int
	DataBits   int
	StopBits   int
	Parity     Parity
	Handshake  Handshake
	ReadDeadlineGrace time.Duration // extra slack added to ctx deadlines, transport-dependent
}

// Port is the minimal surface the transaction layer needs from a
// transport. Every method honors ctx for cancellation/timeout; there
// is no independent retry or framing logic here (spec §4.1: "No
// protocol decisions here").
type Port interface {
	// Flush discards unread input sitting in the transport's receive
	// buffer.
	Flush() error

	// WriteAll writes every byte of data, blocking until done or ctx
	// is done. It does not append a terminator; the caller (C2) owns
	// framing.
	WriteAll(ctx context.Context, data []byte) (int, error)

	// ReadUntil reads until any byte in term appears or maxLen bytes
	// have been read, whichever comes first, returning everything
	// read so far (including the terminator, if found) on timeout.
	ReadUntil(ctx context.Context, term []byte, maxLen int) ([]byte, error)

	// ReadExact reads exactly n bytes or returns what it has on
	// timeout/error.
	ReadExact(ctx context.Context, n int) ([]byte, error)

	// Close releases the underlying handle. Idempotent.
	Close() error
}
