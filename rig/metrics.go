package rig

import "sync/atomic"

// Metrics tracks per-Rig transaction counters, adapted from
// go-ublk/metrics.go's atomic-counter style: every field is safe to
// read concurrently with the Rig's own single-threaded use (spec §5),
// e.g. from an HTTP health endpoint an application builds on top of
// this library.
type Metrics struct {
	Transactions atomic.Uint64
	Retries      atomic.Uint64
	CacheHits    atomic.Uint64
	CacheMisses  atomic.Uint64

	ClassOk         atomic.Uint64
	ClassRejected   atomic.Uint64
	ClassBusy       atomic.Uint64
	ClassOverflow   atomic.Uint64
	ClassCommError  atomic.Uint64
	ClassTimeout    atomic.Uint64
	ClassMalformed  atomic.Uint64

	LastLatencyNs atomic.Int64
}

func (m *Metrics) observe(c Classification) {
	m.Transactions.Add(1)
	switch c {
	case ClassOk:
		m.ClassOk.Add(1)
	case ClassRejected:
		m.ClassRejected.Add(1)
	case ClassBusy:
		m.ClassBusy.Add(1)
	case ClassOverflow:
		m.ClassOverflow.Add(1)
	case ClassCommError:
		m.ClassCommError.Add(1)
	case ClassTimeout:
		m.ClassTimeout.Add(1)
	case ClassMalformed:
		m.ClassMalformed.Add(1)
	}
}
