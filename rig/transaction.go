package rig

import (
	"context"
	"time"
)

// transact is the central primitive from spec §4.2. Ordering within a
// single Rig is strictly sequential (spec §5): callers must not invoke
// this concurrently for the same AsciiRig.
func (r *AsciiRig) transact(ctx context.Context, cmd string, expectReply bool) (Frame, error) {
	start := time.Now()
	defer func() {
		r.metrics.LastLatencyNs.Store(time.Since(start).Nanoseconds())
	}()

	// A command latched as rejected on a prior call short-circuits
	// forever without touching the wire (spec §8 scenario 4).
	if r.rejected[cmd] {
		return Frame{}, newErr("transact", KindUnavailable, r.caps.ModelName, cmd, nil)
	}

	// Step 1: a fresh cached raw IF-frame answers an IF poll without
	// touching the wire.
	if cmd == r.dialect.IFCommand() {
		if frame, ok := r.cache.ReadIF(); ok {
			r.metrics.CacheHits.Add(1)
			return Frame{Request: []byte(cmd), Reply: frame, Classification: ClassOk}, nil
		}
		r.metrics.CacheMisses.Add(1)
	}

	// Step 2: a recognized set command invalidates the raw IF cache
	// before it reaches the wire.
	if r.dialect.IsSetCommand(cmd) {
		r.cache.InvalidateIF()
	}

	caps := r.caps
	term := r.dialect.Terminator()
	maxLen := r.dialect.MaxReplyLen()

	var frame Frame
	var lastErr error
	attempts := caps.Retry
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		r.state = StateWriting
		if err := r.port.Flush(); err != nil {
			return frame, newErr("transact", KindIO, caps.ModelName, cmd, err)
		}

		wireCmd := cmd + term
		if _, err := r.port.WriteAll(ctx, []byte(wireCmd)); err != nil {
			return frame, newErr("transact", KindIO, caps.ModelName, cmd, err)
		}
		frame.Request = []byte(wireCmd)

		if !expectReply {
			r.state = StateIdle
			return Frame{Request: frame.Request, Classification: ClassOk}, nil
		}

		r.state = StateAwaitingReply
		reply, readErr := r.port.ReadUntil(ctx, []byte(term), maxLen)
		class := classifyReply(cmd, reply, readErr, caps, r.dialect)

		// Mismatched reply prefix: re-read once before burning a
		// retry attempt (spec §4.2 step 6).
		if class == ClassMalformed && readErr == nil && len(reply) > 0 {
			reply2, readErr2 := r.port.ReadUntil(ctx, []byte(term), maxLen)
			class2 := classifyReply(cmd, reply2, readErr2, caps, r.dialect)
			if class2 == ClassOk {
				reply, class = reply2, class2
			}
		}

		frame.Reply = reply
		frame.Classification = class
		r.metrics.observe(class)
		r.state = StateIdle

		if class == ClassOk {
			if cmd == r.dialect.IFCommand() {
				r.cache.WriteIF(frame.Reply)
			}
			return frame, nil
		}

		kind := kindFor(class)
		lastErr = newErr("transact", kind, caps.ModelName, cmd, nil)
		if class == ClassRejected {
			r.rejected[cmd] = true
		}
		if !kind.Retryable() {
			return frame, lastErr
		}
		r.metrics.Retries.Add(1)
		r.logger.Warnf("retrying %s after %s (attempt %d/%d)", cmd, class, attempt+1, attempts)
	}
	return frame, lastErr
}

// classifyReply applies spec §4.2 step 6's classification rules.
func classifyReply(cmd string, reply []byte, readErr error, caps *CapsRecord, d AsciiDialect) Classification {
	if readErr != nil || len(reply) == 0 {
		return ClassTimeout
	}
	s := string(reply)
	term := d.Terminator()
	body := s
	if len(term) > 0 && len(s) >= len(term) && s[len(s)-len(term):] == term {
		body = s[:len(s)-len(term)]
	}
	switch {
	case body == "?":
		if d.QuestionMarkMeansRejected(cmd, caps) {
			return ClassRejected
		}
		return ClassBusy
	case body == "N":
		return ClassRejected
	case body == "O":
		return ClassOverflow
	case body == "E":
		return ClassCommError
	}
	if len(body) >= 2 && len(cmd) >= 2 && body[:2] != cmd[:2] {
		return ClassMalformed
	}
	return ClassOk
}

func kindFor(c Classification) Kind {
	switch c {
	case ClassRejected:
		return KindRejected
	case ClassBusy:
		return KindBusy
	case ClassOverflow:
		return KindOverflow
	case ClassCommError:
		return KindCommError
	case ClassTimeout:
		return KindTimeout
	case ClassMalformed:
		return KindProtocol
	default:
		return KindProtocol
	}
}
