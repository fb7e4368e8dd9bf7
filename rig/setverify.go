package rig

import (
	"context"
	"strings"
)

// setVerify is the write-then-verify policy from spec §4.5. A
// frequency set is verified here through the dialect's FA/FB probe;
// PTT is not, because SetPTT writes TX/RX without this wrapper.
func (r *AsciiRig) setVerify(ctx context.Context, cmd string) error {
	caps := r.caps

	if _, err := r.transact(ctx, cmd, false); err != nil {
		return err
	}

	if r.fastSet || caps.FastSetCommands {
		return nil
	}

	probe, matchLen := r.dialect.VerifyCommand(cmd, caps)
	if probe == "" {
		return nil
	}
	if matchLen <= 0 {
		matchLen = 2
	}

	attempts := caps.Retry
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		frame, err := r.transact(ctx, probe, true)
		body := strings.TrimSuffix(string(frame.Reply), r.dialect.Terminator())

		// transact reports a "?" reply as an error, so check it first.
		if body == "?" && strings.HasPrefix(cmd, "PC") {
			return newErr("setVerify", KindInvalid, caps.ModelName, cmd, errPowerLimit)
		}
		if err != nil {
			lastErr = err
			continue
		}

		if len(body) >= matchLen && len(cmd) >= matchLen && body[:matchLen] == cmd[:matchLen] {
			return nil
		}

		lastErr = newErr("setVerify", KindProtocol, caps.ModelName, cmd, nil)
		r.logger.Warnf("verify mismatch for %s: got %q (attempt %d/%d)", cmd, body, attempt+1, attempts)
		if attempt < attempts-1 {
			if _, err := r.transact(ctx, cmd, false); err != nil {
				return err
			}
		}
	}
	return lastErr
}
