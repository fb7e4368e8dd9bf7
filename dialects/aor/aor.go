// Package aor is a minimal, self-contained implementation of the AOR
// scanner/receiver family (AR-8200): one-shot CR-terminated ASCII
// commands with no write-then-verify step, a raw zero-padded-Hz
// frequency field, and single-character mode codes. Spec scope for
// this family is interface-level only, matching package icom's CI-V
// counterpart.
package aor

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/daedaluz/gorig/rig"
	"github.com/daedaluz/gorig/serial"
)

// Mode bytes from the AR-8200 reference command set.
const (
	modeWFM byte = '0'
	modeNFM byte = '1'
	modeAM  byte = '2'
	modeUSB byte = '3'
	modeLSB byte = '4'
	modeCW  byte = '5'
)

var modeToByte = map[rig.Mode]byte{
	rig.ModeFM: modeNFM, rig.ModeAM: modeAM, rig.ModeUSB: modeUSB,
	rig.ModeLSB: modeLSB, rig.ModeCW: modeCW,
}

var byteToMode = func() map[byte]rig.Mode {
	m := map[byte]rig.Mode{}
	for k, v := range modeToByte {
		m[v] = k
	}
	return m
}()

// Rig is a single AR-8200 connection.
type Rig struct {
	port serial.Port
}

func Open(port serial.Port) *Rig {
	return &Rig{port: port}
}

func (r *Rig) Close() error { return r.port.Close() }

// command writes one line and reads back its single CR-terminated
// acknowledgement, the AR-8200's only exchange shape — no retry, no
// write-then-verify (spec's interface-level scope for this family).
func (r *Rig) command(ctx context.Context, line string) (string, error) {
	if err := r.port.Flush(); err != nil {
		return "", err
	}
	if _, err := r.port.WriteAll(ctx, []byte(line+"\r")); err != nil {
		return "", err
	}
	reply, err := r.port.ReadUntil(ctx, []byte{'\r'}, 64)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(reply), "\r"), nil
}

// SetFreq sends the 10-digit zero-padded Hz value the AR-8200 expects
// behind "RF" (the reference driver's `sprintf(freqbuf,"RF%010Ld",
// freq)`), not a MHz-float.
func (r *Rig) SetFreq(ctx context.Context, hz int64) error {
	reply, err := r.command(ctx, fmt.Sprintf("RF%010d", hz))
	if err != nil {
		return err
	}
	if reply != "" {
		return fmt.Errorf("AR-8200 rejected frequency set: %q", reply)
	}
	return nil
}

// GetFreq queries "RX" (not "RF") and extracts the raw Hz value
// following the "RF" field in the status line it answers with, the
// same strstr(buf,"RF")+sscanf the reference driver's aor_get_freq
// uses.
func (r *Rig) GetFreq(ctx context.Context) (int64, error) {
	reply, err := r.command(ctx, "RX")
	if err != nil {
		return 0, err
	}
	idx := strings.Index(reply, "RF")
	if idx < 0 {
		return 0, fmt.Errorf("AR-8200 status reply %q has no RF field", reply)
	}
	hz, err := strconv.ParseInt(reply[idx+2:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("AR-8200 frequency reply %q: %w", reply, err)
	}
	return hz, nil
}

func (r *Rig) SetMode(ctx context.Context, m rig.Mode) error {
	w, ok := modeToByte[m]
	if !ok {
		return fmt.Errorf("mode %s not supported on the AR-8200", m)
	}
	_, err := r.command(ctx, "MD"+string(w))
	return err
}

func (r *Rig) GetMode(ctx context.Context) (rig.Mode, error) {
	reply, err := r.command(ctx, "MD")
	if err != nil {
		return 0, err
	}
	body := strings.TrimPrefix(reply, "MD")
	if len(body) == 0 {
		return 0, fmt.Errorf("empty AR-8200 mode reply")
	}
	m, ok := byteToMode[body[0]]
	if !ok {
		return 0, fmt.Errorf("unrecognized AR-8200 mode byte %q", body[0])
	}
	return m, nil
}

// ar7030FreqScale is the Hz-per-count the reference driver's
// ar7030_get_freq/ar7030_set_freq hardcode converting between the
// AR-7030's raw oscillator register and Hz.
const ar7030FreqScale = 2.65508890157896

// DecodeAR7030Freq decodes the AR-7030's three-byte big-endian raw
// register value (mem page 0, address 0x1A) into Hz. This is not a
// BCD field: the AR-7030 talks a proprietary register-poke bus
// (setMemPtr/rxr_readByte in the reference driver), not AR-8200-style
// ASCII CAT, so its frequency readout is a plain big-endian integer
// count scaled by ar7030FreqScale rather than any digit encoding. It
// is deliberately not wired into Rig: the AR-7030 never registers a
// CapsRecord in this module (only the AR-8200 does), but the codec is
// kept and tested on its own as a documented working reference for
// that register bus.
func DecodeAR7030Freq(b []byte) (int64, error) {
	if len(b) != 3 {
		return 0, fmt.Errorf("AR-7030 frequency register must be 3 bytes, got %d", len(b))
	}
	raw := int64(b[0])<<16 | int64(b[1])<<8 | int64(b[2])
	return int64(math.Round(float64(raw) * ar7030FreqScale)), nil
}
