// Package icom is a minimal, self-contained implementation of the
// Icom CI-V family (IC-706): binary address-bus framing rather than
// the shared ASCII request/response engine in package rig. Spec scope
// for this family is interface-level only — SetFreq/GetFreq,
// SetMode/GetMode and SetPTT (PTT state is not read back) — not the full dispatcher surface
// the Yaesu/Kenwood dialects implement.
package icom

import (
	"context"
	"fmt"

	"github.com/daedaluz/gorig/rig"
	"github.com/daedaluz/gorig/serial"
)

const (
	preamble    = 0xFE
	terminator  = 0xFD
	defaultTRX  = 0x58 // IC-706 default transceiver CI-V address
	defaultCtrl = 0xE0 // default controller address

	cmdSetFreq = 0x05
	cmdSetMode = 0x06
	cmdReadFreq = 0x03
	cmdReadMode = 0x04
	cmdSetPTT   = 0x1C
)

var modeWire = map[rig.Mode]byte{
	rig.ModeLSB: 0x00, rig.ModeUSB: 0x01, rig.ModeAM: 0x02,
	rig.ModeCW: 0x03, rig.ModeRTTY: 0x04, rig.ModeFM: 0x05,
	rig.ModeCWR: 0x07, rig.ModeRTTYR: 0x08,
}

var wireMode = func() map[byte]rig.Mode {
	m := map[byte]rig.Mode{}
	for k, v := range modeWire {
		m[v] = k
	}
	return m
}()

// Rig is a single IC-706 connection, addressed over CI-V.
type Rig struct {
	port     serial.Port
	trxAddr  byte
	ctrlAddr byte
}

// Open wraps port as an IC-706 CI-V endpoint at its factory address.
func Open(port serial.Port) *Rig {
	return &Rig{port: port, trxAddr: defaultTRX, ctrlAddr: defaultCtrl}
}

func (r *Rig) Close() error { return r.port.Close() }

func (r *Rig) frame(cmd byte, data []byte) []byte {
	f := []byte{preamble, preamble, r.trxAddr, r.ctrlAddr, cmd}
	f = append(f, data...)
	f = append(f, terminator)
	return f
}

// encodeBCDFreq packs hz into the 5-byte little-endian BCD field every
// CI-V frequency command uses, grounded on the reference driver's
// to_bcd/from_bcd byte order (least-significant decade first).
func encodeBCDFreq(hz int64) []byte {
	digits := fmt.Sprintf("%010d", hz)
	out := make([]byte, 5)
	for i := 0; i < 5; i++ {
		hi := digits[8-2*i] - '0'
		lo := digits[9-2*i] - '0'
		out[i] = hi<<4 | lo
	}
	return out
}

func decodeBCDFreq(b []byte) (int64, error) {
	if len(b) != 5 {
		return 0, fmt.Errorf("CI-V frequency field must be 5 bytes, got %d", len(b))
	}
	var hz int64
	for i := 4; i >= 0; i-- {
		hi := b[i] >> 4
		lo := b[i] & 0x0F
		if hi > 9 || lo > 9 {
			return 0, fmt.Errorf("invalid BCD byte 0x%02x", b[i])
		}
		hz = hz*100 + int64(hi)*10 + int64(lo)
	}
	return hz, nil
}

func (r *Rig) exchange(ctx context.Context, cmd byte, data []byte) ([]byte, error) {
	wire := r.frame(cmd, data)
	if err := r.port.Flush(); err != nil {
		return nil, err
	}
	if _, err := r.port.WriteAll(ctx, wire); err != nil {
		return nil, err
	}
	reply, err := r.port.ReadUntil(ctx, []byte{terminator}, 32)
	if err != nil {
		return nil, err
	}
	if len(reply) < 6 {
		return nil, fmt.Errorf("CI-V reply too short: %d bytes", len(reply))
	}
	return reply[5 : len(reply)-1], nil
}

func (r *Rig) SetFreq(ctx context.Context, hz int64) error {
	_, err := r.exchange(ctx, cmdSetFreq, encodeBCDFreq(hz))
	return err
}

func (r *Rig) GetFreq(ctx context.Context) (int64, error) {
	body, err := r.exchange(ctx, cmdReadFreq, nil)
	if err != nil {
		return 0, err
	}
	return decodeBCDFreq(body)
}

func (r *Rig) SetMode(ctx context.Context, m rig.Mode) error {
	w, ok := modeWire[m]
	if !ok {
		return fmt.Errorf("mode %s not supported over CI-V on the IC-706", m)
	}
	_, err := r.exchange(ctx, cmdSetMode, []byte{w, 0x01})
	return err
}

func (r *Rig) GetMode(ctx context.Context) (rig.Mode, error) {
	body, err := r.exchange(ctx, cmdReadMode, nil)
	if err != nil {
		return 0, err
	}
	if len(body) == 0 {
		return 0, fmt.Errorf("empty CI-V mode reply")
	}
	m, ok := wireMode[body[0]]
	if !ok {
		return 0, fmt.Errorf("unrecognized CI-V mode byte 0x%02x", body[0])
	}
	return m, nil
}

func (r *Rig) SetPTT(ctx context.Context, on bool) error {
	val := byte(0x00)
	if on {
		val = 0x01
	}
	_, err := r.exchange(ctx, cmdSetPTT, []byte{0x00, val})
	return err
}
