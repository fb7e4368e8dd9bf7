//go:build linux

package serial

import (
	"bytes"
	"context"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/daedaluz/fdev/poll"
	ioctl "github.com/daedaluz/goioctl"
)

// Termios is the termios(3) structure as laid out by the Linux ABI,
// carried over from the teacher's port_linux.go unchanged: CAT rigs
// are configured with the same raw-mode dance any other tty is.
type Termios struct {
	Iflag IFlag
	Oflag OFlag
	Cflag CFlag
	Lflag LFlag
	Line  byte
	Cc    [19]byte
}

type IFlag uint32
type OFlag uint32
type CFlag uint32
type LFlag uint32

const (
	IXON  = IFlag(0002000)
	IXOFF = IFlag(0010000)

	OPOST = OFlag(0000001)

	CSIZE   = CFlag(0000060)
	CS5     = CFlag(0000000)
	CS6     = CFlag(0000020)
	CS7     = CFlag(0000040)
	CS8     = CFlag(0000060)
	CSTOPB  = CFlag(0000100)
	CREAD   = CFlag(0000200)
	PARENB  = CFlag(0000400)
	PARODD  = CFlag(0001000)
	CLOCAL  = CFlag(0004000)
	CBAUD   = CFlag(0010017)
	CBAUDEX = CFlag(0010000)
	CRTSCTS = CFlag(020000000000)

	ISIG   = LFlag(0000001)
	ICANON = LFlag(0000002)
	ECHO   = LFlag(0000010)
	ECHONL = LFlag(0000100)
	IEXTEN = LFlag(0100000)
)

const (
	b4800   = CFlag(0000014)
	b9600   = CFlag(0000015)
	b19200  = CFlag(0000016)
	b38400  = CFlag(0000017)
	b57600  = CFlag(0010001)
	b115200 = CFlag(0010002)
)

// baudToCFlag maps the handful of rates CapsRecords in this module
// actually use to their termios constant; unknown rates fall back to
// 9600, the RS-232 default most rigs boot at.
func baudToCFlag(baud int) CFlag {
	switch baud {
	case 4800:
		return b4800
	case 19200:
		return b19200
	case 38400:
		return b38400
	case 57600:
		return b57600
	case 115200:
		return b115200
	default:
		return b9600
	}
}

func (t *Termios) makeRaw() {
	t.Iflag = 0
	t.Oflag &^= OPOST
	t.Lflag &^= ISIG | ICANON | ECHO | ECHONL | IEXTEN
	t.Cflag &^= CSIZE | PARENB
	t.Cflag |= CS8
	t.Cc[6] = 1 // VMIN
	t.Cc[5] = 0 // VTIME
}

func (t *Termios) setSpeed(speed CFlag) {
	t.Cflag &^= CBAUD
	t.Cflag |= speed
}

type device struct {
	f              int
	closed         atomic.Bool
	writeDelay     time.Duration
	postWriteDelay time.Duration
}

// OpenDevice opens the termios-backed serial device at path and
// configures it per cfg. writeDelay is applied once before every
// WriteAll (spec §4.1 write_delay), postWriteDelay once after.
func OpenDevice(path string, cfg Config, writeDelay, postWriteDelay time.Duration) (Port, error) {
	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, wrapErr("open "+path, err)
	}
	d := &device{f: fd, writeDelay: writeDelay, postWriteDelay: postWriteDelay}
	if err := d.configure(cfg); err != nil {
		syscall.Close(fd)
		return nil, err
	}
	return d, nil
}

func (d *device) configure(cfg Config) error {
	attrs, err := d.getAttr()
	if err != nil {
		return wrapErr("tcgets", err)
	}
	attrs.makeRaw()
	attrs.setSpeed(baudToCFlag(cfg.Baud))
	attrs.Cflag &^= CSIZE
	switch cfg.DataBits {
	case 5:
		attrs.Cflag |= CS5
	case 6:
		attrs.Cflag |= CS6
	case 7:
		attrs.Cflag |= CS7
	default:
		attrs.Cflag |= CS8
	}
	if cfg.StopBits == 2 {
		attrs.Cflag |= CSTOPB
	} else {
		attrs.Cflag &^= CSTOPB
	}
	switch cfg.Parity {
	case ParityOdd:
		attrs.Cflag |= PARENB | PARODD
	case ParityEven:
		attrs.Cflag |= PARENB
		attrs.Cflag &^= PARODD
	default:
		attrs.Cflag &^= PARENB | PARODD
	}
	switch cfg.Handshake {
	case HandshakeHardware:
		attrs.Cflag |= CRTSCTS
	case HandshakeXonXoff:
		attrs.Iflag |= IXON | IXOFF
	}
	attrs.Cflag |= CREAD | CLOCAL
	return d.setAttr(tcsanow, attrs)
}

func (d *device) getAttr() (*Termios, error) {
	attrs := &Termios{}
	if err := ioctl.Ioctl(uintptr(d.f), tcgets, uintptr(unsafe.Pointer(attrs))); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (d *device) setAttr(when uintptr, attrs *Termios) error {
	return ioctl.Ioctl(uintptr(d.f), tcsets+when, uintptr(unsafe.Pointer(attrs)))
}

func (d *device) Flush() error {
	if d.closed.Load() {
		return ErrClosed
	}
	return wrapErr("tcflush", ioctl.Ioctl(uintptr(d.f), tcflsh, tciflush))
}

func (d *device) WriteAll(ctx context.Context, data []byte) (int, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	if d.writeDelay > 0 {
		sleep(ctx, d.writeDelay)
	}
	written := 0
	for written < len(data) {
		if err := ctx.Err(); err != nil {
			return written, wrapErr("write", err)
		}
		n, err := syscall.Write(d.f, data[written:])
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EINTR {
				continue
			}
			return written, wrapErr("write", err)
		}
		written += n
	}
	if d.postWriteDelay > 0 {
		sleep(ctx, d.postWriteDelay)
	}
	return written, nil
}

func (d *device) readByte(ctx context.Context) (byte, bool, error) {
	timeout := time.Until(deadlineOr(ctx, time.Now().Add(time.Second)))
	if timeout <= 0 {
		return 0, false, nil
	}
	if err := poll.WaitInput(d.f, timeout); err != nil {
		if err == syscall.EAGAIN {
			return 0, false, nil
		}
		return 0, false, wrapErr("poll", err)
	}
	buf := [1]byte{}
	n, err := syscall.Read(d.f, buf[:])
	if err != nil {
		return 0, false, wrapErr("read", err)
	}
	if n == 0 {
		return 0, false, nil
	}
	return buf[0], true, nil
}

func (d *device) ReadUntil(ctx context.Context, term []byte, maxLen int) ([]byte, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	out := make([]byte, 0, maxLen)
	for len(out) < maxLen {
		select {
		case <-ctx.Done():
			return out, ErrTimeout
		default:
		}
		b, ok, err := d.readByte(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			if ctx.Err() != nil {
				return out, ErrTimeout
			}
			continue
		}
		out = append(out, b)
		if bytes.IndexByte(term, b) >= 0 {
			return out, nil
		}
	}
	return out, nil
}

func (d *device) ReadExact(ctx context.Context, n int) ([]byte, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		select {
		case <-ctx.Done():
			return out, ErrTimeout
		default:
		}
		b, ok, err := d.readByte(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			if ctx.Err() != nil {
				return out, ErrTimeout
			}
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (d *device) Close() error {
	if !d.closed.Swap(true) {
		return wrapErr("close", syscall.Close(d.f))
	}
	return ErrClosed
}

func deadlineOr(ctx context.Context, fallback time.Time) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
