package serial

import (
	"bytes"
	"context"
	"net"
	"sync/atomic"
	"time"
)

// tcpPort implements Port over a net.Conn, standing in for the serial
// link when the rig is reached through a network bridge (an RFC2217
// gateway, a USB-to-Ethernet adapter's raw passthrough, or rigctld
// itself acting as a transparent proxy). Grounded on the
// telnet/RFC2217 bridge pattern and the bare net.Conn CAT server in
// the retrieval pack's serial/meter-protocol examples: both read a
// terminated ASCII frame off a plain socket the same way this type
// does.
type tcpPort struct {
	conn           net.Conn
	closed         atomic.Bool
	writeDelay     time.Duration
	postWriteDelay time.Duration
}

// DialTCP opens a TCP connection to addr and wraps it as a Port. Unlike
// OpenDevice it takes no line parameters (Config): TCP has no termios.
func DialTCP(ctx context.Context, addr string, writeDelay, postWriteDelay time.Duration) (Port, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, wrapErr("dial "+addr, err)
	}
	return &tcpPort{conn: conn, writeDelay: writeDelay, postWriteDelay: postWriteDelay}, nil
}

func (t *tcpPort) Flush() error {
	// TCP has no separate receive-buffer flush; nothing unread can be
	// safely discarded without losing bytes that belong to the next
	// frame, so this is a deliberate no-op.
	return nil
}

func (t *tcpPort) WriteAll(ctx context.Context, data []byte) (int, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}
	if t.writeDelay > 0 {
		sleepCtx(ctx, t.writeDelay)
	}
	if dl, ok := ctx.Deadline(); ok {
		t.conn.SetWriteDeadline(dl)
	} else {
		t.conn.SetWriteDeadline(time.Time{})
	}
	n, err := t.conn.Write(data)
	if err != nil {
		return n, wrapErr("write", err)
	}
	if t.postWriteDelay > 0 {
		sleepCtx(ctx, t.postWriteDelay)
	}
	return n, nil
}

func (t *tcpPort) ReadUntil(ctx context.Context, term []byte, maxLen int) ([]byte, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	out := make([]byte, 0, maxLen)
	buf := [1]byte{}
	for len(out) < maxLen {
		if dl, ok := ctx.Deadline(); ok {
			t.conn.SetReadDeadline(dl)
		}
		n, err := t.conn.Read(buf[:])
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return out, ErrTimeout
			}
			return out, wrapErr("read", err)
		}
		if n == 0 {
			continue
		}
		out = append(out, buf[0])
		if bytes.IndexByte(term, buf[0]) >= 0 {
			return out, nil
		}
	}
	return out, nil
}

func (t *tcpPort) ReadExact(ctx context.Context, n int) ([]byte, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	if dl, ok := ctx.Deadline(); ok {
		t.conn.SetReadDeadline(dl)
	}
	out := make([]byte, n)
	read := 0
	for read < n {
		m, err := t.conn.Read(out[read:])
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return out[:read], ErrTimeout
			}
			return out[:read], wrapErr("read", err)
		}
		read += m
	}
	return out, nil
}

func (t *tcpPort) Close() error {
	if !t.closed.Swap(true) {
		return wrapErr("close", t.conn.Close())
	}
	return ErrClosed
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
