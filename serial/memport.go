package serial

import (
	"context"
	"bytes"
	"sync"
)

// MemPort is an in-memory Port used by engine and dialect tests to
// script a rig's byte-for-byte replies without real hardware or a PTY.
// Handler is called once per WriteAll with the exact bytes written
// (command plus terminator) and returns the bytes that should become
// readable afterwards, or nil to simulate a silent rig (timeout).
type MemPort struct {
	mu      sync.Mutex
	Handler func(written []byte) []byte
	pending []byte
	Writes  [][]byte
	closed  bool
}

// NewMemPort builds a MemPort driven by handler.
func NewMemPort(handler func(written []byte) []byte) *MemPort {
	return &MemPort{Handler: handler}
}

func (m *MemPort) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	return nil
}

func (m *MemPort) WriteAll(ctx context.Context, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	cp := append([]byte(nil), data...)
	m.Writes = append(m.Writes, cp)
	if m.Handler != nil {
		if reply := m.Handler(cp); reply != nil {
			m.pending = append(m.pending, reply...)
		}
	}
	return len(data), nil
}

func (m *MemPort) ReadUntil(ctx context.Context, term []byte, maxLen int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if len(m.pending) == 0 {
		return nil, ErrTimeout
	}
	limit := len(m.pending)
	if limit > maxLen {
		limit = maxLen
	}
	idx := bytes.IndexAny(m.pending[:limit], string(term))
	var out []byte
	if idx >= 0 {
		out = m.pending[:idx+1]
	} else {
		out = m.pending[:limit]
	}
	m.pending = m.pending[len(out):]
	return out, nil
}

func (m *MemPort) ReadExact(ctx context.Context, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if len(m.pending) < n {
		out := m.pending
		m.pending = nil
		return out, ErrTimeout
	}
	out := m.pending[:n]
	m.pending = m.pending[n:]
	return out, nil
}

func (m *MemPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}
