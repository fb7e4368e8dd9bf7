package serial

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemPortWriteAllRecordsWrites(t *testing.T) {
	p := NewMemPort(func(written []byte) []byte { return nil })
	n, err := p.WriteAll(context.Background(), []byte("FA;"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, p.Writes, 1)
	require.Equal(t, "FA;", string(p.Writes[0]))
}

func TestMemPortReadUntilConsumesReply(t *testing.T) {
	p := NewMemPort(func(written []byte) []byte {
		return []byte("FA014074000;")
	})
	_, err := p.WriteAll(context.Background(), []byte("FA;"))
	require.NoError(t, err)

	reply, err := p.ReadUntil(context.Background(), []byte(";"), 64)
	require.NoError(t, err)
	require.Equal(t, "FA014074000;", string(reply))
}

func TestMemPortReadExactReadsFixedLength(t *testing.T) {
	p := NewMemPort(func(written []byte) []byte {
		return []byte{0xFE, 0xFE, 0x58, 0xE0, 0x03, 0xFD}
	})
	_, err := p.WriteAll(context.Background(), []byte{0xFE})
	require.NoError(t, err)

	reply, err := p.ReadExact(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, reply, 6)
}

func TestMemPortReadUntilTimesOutWhenNothingQueued(t *testing.T) {
	p := NewMemPort(func(written []byte) []byte { return nil })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.ReadUntil(ctx, []byte(";"), 64)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestMemPortCloseRejectsFurtherWrites(t *testing.T) {
	p := NewMemPort(func(written []byte) []byte { return nil })
	require.NoError(t, p.Close())

	_, err := p.WriteAll(context.Background(), []byte("FA;"))
	require.ErrorIs(t, err, ErrClosed)
}
