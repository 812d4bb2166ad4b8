package signals_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/signals"
)

func collect[T any](t *testing.T, ch <-chan T, n int) []T {
	t.Helper()

	out := make([]T, 0, n)
	for range n {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "channel closed before %d values", n)
			out = append(out, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d values, got %d", n, len(out))
		}
	}
	return out
}

func requireClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	select {
	case _, ok := <-ch:
		require.False(t, ok, "expected channel to be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

// =============================================================================
// Stream bridge
// =============================================================================

func TestStream_ForwardsEmittedValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.New[int]()

	st := sig.Stream(ctx)
	defer st.Close()

	require.NoError(t, sig.Emit(1))
	require.NoError(t, sig.Emit(2))
	require.NoError(t, sig.Emit(3))

	assert.Equal(t, []int{1, 2, 3}, collect(t, st.Values(), 3))
}

func TestStream_ClosesOnComplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.New[int]()

	st := sig.Stream(ctx)

	require.NoError(t, sig.Emit(1))
	require.NoError(t, sig.Complete())

	assert.Equal(t, []int{1}, collect(t, st.Values(), 1))
	requireClosed(t, st.Values())
	assert.NoError(t, st.Err())
}

func TestStream_ErrAfterFail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.New[int]()
	cause := errors.New("upstream failed")

	st := sig.Stream(ctx)

	require.NoError(t, sig.Fail(cause))

	requireClosed(t, st.Values())
	assert.Same(t, cause, st.Err())
}

func TestStream_ContextCancelTearsDown(t *testing.T) {
	t.Parallel()

	sig := signals.New[int]()

	ctx, cancel := context.WithCancel(context.Background())
	st := sig.Stream(ctx)

	require.NoError(t, sig.Emit(1))
	cancel()

	require.Eventually(t, func() bool {
		return sig.Subscribers() == 0
	}, 2*time.Second, 5*time.Millisecond)

	// Buffered value is still readable, then the channel closes.
	assert.Equal(t, []int{1}, collect(t, st.Values(), 1))
	requireClosed(t, st.Values())
}

func TestStream_SlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.New[int]()

	st := sig.Stream(ctx, signals.WithStreamBuffer(1))
	defer st.Close()

	require.NoError(t, sig.Emit(1))
	require.NoError(t, sig.Emit(2))
	require.NoError(t, sig.Emit(3))

	assert.Equal(t, []int{1}, collect(t, st.Values(), 1))
	assert.Equal(t, int64(2), st.Dropped())
}

func TestStream_CloseIsTerminalAndIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.New[int]()

	st := sig.Stream(ctx)
	require.NoError(t, st.Close())
	assert.ErrorIs(t, st.Close(), signals.ErrStreamClosed)

	requireClosed(t, st.Values())
	assert.Equal(t, 0, sig.Subscribers())

	// Emissions after close never reach the stream.
	require.NoError(t, sig.Emit(1))
	assert.Equal(t, int64(0), st.Dropped())
}

func TestStream_OnTerminatedSignalClosesImmediately(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.New[int]()
	cause := errors.New("already failed")
	require.NoError(t, sig.Fail(cause))

	st := sig.Stream(ctx)

	requireClosed(t, st.Values())
	assert.Same(t, cause, st.Err())
}

func TestStream_ReplaySignalForwardsBuffer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.NewReplay[int](2)

	require.NoError(t, sig.Emit(1))
	require.NoError(t, sig.Emit(2))
	require.NoError(t, sig.Emit(3))

	st := sig.Stream(ctx)
	defer st.Close()

	assert.Equal(t, []int{2, 3}, collect(t, st.Values(), 2))
}
