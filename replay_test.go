package signals_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/signals"
)

// =============================================================================
// Replay
// =============================================================================

func TestReplay_LateSubscriberReceivesBufferedValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.NewReplay[int](2)

	require.NoError(t, sig.Emit(1))
	require.NoError(t, sig.Emit(2))
	require.NoError(t, sig.Emit(3))

	var got []int
	sig.Subscribe(ctx, func(v int) { got = append(got, v) })

	// The buffer holds the last two values; nothing else arrives until the
	// next live emit.
	assert.Equal(t, []int{2, 3}, got)

	require.NoError(t, sig.Emit(4))
	assert.Equal(t, []int{2, 3, 4}, got)
}

func TestReplay_BufferShorterThanCapacity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.NewReplay[string](5)

	require.NoError(t, sig.Emit("only"))

	var got []string
	sig.Subscribe(ctx, func(v string) { got = append(got, v) })

	assert.Equal(t, []string{"only"}, got)
}

func TestReplay_CountClampedToOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		count int
	}{
		{name: "zero", count: 0},
		{name: "negative", count: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			sig := signals.NewReplay[int](tt.count)

			require.NoError(t, sig.Emit(1))
			require.NoError(t, sig.Emit(2))

			var got []int
			sig.Subscribe(ctx, func(v int) { got = append(got, v) })

			assert.Equal(t, []int{2}, got)
		})
	}
}

func TestReplay_EmptyBufferReplaysNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.NewReplay[int](3)

	var got []int
	sig.Subscribe(ctx, func(v int) { got = append(got, v) })

	assert.Empty(t, got)
}

func TestReplay_BufferSurvivesSubscriberChurn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.NewReplay[int](2)

	token := sig.Subscribe(ctx, func(int) {})
	require.NoError(t, sig.Emit(1))
	require.NoError(t, sig.Emit(2))
	sig.Unsubscribe(token)

	var got []int
	sig.Subscribe(ctx, func(v int) { got = append(got, v) })

	assert.Equal(t, []int{1, 2}, got)
}

func TestReplay_EventOnlySubscriberGetsNoReplay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.NewReplay[int](2)

	require.NoError(t, sig.Emit(1))

	var events []signals.Event[int]
	sig.SubscribeEvent(ctx, func(ev signals.Event[int]) { events = append(events, ev) })

	assert.Empty(t, events)

	require.NoError(t, sig.Emit(2))
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Value)
}

func TestReplay_DebouncedValueEntersBuffer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sig := signals.NewReplay[int](2)

	require.NoError(t, sig.EmitDebounced(7, 20*time.Millisecond))
	require.Eventually(t, func() bool {
		return sig.Stats().Emitted == 1
	}, 2*time.Second, 5*time.Millisecond)

	var got []int
	sig.Subscribe(ctx, func(v int) { got = append(got, v) })

	assert.Equal(t, []int{7}, got)
}
