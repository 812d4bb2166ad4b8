package signals

// replayBuffer is a bounded FIFO of the most recently emitted values,
// oldest evicted first. It is independent of the subscriber set and
// survives subscriber churn. The owning Signal serializes access; the
// buffer carries no lock of its own.
type replayBuffer[T any] struct {
	capacity int
	vals     []T
}

func newReplayBuffer[T any](capacity int) *replayBuffer[T] {
	return &replayBuffer[T]{capacity: capacity}
}

func (b *replayBuffer[T]) append(v T) {
	if len(b.vals) == b.capacity {
		copy(b.vals, b.vals[1:])
		b.vals[len(b.vals)-1] = v
		return
	}
	b.vals = append(b.vals, v)
}

// values returns the buffered values in emission order. The slice is the
// buffer's backing store; callers must not retain it past the lock.
func (b *replayBuffer[T]) values() []T {
	return b.vals
}
