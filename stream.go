package signals

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultStreamBuffer is the channel buffer size a Stream is created with
// unless WithStreamBuffer overrides it.
const DefaultStreamBuffer = 16

// Stream bridges a signal into Go's native sink contract: a receive-only
// channel. Every value emitted after the stream opens is forwarded with a
// non-blocking send, so a consumer that does not keep up loses values
// (counted by Dropped) instead of blocking the publisher. The channel
// closes when the signal completes or fails, when the stream's context is
// cancelled, or on Close.
type Stream[T any] struct {
	signal *Signal[T]
	token  Token
	ch     chan T

	mu     sync.Mutex
	closed bool
	err    error

	dropped atomic.Int64
	stop    func() bool // releases the context watcher
}

type streamOptions struct {
	buffer int
}

// StreamOption configures a Stream.
type StreamOption func(*streamOptions)

// WithStreamBuffer sets the channel buffer size. Values below 1 are
// ignored.
func WithStreamBuffer(size int) StreamOption {
	return func(o *streamOptions) {
		if size > 0 {
			o.buffer = size
		}
	}
}

// Stream opens a channel-backed subscription on the signal. Cancelling ctx
// unsubscribes and closes the channel. On a replay signal the buffered
// values are forwarded into the channel before live delivery starts.
//
// A stream opened on an already-terminated signal gets a closed channel
// immediately (after any replayed values), so a ranging consumer never
// blocks forever.
func (s *Signal[T]) Stream(ctx context.Context, opts ...StreamOption) *Stream[T] {
	so := streamOptions{buffer: DefaultStreamBuffer}
	for _, opt := range opts {
		opt(&so)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	st := &Stream[T]{
		signal: s,
		ch:     make(chan T, so.buffer),
	}
	st.token = s.register(dualRecord[T](ctx, st.forward, st.terminal), nil)

	s.mu.Lock()
	terminated := s.state != stateActive
	failure := s.failure
	s.mu.Unlock()
	if terminated {
		st.shutdown(failure)
		return st
	}

	st.stop = context.AfterFunc(ctx, func() {
		s.Unsubscribe(st.token)
		st.shutdown(nil)
	})
	return st
}

// Values returns the receive channel. It is closed on termination,
// context cancellation, or Close.
func (st *Stream[T]) Values() <-chan T {
	return st.ch
}

// Err reports the failure the stream's signal terminated with, if any.
// It is meaningful only after Values has been closed.
func (st *Stream[T]) Err() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// Dropped reports how many values were discarded because the consumer was
// not keeping up.
func (st *Stream[T]) Dropped() int64 {
	return st.dropped.Load()
}

// Close unsubscribes from the signal and closes the channel. Calling Close
// on an already-closed stream returns ErrStreamClosed.
func (st *Stream[T]) Close() error {
	st.signal.Unsubscribe(st.token)
	if st.stop != nil {
		st.stop()
	}
	if !st.shutdown(nil) {
		return ErrStreamClosed
	}
	return nil
}

// forward runs on the publisher's dispatch path and must never block.
func (st *Stream[T]) forward(v T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return
	}
	select {
	case st.ch <- v:
	default:
		st.dropped.Add(1)
	}
}

func (st *Stream[T]) terminal(ev Event[T]) {
	if !ev.Terminal() {
		return
	}
	st.signal.Unsubscribe(st.token)
	st.shutdown(ev.Err)
}

// shutdown closes the channel once and records the terminal error. It
// reports whether this call performed the transition.
func (st *Stream[T]) shutdown(err error) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return false
	}
	st.closed = true
	st.err = err
	close(st.ch)
	return true
}
