package signals

import "sync"

// Executor schedules a handler invocation on some execution context.
// Execute must not wait for the work to finish; it returns an error only
// when the work could not be scheduled at all.
type Executor interface {
	Execute(fn func()) error
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(fn func()) error

// Execute calls f(fn).
func (f ExecutorFunc) Execute(fn func()) error {
	return f(fn)
}

// Sync runs work inline on the caller's goroutine. A nil executor on a
// subscription means the same thing.
var Sync Executor = ExecutorFunc(func(fn func()) error {
	fn()
	return nil
})

// Async runs each invocation on its own goroutine. Delivery order across
// invocations is not preserved; use a SerialQueue when order matters.
var Async Executor = ExecutorFunc(func(fn func()) error {
	go fn()
	return nil
})

// SerialQueue is an asynchronous FIFO executor: submitted work runs off the
// caller's goroutine, one item at a time, in submission order. A drain
// goroutine is started lazily on first submission and parks when the queue
// empties.
type SerialQueue struct {
	mu      sync.Mutex
	closed  bool
	running bool
	queue   []func()
	idle    chan struct{} // non-nil while a waiter is parked on the drain
}

// NewSerialQueue creates an empty serial executor.
func NewSerialQueue() *SerialQueue {
	return &SerialQueue{}
}

// Execute enqueues fn. It returns ErrExecutorClosed after Shutdown.
func (q *SerialQueue) Execute(fn func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrExecutorClosed
	}

	q.queue = append(q.queue, fn)
	if !q.running {
		q.running = true
		go q.drain()
	}
	return nil
}

func (q *SerialQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.running = false
			if q.idle != nil {
				close(q.idle)
				q.idle = nil
			}
			q.mu.Unlock()
			return
		}
		fn := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()

		fn()
	}
}

// Wait blocks until every item submitted before the call has run.
func (q *SerialQueue) Wait() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	if q.idle == nil {
		q.idle = make(chan struct{})
	}
	idle := q.idle
	q.mu.Unlock()

	<-idle
}

// Shutdown rejects further submissions. Work already queued still runs;
// use Wait to block until it has.
func (q *SerialQueue) Shutdown() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
