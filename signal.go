package signals

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type signalState uint8

const (
	stateActive signalState = iota
	stateCompleted
	stateFailed
)

// Signal is a single-publisher, many-subscriber broadcast primitive for
// values of type T. See the package documentation for the full contract.
//
// The zero value is not usable; construct signals with New or NewReplay.
type Signal[T any] struct {
	mu      sync.Mutex
	state   signalState
	failure error
	regs    *registry[T]
	replay  *replayBuffer[T] // nil unless built with NewReplay
	gate    rateGate

	name    string
	traceID string
	logger  *slog.Logger

	emitted   atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	pruned    atomic.Int64
}

// SignalStats provides observability counters for monitoring and debugging.
type SignalStats struct {
	Emitted           int64 // values broadcast to subscribers
	Delivered         int64 // individual handler invocations completed
	Dropped           int64 // emits discarded (terminal state, throttle, debounce replace)
	Pruned            int64 // dead subscribers removed
	ActiveSubscribers int   // live subscriber count at snapshot time
	Terminal          bool  // signal has completed or failed
	Err               error // failure the signal terminated with, if any
}

// New creates an active signal.
//
// Example:
//
//	sig := signals.New[string](
//	    signals.WithName("orders"),
//	    signals.WithLogger(logger),
//	)
func New[T any](opts ...Option) *Signal[T] {
	cfg := config{
		traceID: uuid.NewString(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Signal[T]{
		regs:    newRegistry[T](),
		name:    cfg.name,
		traceID: cfg.traceID,
		logger:  cfg.logger,
	}
}

// NewReplay creates a signal that keeps the last replayCount emitted values
// and replays them to every new subscriber before live delivery starts.
// replayCount is clamped to a minimum of 1.
func NewReplay[T any](replayCount int, opts ...Option) *Signal[T] {
	s := New[T](opts...)
	if replayCount < 1 {
		replayCount = 1
	}
	s.replay = newReplayBuffer[T](replayCount)
	return s
}

// Subscribe registers fn to receive every value emitted while ctx remains
// uncancelled. ctx acts as the subscription's liveness witness; dead
// subscribers are pruned lazily. On a replay signal, fn is first invoked
// synchronously with each buffered value, in emission order, and must not
// call back into the signal during that replay.
//
// A nil fn registers nothing and returns the zero Token.
func (s *Signal[T]) Subscribe(ctx context.Context, fn func(T), opts ...SubscribeOption) Token {
	if fn == nil {
		s.logger.Warn("subscribe ignored: nil handler", s.logAttrs()...)
		return 0
	}
	return s.register(valueRecord[T](ctx, fn), opts)
}

// SubscribeEvent registers fn to receive every emitted value wrapped as a
// next event, plus the single terminal completed or failed event. The same
// liveness and replay rules as Subscribe apply, except that replayed values
// are delivered only to value handlers.
func (s *Signal[T]) SubscribeEvent(ctx context.Context, fn func(Event[T]), opts ...SubscribeOption) Token {
	if fn == nil {
		s.logger.Warn("subscribe ignored: nil event handler", s.logAttrs()...)
		return 0
	}
	return s.register(eventRecord[T](ctx, fn), opts)
}

func (s *Signal[T]) register(rec *subscriberRecord[T], opts []SubscribeOption) Token {
	var so subscribeOptions
	for _, opt := range opts {
		opt(&so)
	}
	rec.exec = so.exec
	rec.alive = so.alive
	if rec.ctx == nil {
		rec.ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Replay runs under the same exclusion as the insert, so a concurrent
	// Emit cannot slip a value between the replayed history and live
	// delivery: the subscriber sees each value exactly once, through one
	// path or the other.
	if s.replay != nil && rec.kind&handlesValue != 0 {
		for _, v := range s.replay.values() {
			rec.value(v)
			s.delivered.Add(1)
		}
	}

	return s.regs.insert(rec)
}

// Unsubscribe removes the subscription. Unknown or already-removed tokens
// are a no-op. In-flight deliveries are not retracted.
func (s *Signal[T]) Unsubscribe(token Token) {
	s.mu.Lock()
	s.regs.remove(token)
	s.mu.Unlock()
}

// Emit broadcasts v to every live subscriber. Once the signal has completed
// or failed it is a logged no-op. Emit returns after dispatch has been
// scheduled on each subscriber's executor, not after handlers have run; the
// returned error joins any scheduling failures.
func (s *Signal[T]) Emit(v T) error {
	s.mu.Lock()
	if s.state != stateActive {
		s.mu.Unlock()
		s.dropped.Add(1)
		s.logger.Debug("emit dropped: signal terminated", s.logAttrs()...)
		return nil
	}
	if s.replay != nil {
		s.replay.append(v)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitted.Add(1)
	return s.fanOutValue(snap, v)
}

// Complete terminates the signal normally. The first terminal transition
// wins; later Complete or Fail calls are logged no-ops. Every live event
// subscriber receives a single completed event.
func (s *Signal[T]) Complete() error {
	return s.terminate(stateCompleted, nil)
}

// Fail terminates the signal with err. The error is carried verbatim, never
// wrapped, in the failed event delivered once to every live event
// subscriber.
func (s *Signal[T]) Fail(err error) error {
	return s.terminate(stateFailed, err)
}

func (s *Signal[T]) terminate(to signalState, failure error) error {
	s.mu.Lock()
	if s.state != stateActive {
		s.mu.Unlock()
		s.logger.Debug("terminal transition ignored: signal already terminated", s.logAttrs()...)
		return nil
	}
	s.state = to
	s.failure = failure
	s.stopTimersLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	ev := completedEvent[T]()
	if to == stateFailed {
		ev = failedEvent[T](failure)
	}

	var errs []error
	for _, rec := range snap {
		if rec.kind&handlesEvent == 0 {
			continue
		}
		if err := s.dispatch(rec.exec, func() { rec.event(ev) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribers prunes dead records and returns the live subscriber count.
func (s *Signal[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return s.regs.count()
}

// Stats returns a point-in-time snapshot of the signal's counters. Dead
// subscribers are pruned before the count is taken.
func (s *Signal[T]) Stats() SignalStats {
	s.mu.Lock()
	s.pruneLocked()
	active := s.regs.count()
	terminal := s.state != stateActive
	failure := s.failure
	s.mu.Unlock()

	return SignalStats{
		Emitted:           s.emitted.Load(),
		Delivered:         s.delivered.Load(),
		Dropped:           s.dropped.Load(),
		Pruned:            s.pruned.Load(),
		ActiveSubscribers: active,
		Terminal:          terminal,
		Err:               failure,
	}
}

// pruneLocked removes dead subscribers. Callers hold s.mu.
func (s *Signal[T]) pruneLocked() {
	if n := s.regs.pruneDead(); n > 0 {
		s.pruned.Add(int64(n))
		s.logger.Debug("pruned dead subscribers", s.logAttrs(slog.Int("count", n))...)
	}
}

// snapshotLocked prunes and copies the live records for fan-out. Callers
// hold s.mu; the snapshot is then used outside the lock.
func (s *Signal[T]) snapshotLocked() []*subscriberRecord[T] {
	s.pruneLocked()
	return s.regs.snapshot()
}

// fanOutValue dispatches v to every record in the snapshot: to the value
// handler directly and to the event handler wrapped as a next event. It
// runs outside the signal's lock, so handlers may re-enter the signal.
func (s *Signal[T]) fanOutValue(snap []*subscriberRecord[T], v T) error {
	var errs []error
	for _, rec := range snap {
		if rec.kind&handlesValue != 0 {
			if err := s.dispatch(rec.exec, func() { rec.value(v) }); err != nil {
				errs = append(errs, err)
			}
		}
		if rec.kind&handlesEvent != 0 {
			if err := s.dispatch(rec.exec, func() { rec.event(nextEvent(v)) }); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// dispatch schedules fn on exec, or runs it inline when exec is nil.
// Handler panics are recovered and logged so one subscriber cannot take
// down the publisher or its siblings.
func (s *Signal[T]) dispatch(exec Executor, fn func()) error {
	run := func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("subscriber handler panicked",
					s.logAttrs(slog.Any("panic", r))...)
			}
		}()
		fn()
		s.delivered.Add(1)
	}

	if exec == nil {
		run()
		return nil
	}
	if err := exec.Execute(run); err != nil {
		s.logger.Error("handler dispatch failed",
			s.logAttrs(slog.String("error", err.Error()))...)
		return err
	}
	return nil
}

func (s *Signal[T]) logAttrs(extra ...any) []any {
	attrs := make([]any, 0, 2+len(extra))
	attrs = append(attrs,
		slog.String("signal", s.name),
		slog.String("trace_id", s.traceID))
	return append(attrs, extra...)
}
