package signals

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// rateGate holds a signal's throttle and debounce state. All fields are
// guarded by the owning signal's mutex.
type rateGate struct {
	limiter  *rate.Limiter
	interval time.Duration

	debounce    *time.Timer
	debounceGen uint64
}

// limiterFor returns the cooldown limiter, rebuilding it when the caller
// changes the interval.
func (g *rateGate) limiterFor(interval time.Duration) *rate.Limiter {
	if g.limiter == nil || g.interval != interval {
		g.limiter = rate.NewLimiter(rate.Every(interval), 1)
		g.interval = interval
	}
	return g.limiter
}

// EmitThrottled emits v unless the signal is inside the cooldown opened by
// a previous throttled emit. The first call emits immediately and opens a
// cooldown of interval; calls during the cooldown are dropped outright,
// not queued. When the cooldown elapses the next call emits immediately
// again.
func (s *Signal[T]) EmitThrottled(v T, interval time.Duration) error {
	s.mu.Lock()
	if s.state != stateActive {
		s.mu.Unlock()
		s.dropped.Add(1)
		s.logger.Debug("throttled emit dropped: signal terminated", s.logAttrs()...)
		return nil
	}
	allowed := s.gate.limiterFor(interval).Allow()
	var snap []*subscriberRecord[T]
	if allowed {
		if s.replay != nil {
			s.replay.append(v)
		}
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if !allowed {
		s.dropped.Add(1)
		s.logger.Debug("throttled emit dropped: cooldown pending",
			s.logAttrs(slog.Duration("interval", interval))...)
		return nil
	}

	s.emitted.Add(1)
	return s.fanOutValue(snap, v)
}

// EmitDebounced schedules v to be emitted after delay, replacing any
// emission still pending from an earlier call. A burst of calls therefore
// collapses into a single emission of the last value, delay after the
// burst ends. Terminating the signal cancels the pending emission.
func (s *Signal[T]) EmitDebounced(v T, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateActive {
		s.dropped.Add(1)
		s.logger.Debug("debounced emit dropped: signal terminated", s.logAttrs()...)
		return nil
	}

	if s.gate.debounce != nil {
		s.gate.debounce.Stop()
		s.dropped.Add(1)
		s.logger.Debug("debounced emit replaced",
			s.logAttrs(slog.Duration("delay", delay))...)
	}
	s.gate.debounceGen++
	gen := s.gate.debounceGen
	s.gate.debounce = time.AfterFunc(delay, func() {
		s.debounceFire(gen, v)
	})
	return nil
}

// debounceFire runs on the timer goroutine and re-acquires the signal's
// exclusion before touching shared state. The generation check settles the
// race between a firing timer and a cancellation: a stale generation means
// a newer call or a terminal transition superseded this timer.
func (s *Signal[T]) debounceFire(gen uint64, v T) {
	s.mu.Lock()
	if s.gate.debounceGen != gen || s.state != stateActive {
		s.mu.Unlock()
		return
	}
	s.gate.debounce = nil
	if s.replay != nil {
		s.replay.append(v)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitted.Add(1)
	if err := s.fanOutValue(snap, v); err != nil {
		// The caller that scheduled this emission is long gone, so the
		// scheduling failure can only be logged.
		s.logger.Error("debounced dispatch failed",
			s.logAttrs(slog.String("error", err.Error()))...)
	}
}

// stopTimersLocked cancels any pending debounce timer so a terminated
// signal holds no timer resources. Callers hold s.mu.
func (s *Signal[T]) stopTimersLocked() {
	s.gate.debounceGen++
	if s.gate.debounce != nil {
		s.gate.debounce.Stop()
		s.gate.debounce = nil
	}
}
