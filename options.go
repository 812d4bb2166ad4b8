package signals

import (
	"log/slog"
	"weak"
)

type config struct {
	name    string
	traceID string
	logger  *slog.Logger
}

// Option configures a Signal at construction time.
type Option func(*config)

// WithName labels the signal in log output.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger enables structured logging for the signal's internal
// operations. The default logger discards everything. Logging is a pure
// side channel and has no effect on delivery semantics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTraceID overrides the generated trace id attached to every log line.
func WithTraceID(id string) Option {
	return func(c *config) {
		if id != "" {
			c.traceID = id
		}
	}
}

type subscribeOptions struct {
	exec  Executor
	alive func() bool
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeOptions)

// WithExecutor dispatches the subscriber's handler invocations on exec
// instead of running them synchronously on the emitting goroutine.
func WithExecutor(exec Executor) SubscribeOption {
	return func(o *subscribeOptions) {
		o.exec = exec
	}
}

// WithOwner ties the subscription's lifetime to the reachability of owner.
// The subscription holds only a weak pointer: it does not keep owner alive,
// and once owner is collected the subscriber is pruned lazily on the next
// emission, termination, or count.
func WithOwner[O any](owner *O) SubscribeOption {
	p := weak.Make(owner)
	return func(o *subscribeOptions) {
		o.alive = func() bool {
			return p.Value() != nil
		}
	}
}
