package signals

// EventKind discriminates the variants of Event.
type EventKind uint8

const (
	// KindNext carries an emitted value.
	KindNext EventKind = iota + 1
	// KindCompleted marks normal termination of the signal.
	KindCompleted
	// KindFailed marks termination with an error.
	KindFailed
)

// String returns a human-readable name for the kind.
func (k EventKind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindCompleted:
		return "completed"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is what event subscribers receive: either an emitted value or one
// of the two terminal notifications.
type Event[T any] struct {
	Kind  EventKind
	Value T     // set when Kind is KindNext
	Err   error // set when Kind is KindFailed
}

// Terminal reports whether the event ends the stream.
func (e Event[T]) Terminal() bool {
	return e.Kind == KindCompleted || e.Kind == KindFailed
}

func nextEvent[T any](v T) Event[T] {
	return Event[T]{Kind: KindNext, Value: v}
}

func completedEvent[T any]() Event[T] {
	return Event[T]{Kind: KindCompleted}
}

func failedEvent[T any](err error) Event[T] {
	return Event[T]{Kind: KindFailed, Err: err}
}
