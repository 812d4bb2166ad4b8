package signals

import "errors"

var (
	// ErrExecutorClosed is returned when work is submitted to an executor
	// that has been shut down.
	ErrExecutorClosed = errors.New("executor closed")

	// ErrStreamClosed is returned by Stream.Close after the stream has
	// already been torn down.
	ErrStreamClosed = errors.New("stream closed")
)
