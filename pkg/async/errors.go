package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the future does not complete in time.
	ErrTimeout = errors.New("async: timeout waiting for result")

	// ErrPanic wraps a panic recovered from an asynchronous function.
	ErrPanic = errors.New("async: function panicked")
)
