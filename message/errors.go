package message

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy shared by the relay server and its clients.
var (
	// ErrValidation marks bad input. It is never retried.
	ErrValidation = errors.New("validation error")

	// ErrTransport marks network failures and timeouts that exhausted the retry budget.
	ErrTransport = errors.New("transport error")

	// ErrConnectionLost marks a push channel that dropped and could not be re-established.
	// Recovering requires a new Initialize call.
	ErrConnectionLost = errors.New("connection lost")

	// ErrCanceled marks a caller-requested abort, kept distinct from failures.
	ErrCanceled = errors.New("operation canceled")

	// ErrMalformed marks a frame or tagged string that cannot be decoded.
	ErrMalformed = errors.New("malformed message")
)

// Canceled wraps a context error so that callers can match both ErrCanceled and the
// original context error. Non-context errors are returned unchanged.
func Canceled(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if errors.Is(err, ErrCanceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}

// IsCanceled reports whether err is a cancellation outcome.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
