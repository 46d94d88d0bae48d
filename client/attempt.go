package client

import "time"

// Outcome is the result of one submission attempt.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeCanceled Outcome = "canceled"
)

// Attempt describes one try of a SendMessage call.
type Attempt struct {
	Number  int
	Outcome Outcome
	// Status is the HTTP status of the response, zero when none was received.
	Status int
	Err    error
	// Backoff is the wait before the next attempt, zero on the last one.
	Backoff time.Duration
}

// SendOption configures a single SendMessage call.
type SendOption func(*sendOptions)

type sendOptions struct {
	maxRetries     int
	retryDelay     time.Duration
	idempotencyKey string
	onAttempt      func(Attempt)
}

// WithMaxRetries overrides the number of attempts for this call.
// SendMessage rejects n < 1 with ErrValidation.
func WithMaxRetries(n int) SendOption {
	return func(o *sendOptions) {
		o.maxRetries = n
	}
}

// WithRetryDelay overrides the wait between attempts for this call.
func WithRetryDelay(d time.Duration) SendOption {
	return func(o *sendOptions) {
		if d >= 0 {
			o.retryDelay = d
		}
	}
}

// WithIdempotencyKey sets the key sent with every attempt of this call.
// By default a random UUID is generated per call.
func WithIdempotencyKey(key string) SendOption {
	return func(o *sendOptions) {
		o.idempotencyKey = key
	}
}

// WithAttemptHook reports every attempt as it completes.
func WithAttemptHook(fn func(Attempt)) SendOption {
	return func(o *sendOptions) {
		o.onAttempt = fn
	}
}
