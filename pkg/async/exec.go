package async

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ExecFuture represents the result of an asynchronous computation that only returns an error.
type ExecFuture struct {
	err  error
	done chan struct{}
}

// Await waits for the asynchronous function to complete and returns its error.
func (f *ExecFuture) Await() error {
	<-f.done
	return f.err
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// Returns ErrTimeout if the function is still running when the timeout expires.
func (f *ExecFuture) AwaitWithTimeout(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.err
	case <-timer.C:
		return ErrTimeout
	}
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *ExecFuture) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the function completes.
func (f *ExecFuture) Done() <-chan struct{} {
	return f.done
}

// Exec executes fn asynchronously with param. A panic inside fn is recovered
// and reported as an error wrapping ErrPanic.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	f := &ExecFuture{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if p := recover(); p != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, p)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.err = fn(ctx, param)
	}()

	return f
}

// ExecAll waits for all futures to complete and returns the first error encountered.
func ExecAll(futures ...*ExecFuture) error {
	var first error
	for _, future := range futures {
		if err := future.Await(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Tracker keeps track of in-flight futures so callers can drain them on shutdown.
// The zero value is ready to use.
type Tracker struct {
	wg sync.WaitGroup
}

// Go runs fn through Exec and tracks it until it completes.
func Go[T any](t *Tracker, ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	t.wg.Add(1)
	f := Exec(ctx, param, fn)
	go func() {
		<-f.done
		t.wg.Done()
	}()
	return f
}

// Wait blocks until every tracked future completes or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
