package client_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/client"
	"github.com/dmitrymomot/relay/message"
)

type result struct {
	status int
	err    error
}

// scriptedRequester answers attempts from a script; the last entry repeats.
type scriptedRequester struct {
	mu       sync.Mutex
	script   []result
	calls    []client.Submission
	urls     []string
	startsAt []time.Time
	block    bool
}

func (r *scriptedRequester) Post(ctx context.Context, url string, sub client.Submission) (int, error) {
	r.mu.Lock()
	r.calls = append(r.calls, sub)
	r.urls = append(r.urls, url)
	r.startsAt = append(r.startsAt, time.Now())
	i := len(r.calls) - 1
	if i >= len(r.script) {
		i = len(r.script) - 1
	}
	res := r.script[i]
	block := r.block
	r.mu.Unlock()

	if block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return res.status, res.err
}

func (r *scriptedRequester) attempts() []client.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]client.Submission(nil), r.calls...)
}

func newService(t *testing.T, req client.Requester, mutate ...func(*client.Config)) *client.Service {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.BaseURL = "http://relay.test"
	cfg.RetryDelay = 20 * time.Millisecond
	for _, m := range mutate {
		m(&cfg)
	}
	return client.New(cfg, client.WithRequester(req), client.WithDialer(&fakeDialer{}))
}

func collect[T any](e *client.Event[T]) func() []T {
	var mu sync.Mutex
	var got []T
	e.Subscribe(func(v T) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, v)
	})
	return func() []T {
		mu.Lock()
		defer mu.Unlock()
		return append([]T(nil), got...)
	}
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	t.Run("succeeds_after_two_failures", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{
			{status: http.StatusServiceUnavailable},
			{err: errors.New("connection refused")},
			{status: http.StatusAccepted},
		}}
		svc := newService(t, req)
		errs := collect(&svc.ErrorOccurred)

		start := time.Now()
		require.NoError(t, svc.SendMessage(context.Background(), "hello"))

		calls := req.attempts()
		require.Len(t, calls, 3)
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "retry delay between attempts")
		assert.Empty(t, errs())

		for _, c := range calls {
			assert.Equal(t, "hello", c.Text)
			assert.Equal(t, calls[0].IdempotencyKey, c.IdempotencyKey)
		}
		assert.NotEmpty(t, calls[0].IdempotencyKey)
		assert.Equal(t, "http://relay.test/api/messages", req.urls[0])
	})

	t.Run("exhausts_retry_budget", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{{err: errors.New("no route to host")}}}
		svc := newService(t, req)
		errs := collect(&svc.ErrorOccurred)

		err := svc.SendMessage(context.Background(), "hello")
		assert.ErrorIs(t, err, message.ErrTransport)
		assert.Len(t, req.attempts(), 3)
		assert.Equal(t, []string{client.MsgServerUnavailable}, errs())
	})

	t.Run("non_success_status_is_retried", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{{status: http.StatusBadRequest}}}
		svc := newService(t, req)

		err := svc.SendMessage(context.Background(), "hello", client.WithMaxRetries(2))
		assert.ErrorIs(t, err, message.ErrTransport)
		assert.ErrorIs(t, err, client.ErrUnexpectedStatus)
		assert.Len(t, req.attempts(), 2)
	})

	for _, text := range []string{"", "  ", "\t\n"} {
		t.Run("blank_text_is_not_sent", func(t *testing.T) {
			t.Parallel()

			req := &scriptedRequester{script: []result{{status: http.StatusAccepted}}}
			svc := newService(t, req)
			errs := collect(&svc.ErrorOccurred)

			err := svc.SendMessage(context.Background(), text)
			assert.ErrorIs(t, err, message.ErrValidation)
			assert.Empty(t, req.attempts())
			assert.Empty(t, errs())
		})
	}

	t.Run("rejects_non_positive_max_retries", func(t *testing.T) {
		t.Parallel()

		for _, n := range []int{0, -1} {
			req := &scriptedRequester{script: []result{{status: http.StatusAccepted}}}
			svc := newService(t, req)
			errs := collect(&svc.ErrorOccurred)

			err := svc.SendMessage(context.Background(), "hello", client.WithMaxRetries(n))
			assert.ErrorIs(t, err, message.ErrValidation, "n=%d", n)
			assert.Empty(t, req.attempts())
			assert.Empty(t, errs())
		}
	})

	t.Run("cancel_during_retry_wait", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{{status: http.StatusInternalServerError}}}
		svc := newService(t, req, func(c *client.Config) { c.RetryDelay = time.Minute })
		errs := collect(&svc.ErrorOccurred)

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(30*time.Millisecond, cancel)

		start := time.Now()
		err := svc.SendMessage(ctx, "hello")
		assert.ErrorIs(t, err, message.ErrCanceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, message.ErrTransport))
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Len(t, req.attempts(), 1)
		assert.Empty(t, errs())
	})

	t.Run("cancel_during_request", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{{status: http.StatusAccepted}}, block: true}
		svc := newService(t, req)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		err := svc.SendMessage(ctx, "hello")
		assert.ErrorIs(t, err, message.ErrCanceled)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Len(t, req.attempts(), 1)
	})

	t.Run("attempt_timeout_is_retried", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{{status: http.StatusAccepted}}, block: true}
		svc := newService(t, req, func(c *client.Config) {
			c.RequestTimeout = 10 * time.Millisecond
			c.RetryDelay = time.Millisecond
		})

		var attempts []client.Attempt
		err := svc.SendMessage(context.Background(), "hello",
			client.WithAttemptHook(func(a client.Attempt) { attempts = append(attempts, a) }),
		)
		assert.ErrorIs(t, err, message.ErrTransport)
		require.Len(t, attempts, 3)
		for i, a := range attempts {
			assert.Equal(t, i+1, a.Number)
			assert.Equal(t, client.OutcomeTimeout, a.Outcome)
		}
	})

	t.Run("attempt_hook_and_options", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{
			{status: http.StatusBadGateway},
			{status: http.StatusNoContent},
		}}
		svc := newService(t, req)

		var attempts []client.Attempt
		err := svc.SendMessage(context.Background(), "hello",
			client.WithMaxRetries(5),
			client.WithRetryDelay(5*time.Millisecond),
			client.WithIdempotencyKey("fixed-key"),
			client.WithAttemptHook(func(a client.Attempt) { attempts = append(attempts, a) }),
		)
		require.NoError(t, err)

		require.Len(t, attempts, 2)
		assert.Equal(t, client.OutcomeFailure, attempts[0].Outcome)
		assert.Equal(t, http.StatusBadGateway, attempts[0].Status)
		assert.Equal(t, 5*time.Millisecond, attempts[0].Backoff)
		assert.Equal(t, client.OutcomeSuccess, attempts[1].Outcome)
		assert.Equal(t, time.Duration(0), attempts[1].Backoff)

		for _, c := range req.attempts() {
			assert.Equal(t, "fixed-key", c.IdempotencyKey)
		}
	})

	t.Run("fresh_key_per_call", func(t *testing.T) {
		t.Parallel()

		req := &scriptedRequester{script: []result{{status: http.StatusAccepted}}}
		svc := newService(t, req)

		require.NoError(t, svc.SendMessage(context.Background(), "one"))
		require.NoError(t, svc.SendMessage(context.Background(), "two"))

		calls := req.attempts()
		require.Len(t, calls, 2)
		assert.NotEqual(t, calls[0].IdempotencyKey, calls[1].IdempotencyKey)
	})
}
