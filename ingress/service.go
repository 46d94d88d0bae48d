package ingress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/hub"
	"github.com/dmitrymomot/relay/message"
	"github.com/dmitrymomot/relay/pkg/async"
)

// Service accepts submissions and hands them to the fan-out target.
type Service struct {
	target  hub.Broadcaster
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics

	dedupMu sync.Mutex
	dedup   *expirable.LRU[string, struct{}]

	inflight async.Tracker
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the receipt clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDedup remembers idempotency keys for ttl, holding at most size keys.
// A non-positive ttl or size disables deduplication.
func WithDedup(ttl time.Duration, size int) Option {
	return func(s *Service) {
		if ttl <= 0 || size <= 0 {
			s.dedup = nil
			return
		}
		s.dedup = expirable.NewLRU[string, struct{}](size, nil, ttl)
	}
}

// NewService creates an ingress service broadcasting to target.
func NewService(target hub.Broadcaster, opts ...Option) *Service {
	s := &Service{
		target: target,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit accepts text for broadcast. It returns once the message is handed off;
// delivery outcomes never reach the caller.
func (s *Service) Submit(ctx context.Context, text string) error {
	_, err := s.SubmitWithKey(ctx, "", text)
	return err
}

// SubmitWithKey is Submit with an optional idempotency key. A key already seen within the
// dedup window is accepted again without a second broadcast and reported as duplicate.
func (s *Service) SubmitWithKey(ctx context.Context, key, text string) (duplicate bool, err error) {
	if err := ctx.Err(); err != nil {
		s.metrics.submission(resultCanceled)
		return false, message.Canceled(err)
	}

	msg, err := message.New(text, s.now())
	if err != nil {
		s.metrics.submission(resultInvalid)
		return false, err
	}

	if key != "" && s.seen(key) {
		s.metrics.submission(resultDuplicate)
		s.logger.DebugContext(ctx, "duplicate submission ignored", logger.IdempotencyKey(key))
		return true, nil
	}

	// The request context ends with the response; fan-out must outlive it.
	async.Go(&s.inflight, context.WithoutCancel(ctx), msg, s.fanout)

	s.metrics.submission(resultAccepted)
	s.logger.DebugContext(ctx, "message accepted", logger.IdempotencyKey(key))
	return false, nil
}

// Wait blocks until every accepted message has been handed to the target or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	return s.inflight.Wait(ctx)
}

func (s *Service) fanout(ctx context.Context, msg message.Message) error {
	if err := s.target.Broadcast(ctx, msg); err != nil {
		s.metrics.fanoutFailed()
		s.logger.ErrorContext(ctx, "failed to fan out message", logger.Error(err))
		return err
	}
	return nil
}

// seen records key and reports whether it was already present.
func (s *Service) seen(key string) bool {
	if s.dedup == nil {
		return false
	}

	s.dedupMu.Lock()
	defer s.dedupMu.Unlock()

	if s.dedup.Contains(key) {
		return true
	}
	s.dedup.Add(key, struct{}{})
	return false
}
