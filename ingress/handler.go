package ingress

import (
	"errors"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/relay/core/binder"
	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/message"
	"github.com/dmitrymomot/relay/middleware"
)

type submitRequest struct {
	Text string `json:"text"`
}

// Handler serves POST submissions: 202 on acceptance, 400 with ValidationMessage on
// blank text, 400/413/415 on a body that cannot be bound.
func Handler[C handler.Context](s *Service, cfg Config) handler.HandlerFunc[C] {
	bind := binder.JSON(binder.WithMaxSize(cfg.MaxBodySize))

	return func(ctx C) handler.Response {
		r := ctx.Request()

		var req submitRequest
		if err := bind(r, &req); err != nil {
			s.metrics.submission(resultInvalid)
			return response.Error(bindError(err))
		}

		_, err := s.SubmitWithKey(ctx, r.Header.Get(IdempotencyKeyHeader), req.Text)
		switch {
		case err == nil:
			return response.Accepted()
		case errors.Is(err, message.ErrValidation):
			return response.Error(response.ErrBadRequest.WithMessage(ValidationMessage).WithError(err))
		case message.IsCanceled(err):
			return response.Error(response.ErrRequestTimeout.WithError(err))
		default:
			return response.Error(err)
		}
	}
}

// RateLimit limits accepted submissions across all producers. It passes every request
// through when cfg.RateLimit is zero.
func RateLimit[C handler.Context](cfg Config, m *Metrics) handler.Middleware[C] {
	if cfg.RateLimit <= 0 {
		return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] { return next }
	}

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return middleware.RateLimitWithConfig[C](middleware.RateLimitConfig{
		Limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		OnReject: func(handler.Context) {
			m.submission(resultRateLimited)
		},
	})
}

func bindError(err error) error {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return response.ErrUnsupportedMediaType.WithError(err)
	case errors.Is(err, binder.ErrBodyTooLarge):
		return response.ErrRequestTooLarge.WithError(err)
	default:
		return response.ErrBadRequest.WithError(err)
	}
}
