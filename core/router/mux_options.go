package router

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/relay/core/handler"
)

// Option configures a Router during creation.
type Option[C handler.Context] func(*mux[C])

// WithErrorHandler renders errors returned by handlers, including 404, 405 and
// recovered panics. A nil handler keeps the plain text default.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithMiddleware installs root middlewares, run for every matched route in the
// order given. Nil entries are skipped so optional middlewares can be passed as is.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(m *mux[C]) {
		for _, mw := range middlewares {
			if mw != nil {
				m.middlewares = append(m.middlewares, mw)
			}
		}
	}
}

// WithContextFactory builds the handler context of each request.
// Required unless C is *router.Context.
func WithContextFactory[C handler.Context](f func(http.ResponseWriter, *http.Request) C) Option[C] {
	return func(m *mux[C]) {
		if f != nil {
			m.newContext = f
		}
	}
}

// WithLogger receives panics raised after a response was partly written.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if logger != nil {
			m.logger = logger
		}
	}
}
