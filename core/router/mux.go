package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/dmitrymomot/relay/core/handler"
)

var knownMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

// routeTable is shared by a root mux and its inline groups.
type routeTable struct {
	mu       sync.RWMutex
	serveMux *http.ServeMux
	routes   []Route
	sealed   bool
}

// mux is the private implementation of Router.
type mux[C handler.Context] struct {
	table        *routeTable
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
	parent       *mux[C]
	inline       bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		table:        &routeTable{serveMux: http.NewServeMux()},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(newContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	if _, pattern := m.table.serveMux.Handler(r); pattern == "" {
		ctx := m.newContext(ww, r)
		if allowed := m.allowedMethods(r); len(allowed) > 0 {
			ww.Header().Set("Allow", strings.Join(allowed, ", "))
			m.errorHandler(ctx, ErrMethodNotAllowed)
			return
		}
		m.errorHandler(ctx, ErrNotFound)
		return
	}

	// Path values are populated only when the ServeMux dispatches.
	m.table.serveMux.ServeHTTP(ww, r)
}

// allowedMethods lists methods that would match the request path.
func (m *mux[C]) allowedMethods(r *http.Request) []string {
	var allowed []string
	for _, method := range knownMethods {
		if method == r.Method {
			continue
		}
		probe := r.Clone(r.Context())
		probe.Method = method
		if _, p := m.table.serveMux.Handler(probe); p != "" {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// endpoint adapts a typed handler into an http.Handler running the full
// middleware chain, panic recovery and error handling.
func (m *mux[C]) endpoint(fn handler.HandlerFunc[C]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww, ok := w.(*responseWriter)
		if !ok {
			ww = newResponseWriter(w)
		}
		ctx := m.newContext(ww, r)

		defer func() {
			if p := recover(); p != nil {
				panicErr := &panicError{value: p, stack: debug.Stack()}
				if ww.Written() {
					m.logger.Error("panic after response written",
						"value", panicErr.value,
						"stack", string(panicErr.stack),
						"path", r.URL.Path,
						"method", r.Method,
						"status", ww.Status(),
					)
					return
				}
				m.errorHandler(ctx, panicErr)
			}
		}()

		h := fn
		if root := m.root(); len(root.middlewares) > 0 {
			h = handler.Chain(h, root.middlewares...)
		}

		response := h(ctx)
		if response == nil {
			m.errorHandler(ctx, ErrNilResponse)
			return
		}

		if err := response(ww, ctx.Request()); err != nil {
			m.errorHandler(ctx, err)
		}
	})
}

func (m *mux[C]) root() *mux[C] {
	curr := m
	for curr.inline && curr.parent != nil {
		curr = curr.parent
	}
	return curr
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

// Options registers a handler for OPTIONS requests.
func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodOptions, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle("", pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !isKnownMethod(method) {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h)
	}
}

// HandleHTTP registers a plain http.Handler. Router middleware does not apply.
func (m *mux[C]) HandleHTTP(method, pattern string, h http.Handler) {
	if h == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilHandler, pattern))
	}
	m.register(strings.ToUpper(method), pattern, h)
}

// Use appends middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.table.mu.RLock()
	sealed := m.table.sealed
	m.table.mu.RUnlock()
	if sealed && !m.inline {
		panic("relay: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		inline:       true,
		parent:       m,
		table:        m.table,
		middlewares:  middlewares,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Routes returns all registered routes in registration order.
func (m *mux[C]) Routes() []Route {
	m.table.mu.RLock()
	defer m.table.mu.RUnlock()
	return append([]Route(nil), m.table.routes...)
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilHandler, pattern))
	}

	// Inline routers collect middlewares up to the root; root middlewares are
	// applied per request by endpoint.
	var chain []handler.Middleware[C]
	for curr := m; curr != nil && curr.inline; curr = curr.parent {
		chain = append(append([]handler.Middleware[C](nil), curr.middlewares...), chain...)
	}
	h := fn
	if len(chain) > 0 {
		h = handler.Chain(h, chain...)
	}

	m.register(method, pattern, m.endpoint(h))
}

func (m *mux[C]) register(method, pattern string, h http.Handler) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}

	full := pattern
	if method != "" {
		full = method + " " + pattern
	}

	m.table.mu.Lock()
	defer m.table.mu.Unlock()
	m.table.serveMux.Handle(full, h)
	if method == "" {
		method = "*"
	}
	m.table.routes = append(m.table.routes, Route{Method: method, Pattern: pattern})
	m.table.sealed = true
}

func isKnownMethod(method string) bool {
	for _, known := range knownMethods {
		if known == method {
			return true
		}
	}
	return false
}
