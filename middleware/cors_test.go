package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
	"github.com/dmitrymomot/relay/middleware"
)

func corsRouter(mw handler.Middleware[*router.Context]) router.Router[*router.Context] {
	r := router.New[*router.Context](router.WithMiddleware(mw))
	endpoint := func(ctx *router.Context) handler.Response { return response.Accepted() }
	r.Post("/api/messages", endpoint)
	r.Options("/api/messages", endpoint)
	return r
}

func TestCORSDefaultAllowsLocalhost(t *testing.T) {
	t.Parallel()

	r := corsRouter(middleware.CORS[*router.Context]())

	tests := []struct {
		name        string
		origin      string
		allowed     bool
		credentials string
	}{
		{name: "localhost_with_port", origin: "http://localhost:5173", allowed: true, credentials: "true"},
		{name: "localhost_https", origin: "https://LOCALHOST", allowed: true, credentials: "true"},
		{name: "other_host", origin: "https://example.com", allowed: false},
		{name: "localhost_lookalike", origin: "http://localhost.evil.com", allowed: false},
		{name: "no_origin", origin: "", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusAccepted, w.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, tt.credentials, w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	r := corsRouter(middleware.CORSWithConfig[*router.Context](middleware.CORSConfig{
		AllowOriginFunc:  middleware.AllowOriginHosts("localhost"),
		AllowCredentials: true,
		MaxAge:           600,
	}))

	t.Run("allowed", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("forbidden_origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("forbidden_method", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCORSWildcardOmitsCredentials(t *testing.T) {
	t.Parallel()

	r := corsRouter(middleware.CORSWithConfig[*router.Context](middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
