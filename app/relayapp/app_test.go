package relayapp_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/app/relayapp"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

func startApp(t *testing.T, opts ...relayapp.AppOption) (*relayapp.App, *httptest.Server) {
	t.Helper()

	base := []relayapp.AppOption{
		relayapp.WithConfig(relayapp.DefaultConfig()),
		relayapp.WithLogger(logger.Nop()),
		relayapp.WithMetricsRegistry(prometheus.NewRegistry()),
		relayapp.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	}
	app, err := relayapp.NewApp(context.Background(), append(base, opts...)...)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return app, srv
}

func TestApp(t *testing.T) {
	t.Parallel()

	t.Run("health", func(t *testing.T) {
		t.Parallel()

		_, srv := startApp(t)
		for _, path := range []string{"/health/live", "/health/ready"} {
			resp, err := http.Get(srv.URL + path)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()

		_, srv := startApp(t)
		resp, err := http.Post(srv.URL+"/api/messages", "application/json", strings.NewReader(`{"text":"  "}`))
		require.NoError(t, err)
		resp.Body.Close()

		resp, err = http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body bytes.Buffer
		_, err = body.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, body.String(), `relay_ingress_submissions_total{result="invalid"} 1`)
	})

	t.Run("relays_to_subscribers", func(t *testing.T) {
		t.Parallel()

		app, srv := startApp(t)
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + relayapp.DefaultConfig().Hub.Path

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		hs, err := message.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, message.TypeHandshake, hs.Type)
		require.Eventually(t, func() bool { return app.Registry().Count() == 1 }, time.Second, 10*time.Millisecond)

		resp, err := http.Post(srv.URL+"/api/messages", "application/json", strings.NewReader(`{"text":"hello"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		_, data, err = conn.ReadMessage()
		require.NoError(t, err)
		env, err := message.Decode(data)
		require.NoError(t, err)
		payload, ok := env.Payload()
		require.True(t, ok)
		assert.Equal(t, "[2024-01-01T00:00:00.0000000+00:00] hello", payload)
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()

		_, srv := startApp(t)
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/messages", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("rejects_foreign_origin_upgrade", func(t *testing.T) {
		t.Parallel()

		_, srv := startApp(t)
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + relayapp.DefaultConfig().Hub.Path

		_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"https://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestNewAppUnknownBackplane(t *testing.T) {
	t.Parallel()

	cfg := relayapp.DefaultConfig()
	cfg.Backplane = "kafka"

	_, err := relayapp.NewApp(context.Background(),
		relayapp.WithConfig(cfg),
		relayapp.WithLogger(logger.Nop()),
		relayapp.WithMetricsRegistry(prometheus.NewRegistry()),
	)
	assert.ErrorIs(t, err, relayapp.ErrUnknownBackplane)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := relayapp.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"

	app, err := relayapp.NewApp(context.Background(),
		relayapp.WithConfig(cfg),
		relayapp.WithLogger(logger.Nop()),
		relayapp.WithMetricsRegistry(prometheus.NewRegistry()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
