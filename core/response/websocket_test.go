package response_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/response"
)

func serveWS(t *testing.T, resp handler.Response) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, resp(w, r))
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocket_Upgrade(t *testing.T) {
	t.Parallel()

	t.Run("handler_writes_frame", func(t *testing.T) {
		t.Parallel()

		wsURL := serveWS(t, response.WebSocket(
			func(ctx context.Context, conn *websocket.Conn) error {
				return conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"handshake"}`))
			},
			response.WithWSAllowAnyOrigin(),
		))

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		msgType, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, msgType)
		assert.JSONEq(t, `{"type":"handshake"}`, string(data))
	})

	t.Run("read_limit_closes_oversized_frame", func(t *testing.T) {
		t.Parallel()

		readErr := make(chan error, 1)
		wsURL := serveWS(t, response.WebSocket(
			func(ctx context.Context, conn *websocket.Conn) error {
				_, _, err := conn.ReadMessage()
				readErr <- err
				return err
			},
			response.WithWSReadLimit(16),
			response.WithWSAllowAnyOrigin(),
		))

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 64))))

		select {
		case err := <-readErr:
			assert.ErrorIs(t, err, websocket.ErrReadLimit)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for read limit error")
		}
	})

	t.Run("origin_check_rejects", func(t *testing.T) {
		t.Parallel()

		upgradeErr := make(chan error, 1)
		wsURL := serveWS(t, response.WebSocket(
			func(ctx context.Context, conn *websocket.Conn) error { return nil },
			response.WithWSOriginCheck(func(r *http.Request) bool {
				return r.Header.Get("Origin") == "http://localhost:3000"
			}),
			response.WithWSErrorHandler(func(ctx context.Context, err error) {
				upgradeErr <- err
			}),
		))

		_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example.com"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		select {
		case err := <-upgradeErr:
			assert.Error(t, err)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for upgrade error")
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://localhost:3000"}})
		require.NoError(t, err)
		conn.Close()
	})
}

func TestWebSocket_Callbacks(t *testing.T) {
	t.Parallel()

	var (
		connected    bool
		disconnected = make(chan struct{})
		mu           sync.Mutex
	)

	wsURL := serveWS(t, response.WebSocket(
		func(ctx context.Context, conn *websocket.Conn) error {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return nil
				}
			}
		},
		response.WithWSOnConnect(func(ctx context.Context, conn *websocket.Conn) error {
			mu.Lock()
			connected = true
			mu.Unlock()
			return nil
		}),
		response.WithWSOnDisconnect(func(ctx context.Context, conn *websocket.Conn) {
			close(disconnected)
		}),
		response.WithWSUpgradeHeaders(http.Header{"X-Relay": []string{"1"}}),
		response.WithWSAllowAnyOrigin(),
	))

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", resp.Header.Get("X-Relay"))

	require.NoError(t, conn.Close())

	select {
	case <-disconnected:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for disconnect")
	}

	mu.Lock()
	assert.True(t, connected)
	mu.Unlock()
}
