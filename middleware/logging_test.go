package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
	"github.com/dmitrymomot/relay/middleware"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestLoggingLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   handler.Response
		status float64
		level  string
	}{
		{name: "accepted", resp: response.Accepted(), status: http.StatusAccepted, level: "INFO"},
		{name: "bad_request", resp: response.Error(response.ErrBadRequest), status: http.StatusBadRequest, level: "WARN"},
		{name: "server_error", resp: response.Error(errors.New("boom")), status: http.StatusInternalServerError, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))

			r := router.New[*router.Context](
				router.WithErrorHandler(response.ErrorHandler[*router.Context]),
				router.WithMiddleware(
					middleware.RequestID[*router.Context](),
					middleware.LoggingWithLogger[*router.Context](log),
				),
			)
			r.Post("/api/messages", func(ctx *router.Context) handler.Response { return tt.resp })

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/messages", nil))

			records := decodeRecords(t, &buf)
			require.Len(t, records, 1)
			assert.Equal(t, tt.level, records[0]["level"])
			assert.Equal(t, tt.status, records[0]["status_code"])
			assert.Equal(t, "/api/messages", records[0]["path"])
			assert.NotEmpty(t, records[0]["request_id"])
		})
	}
}

func TestLoggingSkip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))

	r := router.New[*router.Context](router.WithMiddleware(middleware.LoggingWithConfig[*router.Context](middleware.LoggingConfig{
		Logger: log,
		Skip: func(ctx handler.Context) bool {
			return strings.HasPrefix(ctx.Request().URL.Path, "/health")
		},
	})))
	r.Get("/health/live", func(ctx *router.Context) handler.Response { return response.String("ALIVE") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Empty(t, buf.String())
}

func TestLoggingPassesWebSocketUpgrade(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))

	r := router.New[*router.Context](router.WithMiddleware(middleware.LoggingWithLogger[*router.Context](log)))
	r.Get("/hubs/messages", func(ctx *router.Context) handler.Response {
		return response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
			return conn.WriteMessage(websocket.TextMessage, []byte("hi"))
		}, response.WithWSAllowAnyOrigin())
	})

	server := httptest.NewServer(r)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/hubs/messages", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}
