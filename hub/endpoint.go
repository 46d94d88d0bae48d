package hub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/message"
)

// Endpoint upgrades subscriber requests to push channels and keeps them registered
// for the lifetime of the connection.
type Endpoint struct {
	registry    *Registry
	cfg         Config
	logger      *slog.Logger
	newID       func() string
	originCheck func(r *http.Request) bool
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

func WithEndpointLogger(log *slog.Logger) EndpointOption {
	return func(e *Endpoint) {
		if log != nil {
			e.logger = log
		}
	}
}

// WithOriginCheck replaces the same-origin check applied to browser upgrades.
func WithOriginCheck(fn func(r *http.Request) bool) EndpointOption {
	return func(e *Endpoint) {
		e.originCheck = fn
	}
}

// WithIDGenerator overrides the UUID v4 connection id generator.
func WithIDGenerator(fn func() string) EndpointOption {
	return func(e *Endpoint) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEndpoint creates the push endpoint for registry.
func NewEndpoint(registry *Registry, cfg Config, opts ...EndpointOption) *Endpoint {
	e := &Endpoint{
		registry: registry,
		cfg:      cfg.withDefaults(),
		logger:   logger.Nop(),
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the route the endpoint is served on.
func (e *Endpoint) Path() string {
	return e.cfg.Path
}

// Response upgrades the request and serves the push channel until it closes.
func (e *Endpoint) Response() handler.Response {
	opts := []response.WebSocketOption{
		response.WithWSReadLimit(e.cfg.MaxMessageSize),
		response.WithWSHandshakeTimeout(e.cfg.WriteWait),
		response.WithWSErrorHandler(func(ctx context.Context, err error) {
			e.logger.DebugContext(ctx, "push channel ended", logger.Error(err))
		}),
	}
	if e.originCheck != nil {
		opts = append(opts, response.WithWSOriginCheck(e.originCheck))
	}
	return response.WebSocket(e.serve, opts...)
}

// Handler adapts the endpoint to a router handler.
func Handler[C handler.Context](e *Endpoint) handler.HandlerFunc[C] {
	return func(C) handler.Response {
		return e.Response()
	}
}

func (e *Endpoint) serve(ctx context.Context, conn *websocket.Conn) error {
	id := e.newID()
	log := e.logger.With(logger.ConnectionID(id))

	frame, err := message.Handshake(id).Encode()
	if err != nil {
		return errors.Join(ErrHandshake, err)
	}

	// The handshake is queued ahead of any broadcast, and the subscriber is
	// registered before it can read the handshake.
	ch := NewChannel(id, e.cfg.SendBuffer)
	if err := ch.Send(ctx, frame); err != nil {
		return errors.Join(ErrHandshake, err)
	}
	e.registry.Register(ch)
	log.InfoContext(ctx, "subscriber connected")

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		e.writePump(conn, ch, log)
	}()

	err = e.readPump(conn)

	e.registry.Unregister(ch)
	ch.Close()
	<-pumpDone

	if err != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.WarnContext(ctx, "subscriber connection lost", logger.Error(err))
		return nil
	}
	log.InfoContext(ctx, "subscriber disconnected")
	return nil
}

// readPump discards inbound frames and keeps the read deadline fresh on pong.
func (e *Endpoint) readPump(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(e.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(e.cfg.PongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

// writePump is the only writer on conn.
func (e *Endpoint) writePump(conn *websocket.Conn, ch *Channel, log *slog.Logger) {
	ticker := time.NewTicker(e.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		ch.Close()
		// Unblocks the read pump.
		_ = conn.Close()
	}()

	for {
		select {
		case frame := <-ch.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(e.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug("write to subscriber failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(e.cfg.WriteWait)); err != nil {
				log.Debug("ping to subscriber failed", logger.Error(err))
				return
			}
		case <-ch.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(e.cfg.WriteWait),
			)
			return
		}
	}
}
