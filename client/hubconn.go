package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

// errScheduleExhausted is joined into the close error when no reconnect attempt is allowed.
var errScheduleExhausted = errors.New("reconnect schedule exhausted")

// HubDialer dials the relay push endpoint with gorilla/websocket and reconnects
// dropped connections following its reconnect policy.
type HubDialer struct {
	ws          *websocket.Dialer
	policy      func() backoff.BackOff
	logger      *slog.Logger
	readTimeout time.Duration
}

// HubDialerOption configures a HubDialer.
type HubDialerOption func(*HubDialer)

// WithWebsocketDialer replaces the underlying websocket dialer.
func WithWebsocketDialer(ws *websocket.Dialer) HubDialerOption {
	return func(d *HubDialer) {
		if ws != nil {
			d.ws = ws
		}
	}
}

// WithReconnectPolicy sets the backoff used for each reconnect sequence.
// The first value is the wait before the first attempt; backoff.Stop gives up.
func WithReconnectPolicy(policy func() backoff.BackOff) HubDialerOption {
	return func(d *HubDialer) {
		if policy != nil {
			d.policy = policy
		}
	}
}

// WithReconnectDelays reconnects after each of delays in turn, then gives up.
func WithReconnectDelays(delays ...time.Duration) HubDialerOption {
	return WithReconnectPolicy(func() backoff.BackOff {
		return NewSchedule(delays...)
	})
}

// WithReadTimeout sets how long the connection may stay silent before it is
// considered dropped. Server pings extend it.
func WithReadTimeout(d time.Duration) HubDialerOption {
	return func(h *HubDialer) {
		if d > 0 {
			h.readTimeout = d
		}
	}
}

func WithDialerLogger(log *slog.Logger) HubDialerOption {
	return func(d *HubDialer) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewHubDialer creates a dialer reconnecting on DefaultReconnectDelays.
func NewHubDialer(opts ...HubDialerOption) *HubDialer {
	d := &HubDialer{
		ws:          &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:      logger.Nop(),
		readTimeout: 45 * time.Second,
	}
	WithReconnectDelays(DefaultReconnectDelays()...)(d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial implements Dialer.
func (d *HubDialer) Dial(ctx context.Context, url string, h PushHandlers) (PushConnection, error) {
	conn, id, err := d.connect(ctx, url)
	if err != nil {
		return nil, err
	}

	lifetime, cancel := context.WithCancel(context.Background())
	c := &hubConnection{
		dialer:   d,
		url:      url,
		handlers: h,
		conn:     conn,
		id:       id,
		ctx:      lifetime,
		cancel:   cancel,
		log:      d.logger.With(logger.Component("hub-connection")),
	}
	go c.run()

	return c, nil
}

// connect dials url and waits for the handshake frame. The socket is closed on any failure.
func (d *HubDialer) connect(ctx context.Context, url string) (*websocket.Conn, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	conn, _, err := d.ws.DialContext(ctx, url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", err
	}

	// Unblocks the handshake read when ctx ends first.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	_ = conn.SetReadDeadline(time.Now().Add(d.readTimeout))
	_, data, err := conn.ReadMessage()
	if !stop() {
		_ = conn.Close()
		return nil, "", ctx.Err()
	}
	if err != nil {
		_ = conn.Close()
		return nil, "", errors.Join(ErrHandshake, err)
	}

	env, err := message.Decode(data)
	if err != nil || env.Type != message.TypeHandshake || env.ConnectionID == "" {
		_ = conn.Close()
		return nil, "", errors.Join(ErrHandshake, fmt.Errorf("unexpected first frame %q", data), err)
	}

	return conn, env.ConnectionID, nil
}

type hubConnection struct {
	dialer   *HubDialer
	url      string
	handlers PushHandlers
	log      *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	id     string
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

func (c *hubConnection) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Close ends the connection and stops reconnecting. Safe to call repeatedly.
func (c *hubConnection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return conn.Close()
}

func (c *hubConnection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *hubConnection) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *hubConnection) run() {
	for {
		err := c.readLoop(c.current())
		if c.isClosed() {
			c.handlers.closed(nil)
			return
		}

		c.log.Warn("push channel dropped", logger.ConnectionID(c.ConnectionID()), logger.Error(err))
		c.handlers.reconnecting(err)

		conn, id, err := c.reconnect()
		if err != nil {
			if c.isClosed() {
				c.handlers.closed(nil)
				return
			}
			c.log.Error("giving up on push channel", logger.Error(err))
			c.handlers.closed(errors.Join(message.ErrConnectionLost, err))
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			c.handlers.closed(nil)
			return
		}
		c.conn = conn
		c.id = id
		c.mu.Unlock()

		c.log.Info("push channel reconnected", logger.ConnectionID(id))
		c.handlers.reconnected(id)
	}
}

// readLoop delivers ReceiveMessage payloads until the socket fails.
func (c *hubConnection) readLoop(conn *websocket.Conn) error {
	timeout := c.dialer.readTimeout
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(timeout))

		env, err := message.Decode(data)
		if err != nil {
			c.log.Debug("skipping malformed frame", logger.Error(err))
			continue
		}
		if env.Target != message.TargetReceiveMessage {
			continue
		}
		if payload, ok := env.Payload(); ok {
			c.handlers.message(payload)
		}
	}
}

// reconnect runs one reconnect sequence of the dialer's policy.
func (c *hubConnection) reconnect() (*websocket.Conn, string, error) {
	policy := c.dialer.policy()

	wait := policy.NextBackOff()
	if wait == backoff.Stop {
		return nil, "", errScheduleExhausted
	}
	if err := sleep(c.ctx, wait); err != nil {
		return nil, "", err
	}

	var (
		conn    *websocket.Conn
		id      string
		attempt int
	)
	op := func() error {
		attempt++
		var err error
		conn, id, err = c.dialer.connect(c.ctx, c.url)
		return err
	}
	notify := func(err error, next time.Duration) {
		c.log.Warn("reconnect attempt failed",
			logger.Attempt(attempt),
			logger.Backoff(next),
			logger.Error(err),
		)
	}

	// RetryNotify resets its policy before the first attempt and waits only
	// between attempts. The first delay is already spent above.
	if err := backoff.RetryNotify(op, backoff.WithContext(resumed{policy}, c.ctx), notify); err != nil {
		return nil, "", errors.Join(errScheduleExhausted, err)
	}
	return conn, id, nil
}

// resumed continues a partly consumed policy; Reset keeps its position.
type resumed struct {
	backoff.BackOff
}

func (resumed) Reset() {}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (h PushHandlers) message(payload string) {
	if h.OnMessage != nil {
		h.OnMessage(payload)
	}
}

func (h PushHandlers) reconnecting(err error) {
	if h.OnReconnecting != nil {
		h.OnReconnecting(err)
	}
}

func (h PushHandlers) reconnected(id string) {
	if h.OnReconnected != nil {
		h.OnReconnected(id)
	}
}

func (h PushHandlers) closed(err error) {
	if h.OnClosed != nil {
		h.OnClosed(err)
	}
}
