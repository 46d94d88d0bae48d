package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/client"
	"github.com/dmitrymomot/relay/message"
)

type fakeDialer struct {
	mu       sync.Mutex
	err      error
	dials    int
	urls     []string
	conns    []*fakeConnection
	handlers []client.PushHandlers
}

func (d *fakeDialer) Dial(ctx context.Context, url string, h client.PushHandlers) (client.PushConnection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	d.urls = append(d.urls, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}

	c := &fakeConnection{id: "conn-1"}
	d.conns = append(d.conns, c)
	d.handlers = append(d.handlers, h)
	return c, nil
}

func (d *fakeDialer) last() (*fakeConnection, client.PushHandlers) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1], d.handlers[len(d.handlers)-1]
}

type fakeConnection struct {
	mu     sync.Mutex
	id     string
	closes int
}

func (c *fakeConnection) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func newManager(d client.Dialer) *client.Service {
	cfg := client.DefaultConfig()
	cfg.BaseURL = "https://relay.test/"
	return client.New(cfg, client.WithDialer(d), client.WithRequester(&scriptedRequester{script: []result{{status: 202}}}))
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	t.Run("connects", func(t *testing.T) {
		t.Parallel()

		d := &fakeDialer{}
		svc := newManager(d)
		states := collect(&svc.StateChanged)

		assert.Equal(t, client.Disconnected, svc.State())
		require.NoError(t, svc.Initialize(context.Background()))

		assert.Equal(t, client.Connected, svc.State())
		assert.Equal(t, "conn-1", svc.ConnectionID())
		assert.Equal(t, []client.State{client.Connecting, client.Connected}, states())
		assert.Equal(t, []string{"wss://relay.test/hubs/messages"}, d.urls)
	})

	t.Run("noop_when_connected", func(t *testing.T) {
		t.Parallel()

		d := &fakeDialer{}
		svc := newManager(d)

		require.NoError(t, svc.Initialize(context.Background()))
		require.NoError(t, svc.Initialize(context.Background()))
		assert.Equal(t, 1, d.dials)
	})

	t.Run("handshake_failure", func(t *testing.T) {
		t.Parallel()

		d := &fakeDialer{err: errors.New("bad handshake")}
		svc := newManager(d)
		errs := collect(&svc.ErrorOccurred)

		err := svc.Initialize(context.Background())
		assert.ErrorIs(t, err, message.ErrTransport)
		assert.Equal(t, client.Disconnected, svc.State())
		assert.Equal(t, []string{client.MsgConnectFailed}, errs())
		assert.Equal(t, 1, d.dials, "initial handshake is not retried")

		d.mu.Lock()
		d.err = nil
		d.mu.Unlock()
		require.NoError(t, svc.Initialize(context.Background()))
		assert.Equal(t, client.Connected, svc.State())
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		svc := newManager(&fakeDialer{})
		errs := collect(&svc.ErrorOccurred)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := svc.Initialize(ctx)
		assert.ErrorIs(t, err, message.ErrCanceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, client.Disconnected, svc.State())
		assert.Empty(t, errs(), "cancellation is not reported as a connection failure")
	})

	t.Run("unsupported_url", func(t *testing.T) {
		t.Parallel()

		cfg := client.DefaultConfig()
		cfg.BaseURL = "ftp://relay.test"
		svc := client.New(cfg, client.WithDialer(&fakeDialer{}))

		assert.ErrorIs(t, svc.Initialize(context.Background()), message.ErrValidation)
	})
}

func TestConnectionLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("messages_are_raised_in_order", func(t *testing.T) {
		t.Parallel()

		d := &fakeDialer{}
		svc := newManager(d)
		got := collect(&svc.MessageReceived)
		require.NoError(t, svc.Initialize(context.Background()))

		_, h := d.last()
		h.OnMessage("[2024-01-01T00:00:00.0000000+00:00] one")
		h.OnMessage("[2024-01-01T00:00:00.0000000+00:00] two")

		assert.Equal(t, []string{
			"[2024-01-01T00:00:00.0000000+00:00] one",
			"[2024-01-01T00:00:00.0000000+00:00] two",
		}, got())
	})

	t.Run("drop_then_reconnect", func(t *testing.T) {
		t.Parallel()

		d := &fakeDialer{}
		svc := newManager(d)
		reconnecting := collect(&svc.Reconnecting)
		reconnected := collect(&svc.Reconnected)
		states := collect(&svc.StateChanged)
		require.NoError(t, svc.Initialize(context.Background()))

		conn, h := d.last()
		drop := errors.New("unexpected EOF")
		h.OnReconnecting(drop)
		assert.Equal(t, client.Reconnecting, svc.State())

		conn.mu.Lock()
		conn.id = "conn-2"
		conn.mu.Unlock()
		h.OnReconnected("conn-2")

		assert.Equal(t, client.Connected, svc.State())
		assert.Equal(t, "conn-2", svc.ConnectionID())
		assert.Equal(t, []error{drop}, reconnecting())
		assert.Equal(t, []string{"conn-2"}, reconnected())
		assert.Equal(t, []client.State{
			client.Connecting, client.Connected, client.Reconnecting, client.Connected,
		}, states())
	})

	t.Run("drop_then_give_up", func(t *testing.T) {
		t.Parallel()

		d := &fakeDialer{}
		svc := newManager(d)
		errs := collect(&svc.ErrorOccurred)
		require.NoError(t, svc.Initialize(context.Background()))

		_, h := d.last()
		h.OnReconnecting(errors.New("reset"))
		h.OnClosed(errors.Join(message.ErrConnectionLost, errors.New("schedule exhausted")))

		assert.Equal(t, client.Disconnected, svc.State())
		assert.Empty(t, svc.ConnectionID())
		assert.Equal(t, []string{client.MsgConnectionLost}, errs())

		require.NoError(t, svc.Initialize(context.Background()))
		assert.Equal(t, 2, d.dials)
		assert.Equal(t, client.Connected, svc.State())
	})

	t.Run("close_releases_connection", func(t *testing.T) {
		t.Parallel()

		d := &fakeDialer{}
		svc := newManager(d)
		errs := collect(&svc.ErrorOccurred)
		got := collect(&svc.MessageReceived)
		require.NoError(t, svc.Initialize(context.Background()))

		conn, h := d.last()
		require.NoError(t, svc.Close())
		require.NoError(t, svc.Close())

		assert.Equal(t, client.Disconnected, svc.State())
		assert.Equal(t, 1, conn.closes)

		// Callbacks of the released connection are ignored.
		h.OnMessage("late")
		h.OnReconnecting(errors.New("late"))
		h.OnClosed(errors.New("late"))
		h.OnClosed(nil)

		assert.Empty(t, got())
		assert.Empty(t, errs())
		assert.Equal(t, client.Disconnected, svc.State())
	})

	t.Run("close_without_connection", func(t *testing.T) {
		t.Parallel()

		svc := newManager(&fakeDialer{})
		assert.NoError(t, svc.Close())
		assert.Equal(t, client.Disconnected, svc.State())
	})
}
