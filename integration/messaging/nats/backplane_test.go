package nats_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/hub"
	"github.com/dmitrymomot/relay/integration/messaging/nats"
	"github.com/dmitrymomot/relay/message"
)

var _ nats.Conn = (*natsgo.Conn)(nil)

// loopbackConn routes published data to channel subscribers in-process.
type loopbackConn struct {
	mu   sync.Mutex
	subs map[string][]chan *natsgo.Msg
	err  error
}

func newLoopbackConn() *loopbackConn {
	return &loopbackConn{subs: make(map[string][]chan *natsgo.Msg)}
}

func (c *loopbackConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	for _, ch := range c.subs[subject] {
		ch <- &natsgo.Msg{Subject: subject, Data: data}
	}
	return nil
}

func (c *loopbackConn) ChanSubscribe(subject string, ch chan *natsgo.Msg) (*natsgo.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.subs[subject] = append(c.subs[subject], ch)
	return nil, nil
}

func (c *loopbackConn) subscribed(subject string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs[subject]) > 0
}

func TestBackplane(t *testing.T) {
	t.Parallel()

	t.Run("round_trip", func(t *testing.T) {
		t.Parallel()

		conn := newLoopbackConn()
		bp := nats.NewBackplane(conn, "relay.messages")

		received := make(chan message.Message, 2)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- bp.Subscribe(ctx, func(_ context.Context, m message.Message) { received <- m })
		}()
		require.Eventually(t, func() bool { return conn.subscribed("relay.messages") }, time.Second, 5*time.Millisecond)

		m, err := message.New("hello", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		require.NoError(t, conn.Publish("relay.messages", []byte("garbage")))
		require.NoError(t, bp.Publish(context.Background(), m))

		select {
		case got := <-received:
			assert.Equal(t, "[2024-01-01T00:00:00.0000000+00:00] hello", got.String())
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("with_registry", func(t *testing.T) {
		t.Parallel()

		conn := newLoopbackConn()
		bp := nats.NewBackplane(conn, "relay.messages")

		registry := hub.NewRegistry()
		ch := hub.NewChannel("c1", 4)
		registry.Register(ch)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = hub.RunBackplane(ctx, bp, registry, nil) }()
		require.Eventually(t, func() bool { return conn.subscribed("relay.messages") }, time.Second, 5*time.Millisecond)

		m, err := message.New("across", time.Now())
		require.NoError(t, err)
		require.NoError(t, hub.NewBackplaneBroadcaster(bp).Broadcast(context.Background(), m))

		select {
		case frame := <-ch.Outbound():
			env, err := message.Decode(frame)
			require.NoError(t, err)
			payload, ok := env.Payload()
			require.True(t, ok)
			assert.Equal(t, m.String(), payload)
		case <-time.After(time.Second):
			t.Fatal("frame not queued")
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		conn := newLoopbackConn()
		conn.err = errors.New("connection closed")
		bp := nats.NewBackplane(conn, "relay.messages")

		m, err := message.New("x", time.Now())
		require.NoError(t, err)

		assert.ErrorIs(t, bp.Publish(context.Background(), m), nats.ErrPublishFailed)
		assert.ErrorIs(t, bp.Subscribe(context.Background(), func(context.Context, message.Message) {}), nats.ErrSubscribeFailed)
	})
}

func TestConnect(t *testing.T) {
	t.Parallel()

	_, err := nats.Connect(context.Background(), nats.Config{}, nil)
	assert.ErrorIs(t, err, nats.ErrEmptyURL)

	_, err = nats.Connect(context.Background(), nats.Config{
		URL:            "nats://127.0.0.1:1",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 200 * time.Millisecond,
	}, nil)
	assert.ErrorIs(t, err, nats.ErrNotReady)
}
