package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/message"
)

type failingSubscriber struct {
	id  string
	err error
}

func (s failingSubscriber) ID() string                         { return s.id }
func (s failingSubscriber) Send(context.Context, []byte) error { return s.err }

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	r := NewRegistry(WithMetrics(m))
	ok := NewChannel("ok", 4)
	r.Register(ok)
	r.Register(failingSubscriber{id: "slow", err: ErrSlowConsumer})
	r.Register(failingSubscriber{id: "broken", err: errors.New("reset")})

	assert.Equal(t, float64(3), testutil.ToFloat64(m.connections))

	msg, err := message.New("hello", time.Now())
	require.NoError(t, err)
	r.BroadcastAll(context.Background(), msg)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.broadcasts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.deliveries.WithLabelValues(resultQueued)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.deliveries.WithLabelValues(resultSlow)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.deliveries.WithLabelValues(resultFailed)))

	r.Unregister(ok)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.connections))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.NotPanics(t, func() {
		m.setConnections(1)
		m.broadcast()
		m.delivery(resultQueued)
	})
}
