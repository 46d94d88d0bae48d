package client_test

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/relay/client"
)

func TestSchedule(t *testing.T) {
	t.Parallel()

	s := client.NewSchedule(client.DefaultReconnectDelays()...)

	assert.Equal(t, time.Duration(0), s.NextBackOff())
	assert.Equal(t, 2*time.Second, s.NextBackOff())
	assert.Equal(t, 10*time.Second, s.NextBackOff())
	assert.Equal(t, 30*time.Second, s.NextBackOff())
	assert.Equal(t, backoff.Stop, s.NextBackOff())
	assert.Equal(t, backoff.Stop, s.NextBackOff())

	s.Reset()
	assert.Equal(t, time.Duration(0), s.NextBackOff())

	assert.Equal(t, backoff.Stop, client.NewSchedule().NextBackOff())
}
