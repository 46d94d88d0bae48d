package client

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Schedule is a backoff.BackOff that yields fixed delays in order, then backoff.Stop.
type Schedule struct {
	delays []time.Duration
	next   int
}

// NewSchedule returns a schedule over delays.
func NewSchedule(delays ...time.Duration) *Schedule {
	return &Schedule{delays: append([]time.Duration(nil), delays...)}
}

// NextBackOff implements backoff.BackOff.
func (s *Schedule) NextBackOff() time.Duration {
	if s.next >= len(s.delays) {
		return backoff.Stop
	}
	d := s.delays[s.next]
	s.next++
	return d
}

// Reset implements backoff.BackOff.
func (s *Schedule) Reset() {
	s.next = 0
}
