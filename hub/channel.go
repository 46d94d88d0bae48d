package hub

import (
	"context"
	"sync"
)

// Subscriber is a registered push target. Send must not block on network I/O.
type Subscriber interface {
	ID() string
	Send(ctx context.Context, frame []byte) error
}

// Channel is one live push connection with a bounded outbound queue.
// Frames are drained by the endpoint's write pump.
type Channel struct {
	id     string
	queue  chan []byte
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewChannel creates a channel whose outbound queue holds up to buffer frames.
func NewChannel(id string, buffer int) *Channel {
	if buffer <= 0 {
		buffer = DefaultConfig().SendBuffer
	}
	return &Channel{
		id:    id,
		queue: make(chan []byte, buffer),
		done:  make(chan struct{}),
	}
}

// ID returns the connection identifier sent in the handshake.
func (c *Channel) ID() string {
	return c.id
}

// Send enqueues frame without waiting for delivery.
func (c *Channel) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrChannelClosed
	}

	select {
	case c.queue <- frame:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Outbound returns the queue drained by the write pump.
func (c *Channel) Outbound() <-chan []byte {
	return c.queue
}

// Done is closed once the channel is closed.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close stops accepting frames. Frames already queued stay readable. Safe to call repeatedly.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
