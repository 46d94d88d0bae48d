package hub

import "errors"

var (
	// ErrChannelClosed is returned when sending to a channel that has been closed.
	ErrChannelClosed = errors.New("hub: channel closed")

	// ErrSlowConsumer is returned when a channel's outbound queue is full.
	// The frame is dropped for that channel only.
	ErrSlowConsumer = errors.New("hub: outbound queue full")

	// ErrHandshake is returned when the handshake frame cannot be written.
	ErrHandshake = errors.New("hub: handshake failed")
)
