package hub

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

// Backplane relays accepted messages between relay instances.
type Backplane interface {
	// Publish sends msg to every instance, including this one.
	Publish(ctx context.Context, msg message.Message) error
	// Subscribe calls deliver for each published message until ctx is done.
	Subscribe(ctx context.Context, deliver func(context.Context, message.Message)) error
}

// BackplaneBroadcaster publishes accepted messages to a backplane instead of the
// local registry. Local delivery happens when the message comes back through RunBackplane.
type BackplaneBroadcaster struct {
	backplane Backplane
}

// NewBackplaneBroadcaster wraps bp as a Broadcaster.
func NewBackplaneBroadcaster(bp Backplane) *BackplaneBroadcaster {
	return &BackplaneBroadcaster{backplane: bp}
}

// Broadcast implements Broadcaster.
func (b *BackplaneBroadcaster) Broadcast(ctx context.Context, msg message.Message) error {
	return b.backplane.Publish(ctx, msg)
}

// RunBackplane delivers backplane messages to the local registry until ctx is done.
// Returns nil on cancellation.
func RunBackplane(ctx context.Context, bp Backplane, registry *Registry, log *slog.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	err := bp.Subscribe(ctx, func(ctx context.Context, msg message.Message) {
		n := registry.BroadcastAll(ctx, msg)
		log.DebugContext(ctx, "backplane message relayed", logger.Count("targets", n))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
