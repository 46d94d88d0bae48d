package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

// Backplane relays messages between relay instances over one pub/sub channel.
type Backplane struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

// BackplaneOption configures a Backplane.
type BackplaneOption func(*Backplane)

func WithLogger(log *slog.Logger) BackplaneOption {
	return func(b *Backplane) {
		if log != nil {
			b.logger = log
		}
	}
}

// NewBackplane creates a backplane on channel.
func NewBackplane(client redis.UniversalClient, channel string, opts ...BackplaneOption) *Backplane {
	b := &Backplane{
		client:  client,
		channel: channel,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends msg to every subscribed instance.
func (b *Backplane) Publish(ctx context.Context, msg message.Message) error {
	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Subscribe delivers published messages until ctx is done. It returns once the
// subscription fails to start or ctx ends.
func (b *Backplane) Subscribe(ctx context.Context, deliver func(context.Context, message.Message)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Receive waits for the subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Join(ErrSubscribeFailed, err)
	}
	b.logger.InfoContext(ctx, "subscribed to redis backplane", logger.Key("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return ErrSubscribeFailed
			}
			var msg message.Message
			if err := msg.UnmarshalBinary([]byte(m.Payload)); err != nil {
				b.logger.WarnContext(ctx, "dropping malformed backplane message", logger.Error(err))
				continue
			}
			deliver(ctx, msg)
		}
	}
}
