package nats

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

// Publisher is the publishing side of a NATS connection.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscriber is the subscribing side of a NATS connection.
type Subscriber interface {
	ChanSubscribe(subject string, ch chan *nats.Msg) (*nats.Subscription, error)
}

// Conn is the part of *nats.Conn used by the backplane.
type Conn interface {
	Publisher
	Subscriber
}

// Backplane relays messages between relay instances on one subject.
type Backplane struct {
	conn    Conn
	subject string
	buffer  int
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

// WithBuffer sets the inbound message buffer of the subscription.
func WithBuffer(n int) BackplaneOption {
	return func(b *Backplane) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// NewBackplane creates a backplane on subject.
func NewBackplane(conn Conn, subject string, opts ...BackplaneOption) *Backplane {
	b := &Backplane{
		conn:    conn,
		subject: subject,
		buffer:  256,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends msg to every subscribed instance.
func (b *Backplane) Publish(ctx context.Context, msg message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	if err := b.conn.Publish(b.subject, data); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Subscribe delivers published messages until ctx is done.
func (b *Backplane) Subscribe(ctx context.Context, deliver func(context.Context, message.Message)) error {
	ch := make(chan *nats.Msg, b.buffer)
	sub, err := b.conn.ChanSubscribe(b.subject, ch)
	if err != nil {
		return errors.Join(ErrSubscribeFailed, err)
	}
	if sub != nil {
		defer func() { _ = sub.Unsubscribe() }()
	}
	b.logger.InfoContext(ctx, "subscribed to nats backplane", logger.Key("subject", b.subject))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-ch:
			var msg message.Message
			if err := msg.UnmarshalBinary(m.Data); err != nil {
				b.logger.WarnContext(ctx, "dropping malformed backplane message", logger.Error(err))
				continue
			}
			deliver(ctx, msg)
		}
	}
}
