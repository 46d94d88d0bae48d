package hub

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

// Broadcaster is the fan-out target of accepted messages.
// Broadcast returns once the message has been handed off, not delivered.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg message.Message) error
}

// Registry tracks the currently connected subscribers.
// Safe for concurrent use; no lock is held while handing frames to subscribers.
type Registry struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	index       map[string]Subscriber
	logger      *slog.Logger
	metrics     *Metrics
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

func WithLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.logger = log
		}
	}
}

func WithMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		index:  make(map[string]Subscriber),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds s. Registering an id twice is a no-op; reports whether s was added.
func (r *Registry) Register(s Subscriber) bool {
	r.mu.Lock()
	if _, ok := r.index[s.ID()]; ok {
		r.mu.Unlock()
		return false
	}
	r.index[s.ID()] = s
	r.subscribers = append(r.subscribers, s)
	n := len(r.subscribers)
	r.mu.Unlock()

	r.metrics.setConnections(n)
	r.logger.Debug("subscriber registered", logger.ConnectionID(s.ID()), logger.Count("connections", n))
	return true
}

// Unregister removes the subscriber with s's id. No-op when absent.
func (r *Registry) Unregister(s Subscriber) {
	r.mu.Lock()
	if _, ok := r.index[s.ID()]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.index, s.ID())
	for i, cur := range r.subscribers {
		if cur.ID() == s.ID() {
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			break
		}
	}
	n := len(r.subscribers)
	r.mu.Unlock()

	r.metrics.setConnections(n)
	r.logger.Debug("subscriber unregistered", logger.ConnectionID(s.ID()), logger.Count("connections", n))
}

// Count returns the number of registered subscribers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}

// snapshot copies the subscriber set in registration order.
func (r *Registry) snapshot() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Subscriber(nil), r.subscribers...)
}

// BroadcastAll hands msg to every subscriber registered when the call begins and
// returns how many were targeted. Per-subscriber failures are logged and counted,
// never returned, and never stop delivery to the others.
func (r *Registry) BroadcastAll(ctx context.Context, msg message.Message) int {
	frame, err := message.ReceiveMessage(msg).Encode()
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to encode broadcast frame", logger.Error(err))
		return 0
	}

	targets := r.snapshot()
	r.metrics.broadcast()

	for _, s := range targets {
		if err := s.Send(ctx, frame); err != nil {
			r.metrics.delivery(deliveryResult(err))
			r.logger.WarnContext(ctx, "failed to hand message to subscriber",
				logger.ConnectionID(s.ID()),
				logger.Error(err),
			)
			continue
		}
		r.metrics.delivery(resultQueued)
	}

	r.logger.DebugContext(ctx, "broadcast dispatched", logger.Count("targets", len(targets)))
	return len(targets)
}

// Broadcast implements Broadcaster over the local subscriber set.
func (r *Registry) Broadcast(ctx context.Context, msg message.Message) error {
	r.BroadcastAll(ctx, msg)
	return nil
}

// closer is implemented by subscribers owning a connection.
type closer interface {
	Close()
}

// CloseAll closes every registered subscriber that supports it.
// Their endpoints unregister them as the connections wind down.
func (r *Registry) CloseAll() {
	for _, s := range r.snapshot() {
		if c, ok := s.(closer); ok {
			c.Close()
		}
	}
}

func deliveryResult(err error) string {
	switch {
	case errors.Is(err, ErrSlowConsumer):
		return resultSlow
	case errors.Is(err, ErrChannelClosed):
		return resultClosed
	default:
		return resultFailed
	}
}
