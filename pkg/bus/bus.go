package bus

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/aretw0/gaea/internal/logging"
	"github.com/aretw0/gaea/pkg/ports"
)

// Bus is an in-process implementation of ports.EventBus.
// One Bus is created per render root and closed when the root unmounts.
// Handlers run synchronously on the publisher's goroutine.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[uint64]ports.Handler // Channel -> Subscription ID -> Handler
	nextID      atomic.Uint64
	closed      bool
	logger      *slog.Logger
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger configures a logger for delivery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[string]map[uint64]ports.Handler),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h on channel and returns the token needed to remove it.
// Subscribing on a closed bus returns a token that is never delivered to.
func (b *Bus) Subscribe(channel string, h ports.Handler) ports.Subscription {
	sub := ports.Subscription{ID: b.nextID.Add(1), Channel: channel}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return sub
	}
	if _, ok := b.subscribers[channel]; !ok {
		b.subscribers[channel] = make(map[uint64]ports.Handler)
	}
	b.subscribers[channel][sub.ID] = h
	return sub
}

// Unsubscribe removes a registration. Removing an unknown token is a no-op.
func (b *Bus) Unsubscribe(sub ports.Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subscribers[sub.Channel]; ok {
		delete(subs, sub.ID)
		if len(subs) == 0 {
			delete(b.subscribers, sub.Channel)
		}
	}
}

// Publish delivers payload to every handler registered on channel, in subscription order.
// A handler removed while the publish is in progress is not called.
func (b *Bus) Publish(ctx context.Context, channel string, payload any) {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subscribers[channel]))
	for id := range b.subscribers[channel] {
		ids = append(ids, id)
	}
	b.mu.RUnlock()

	slices.Sort(ids)
	b.logger.Debug("bus: publishing", "channel", channel, "subscribers", len(ids))

	for _, id := range ids {
		b.mu.RLock()
		h, ok := b.subscribers[channel][id]
		b.mu.RUnlock()
		if !ok {
			continue
		}
		h(ctx, payload)
	}
}

// Count returns the number of live registrations on channel.
// An empty channel counts every channel.
func (b *Bus) Count(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if channel != "" {
		return len(b.subscribers[channel])
	}
	total := 0
	for _, subs := range b.subscribers {
		total += len(subs)
	}
	return total
}

// Close drops every registration. Later subscriptions are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subscribers = make(map[string]map[uint64]ports.Handler)
}
