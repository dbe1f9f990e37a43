package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	backend "github.com/redis/go-redis/v9"
)

// DefaultBusPrefix namespaces the Redis channels relayed into a render root.
const DefaultBusPrefix = "gaea:bus:"

// Publisher is the side of a render root the bridge feeds. *runtime.Root satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, channel string, payload any) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, channel string, payload any) error {
	return f(ctx, channel, payload)
}

// Bridge relays Redis pub/sub messages into a render root's event bus, so
// external systems can fire "subscribe" triggers in a running preview.
type Bridge struct {
	client *backend.Client
	target Publisher
	prefix string
	logger *slog.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithBusPrefix sets the Redis channel prefix stripped before relaying.
func WithBusPrefix(prefix string) BridgeOption {
	return func(b *Bridge) {
		b.prefix = prefix
	}
}

// WithBridgeLogger sets the structured logger.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBridge creates a bridge delivering into target.
func NewBridge(client *backend.Client, target Publisher, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		client: client,
		target: target,
		prefix: DefaultBusPrefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run relays messages until ctx is done. With no channels it relays every channel under the prefix.
// JSON payloads are decoded; anything else is delivered as a string.
func (b *Bridge) Run(ctx context.Context, channels ...string) error {
	var sub *backend.PubSub
	if len(channels) == 0 {
		sub = b.client.PSubscribe(ctx, b.prefix+"*")
	} else {
		full := make([]string, len(channels))
		for i, ch := range channels {
			full[i] = b.prefix + ch
		}
		sub = b.client.Subscribe(ctx, full...)
	}
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to redis bus: %w", err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			channel := strings.TrimPrefix(msg.Channel, b.prefix)
			if err := b.target.Publish(ctx, channel, decodePayload(msg.Payload)); err != nil {
				b.logger.Warn("Failed to relay message", "channel", channel, "error", err)
				continue
			}
			b.logger.Debug("Relayed message", "channel", channel)
		}
	}
}

// Send publishes payload on channel for every bridge listening under the same prefix.
func (b *Bridge) Send(ctx context.Context, channel string, payload any) error {
	var data string
	switch v := payload.(type) {
	case string:
		data = v
	case nil:
		data = ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		data = string(raw)
	}
	if err := b.client.Publish(ctx, b.prefix+channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

func decodePayload(s string) any {
	if s == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
