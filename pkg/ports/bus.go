package ports

import "context"

// Handler receives a payload published on a channel.
type Handler func(ctx context.Context, payload any)

// Subscription identifies one registration on the bus.
// Go functions are not comparable, so registrations are removed by token.
type Subscription struct {
	ID      uint64
	Channel string
}

// EventBus is the publish/subscribe service shared by every instance of one render root.
type EventBus interface {
	Subscribe(channel string, h Handler) Subscription
	Unsubscribe(sub Subscription)
	Publish(ctx context.Context, channel string, payload any)
}
