package bus

import (
	"context"
	"testing"

	"github.com/aretw0/gaea/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New()
	ctx := context.Background()

	var got []string
	subA := b.Subscribe("refresh", func(ctx context.Context, payload any) {
		got = append(got, "a:"+payload.(string))
	})
	b.Subscribe("refresh", func(ctx context.Context, payload any) {
		got = append(got, "b:"+payload.(string))
	})
	b.Subscribe("other", func(ctx context.Context, payload any) {
		got = append(got, "other")
	})

	b.Publish(ctx, "refresh", "1")
	assert.Equal(t, []string{"a:1", "b:1"}, got)
	assert.Equal(t, 2, b.Count("refresh"))
	assert.Equal(t, 3, b.Count(""))

	b.Unsubscribe(subA)
	got = nil
	b.Publish(ctx, "refresh", "2")
	assert.Equal(t, []string{"b:2"}, got)

	// Removing twice is harmless
	b.Unsubscribe(subA)
	assert.Equal(t, 1, b.Count("refresh"))
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	b := New()
	ctx := context.Background()

	var second ports.Subscription
	calls := 0
	b.Subscribe("ch", func(ctx context.Context, payload any) {
		calls++
		b.Unsubscribe(second)
	})
	second = b.Subscribe("ch", func(ctx context.Context, payload any) {
		t.Fatal("handler removed during publish must not run")
	})

	b.Publish(ctx, "ch", nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, b.Count("ch"))
}

func TestBus_Close(t *testing.T) {
	b := New()
	b.Subscribe("ch", func(ctx context.Context, payload any) {
		t.Fatal("closed bus must not deliver")
	})

	b.Close()
	assert.Equal(t, 0, b.Count(""))

	b.Subscribe("ch", func(ctx context.Context, payload any) {
		t.Fatal("closed bus must not register")
	})
	b.Publish(context.Background(), "ch", nil)
	assert.Equal(t, 0, b.Count("ch"))
}
