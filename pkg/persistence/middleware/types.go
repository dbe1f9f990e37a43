package middleware

import (
	"context"
	"errors"

	"github.com/aretw0/gaea/pkg/ports"
)

// ErrNotWatchable is returned by Watch when the wrapped store cannot report changes.
var ErrNotWatchable = errors.New("wrapped store does not support watching")

// Store is a backend that can be both read and written.
type Store interface {
	ports.InstanceLoader
	ports.InstanceStore
}

// Middleware allows wrapping a Store to add behavior.
type Middleware func(Store) Store

// Chain applies mws so the first one is the outermost.
func Chain(next Store, mws ...Middleware) Store {
	for i := len(mws) - 1; i >= 0; i-- {
		next = mws[i](next)
	}
	return next
}

// passthrough forwards every call to next. Middlewares embed it and override what they change.
type passthrough struct {
	next Store
}

func (p passthrough) GetInstance(key string) ([]byte, error) {
	return p.next.GetInstance(key)
}

func (p passthrough) ListInstances() ([]string, error) {
	return p.next.ListInstances()
}

func (p passthrough) PutInstance(ctx context.Context, key string, data []byte) error {
	return p.next.PutInstance(ctx, key, data)
}

func (p passthrough) DeleteInstance(ctx context.Context, key string) error {
	return p.next.DeleteInstance(ctx, key)
}

// Watch forwards to the wrapped store when it supports watching.
func (p passthrough) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := p.next.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ErrNotWatchable
}
