package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/gaea/pkg/domain"
)

// Loader implements ports.InstanceStore using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu        sync.RWMutex
	instances map[string][]byte
	watchers  []chan string
}

// NewLoader creates a new Loader with the provided raw data (JSON strings).
func NewLoader(data map[string]string) *Loader {
	instances := make(map[string][]byte, len(data))
	for k, v := range data {
		instances[k] = []byte(v)
	}
	return &Loader{instances: instances}
}

// NewFromInstances creates a new Loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromInstances(instances ...domain.Instance) (*Loader, error) {
	data := make(map[string][]byte, len(instances))
	for _, inst := range instances {
		if inst.Key == "" {
			return nil, fmt.Errorf("instance missing key")
		}
		raw, err := json.Marshal(inst)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal instance %s: %w", inst.Key, err)
		}
		data[inst.Key] = raw
	}
	return &Loader{instances: data}, nil
}

// GetInstance retrieves the raw definition of an instance by key.
func (l *Loader) GetInstance(key string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.instances[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
	}
	return slices.Clone(content), nil
}

// ListInstances returns all available instance keys.
func (l *Loader) ListInstances() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.instances)), nil
}

// PutInstance stores data under key and notifies watchers.
func (l *Loader) PutInstance(ctx context.Context, key string, data []byte) error {
	l.mu.Lock()
	l.instances[key] = slices.Clone(data)
	l.mu.Unlock()
	l.notify(key)
	return nil
}

// DeleteInstance removes key and notifies watchers.
func (l *Loader) DeleteInstance(ctx context.Context, key string) error {
	l.mu.Lock()
	_, ok := l.instances[key]
	delete(l.instances, key)
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, key)
	}
	l.notify(key)
	return nil
}

// Watch streams the key of every instance written or deleted until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)
	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.watchers = slices.DeleteFunc(l.watchers, func(c chan string) bool { return c == ch })
		close(ch)
	}()
	return ch, nil
}

func (l *Loader) notify(key string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ch := range l.watchers {
		select {
		case ch <- key:
		default:
		}
	}
}
