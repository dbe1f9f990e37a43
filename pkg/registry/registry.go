package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/gaea/pkg/domain"
)

// Registry manages the available components.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]domain.ComponentEntry
}

// Option configures a registration.
type Option func(*domain.ComponentEntry)

// AsContainer marks the component as able to receive child instances.
func AsContainer() Option {
	return func(e *domain.ComponentEntry) {
		e.Capabilities.IsContainer = true
	}
}

// WithDefaults sets the component's default props.
func WithDefaults(defaults domain.Props) Option {
	return func(e *domain.ComponentEntry) {
		e.Defaults = defaults
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]domain.ComponentEntry),
	}
}

// Register adds a component to the registry.
// If a component with the same key exists, it is overwritten.
func (r *Registry) Register(key string, c domain.Component, opts ...Option) {
	entry := domain.ComponentEntry{Key: key, Component: c}
	for _, opt := range opts {
		opt(&entry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = entry
}

// Lookup returns the entry for key.
// Returns an error wrapping domain.ErrComponentNotRegistered if the key is unknown.
func (r *Registry) Lookup(key string) (domain.ComponentEntry, error) {
	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		return domain.ComponentEntry{}, fmt.Errorf("%w: %s", domain.ErrComponentNotRegistered, key)
	}
	return entry, nil
}

// Keys returns the registered component keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
