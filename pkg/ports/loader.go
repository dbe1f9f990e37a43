package ports

import "context"

// InstanceLoader defines how the engine retrieves instance records.
// This allows the storage layer (file, Loam, Redis, bbolt, memory) to be decoupled.
type InstanceLoader interface {
	// GetInstance retrieves the raw definition of an instance by key.
	// It returns the raw JSON bytes (which the compiler will parse) or an error
	// wrapping domain.ErrInstanceNotFound.
	GetInstance(key string) ([]byte, error)

	// ListInstances returns all instance keys available in the store.
	// This is used by validation and visualization tools (e.g. 'gaea graph').
	ListInstances() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that receives the key of each changed instance.
	Watch(ctx context.Context) (<-chan string, error)
}
