package ports

import "context"

// InstanceStore is a writable InstanceLoader.
// It backs `gaea import` and lets hosts edit a tree between mounts.
type InstanceStore interface {
	InstanceLoader

	// PutInstance stores the raw JSON record of an instance under key, replacing any previous one.
	PutInstance(ctx context.Context, key string, data []byte) error

	// DeleteInstance removes an instance record.
	// Returns an error wrapping domain.ErrInstanceNotFound if key does not exist.
	DeleteInstance(ctx context.Context, key string) error
}
