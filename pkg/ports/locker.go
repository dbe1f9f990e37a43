package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock acquired through a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker coordinates writers sharing one instance store, such as two `gaea import`
// runs pointed at the same Redis.
type Locker interface {
	// Lock blocks until key is held, ctx is canceled or the backend fails.
	// The lock expires on its own after ttl. The returned UnlockFunc MUST be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
