package ports

import "context"

// Navigator performs the external navigation requested by a jump action.
type Navigator interface {
	Open(ctx context.Context, url string) error
}
