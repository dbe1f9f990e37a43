package ports

import "github.com/aretw0/gaea/pkg/domain"

// ComponentRegistry maps logical component keys to implementations.
type ComponentRegistry interface {
	// Lookup returns the entry for key or an error wrapping domain.ErrComponentNotRegistered.
	Lookup(key string) (domain.ComponentEntry, error)
}
