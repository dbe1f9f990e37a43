package domain

import (
	"errors"
	"fmt"
)

// ErrInstanceNotFound is returned when an instance key is absent from the store.
var ErrInstanceNotFound = errors.New("instance not found")

// ErrComponentNotRegistered is returned when an instance references an unknown component key.
var ErrComponentNotRegistered = errors.New("component not registered")

// ErrCycle is returned when an instance appears among its own ancestors.
var ErrCycle = errors.New("instance cycle detected")

// ErrDuplicateInstance is returned when one instance key is listed twice in a tree.
var ErrDuplicateInstance = errors.New("instance listed more than once")

// ErrUnmounted is returned when operating on a root or instance that is no longer mounted.
var ErrUnmounted = errors.New("instance not mounted")

// ErrCallbackNotFound is returned when invoking a callback field the instance does not expose.
var ErrCallbackNotFound = errors.New("callback not found")

// ErrUpdateLoop is returned when sibling updates keep re-dirtying the tree.
var ErrUpdateLoop = errors.New("update loop detected")

// ResolveError describes a failure to resolve an instance into a component.
type ResolveError struct {
	InstanceKey  string
	ComponentKey string
	Err          error
}

func (e *ResolveError) Error() string {
	if e.ComponentKey != "" {
		return fmt.Sprintf("resolve %s (%s): %v", e.InstanceKey, e.ComponentKey, e.Err)
	}
	return fmt.Sprintf("resolve %s: %v", e.InstanceKey, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
