package domain

import "context"

// InstanceEvent describes a lifecycle step of one mounted instance.
type InstanceEvent struct {
	InstanceKey  string
	ComponentKey string
}

// DispatchEvent describes one action run.
type DispatchEvent struct {
	InstanceKey string
	Trigger     string
	Action      string
	Args        []any
}

// SiblingEvent describes a sibling update merged by a parent.
type SiblingEvent struct {
	ParentKey string
	Update    SiblingUpdate
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnMount         func(context.Context, *InstanceEvent)
	OnUnmount       func(context.Context, *InstanceEvent)
	OnRender        func(context.Context, *InstanceEvent)
	OnSkip          func(context.Context, *InstanceEvent)
	OnDispatch      func(context.Context, *DispatchEvent)
	OnSiblingUpdate func(context.Context, *SiblingEvent)
}

// Combine returns hooks that call h first and then other.
func (h LifecycleHooks) Combine(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnMount:         chain(h.OnMount, other.OnMount),
		OnUnmount:       chain(h.OnUnmount, other.OnUnmount),
		OnRender:        chain(h.OnRender, other.OnRender),
		OnSkip:          chain(h.OnSkip, other.OnSkip),
		OnDispatch:      chain(h.OnDispatch, other.OnDispatch),
		OnSiblingUpdate: chain(h.OnSiblingUpdate, other.OnSiblingUpdate),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
