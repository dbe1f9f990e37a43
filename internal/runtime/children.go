package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/gaea/pkg/domain"
)

// renderChildren mounts or updates every child listed by the instance and returns
// their elements in declaration order. Only containers receive children.
func (n *node) renderChildren(ctx context.Context, state domain.SiblingState) ([]*domain.Element, error) {
	if !n.entry.Capabilities.IsContainer || len(n.inst.Children) == 0 {
		return nil, nil
	}

	els := make([]*domain.Element, 0, len(n.inst.Children))
	seen := make(map[string]bool, len(n.inst.Children))
	for _, key := range n.inst.Children {
		if seen[key] {
			return nil, duplicateError(key)
		}
		seen[key] = true

		child, ok := n.children[key]
		if !ok {
			var err error
			child, err = n.spawn(ctx, key, state)
			if err != nil {
				return nil, err
			}
		} else if err := child.update(ctx, project(state, child.inst)); err != nil {
			return nil, err
		}
		els = append(els, child.el)
	}
	return els, nil
}

// spawn resolves, mounts and renders a child for the first time.
func (n *node) spawn(ctx context.Context, key string, state domain.SiblingState) (*node, error) {
	for a := n; a != nil; a = a.parent {
		if a.inst.Key == key {
			return nil, &domain.ResolveError{InstanceKey: key, Err: domain.ErrCycle}
		}
	}
	if _, taken := n.root.arena[key]; taken {
		return nil, duplicateError(key)
	}

	inst, entry, err := n.root.engine.Resolve(key)
	if err != nil {
		return nil, err
	}

	child := n.root.newNode(n, inst, entry)
	n.children[key] = child
	child.data = project(state, inst)
	child.mount(ctx)
	if err := child.render(ctx); err != nil {
		return nil, err
	}
	return child, nil
}

// project hands a child only the sibling variables its bindings read.
func project(state domain.SiblingState, inst *domain.Instance) map[string]any {
	keys := inst.SiblingKeys()
	if len(keys) == 0 {
		return nil
	}
	return state.Project(keys)
}

func duplicateError(key string) error {
	return &domain.ResolveError{
		InstanceKey: key,
		Err:         fmt.Errorf("%w: already mounted in this tree", domain.ErrDuplicateInstance),
	}
}
