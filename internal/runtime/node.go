package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/ports"
)

// node is the live state of one mounted instance.
type node struct {
	root   *Root
	inst   *domain.Instance
	entry  domain.ComponentEntry
	parent *node
	depth  int

	// data is the slice of the parent's sibling state this instance binds to.
	data map[string]any
	// siblings is the variable table this instance shares with its children.
	siblings domain.SiblingState

	renderedInputs map[string]any
	renderedState  domain.SiblingState

	children  map[string]*node
	callbacks map[string]domain.Callback
	subs      []ports.Subscription
	mounted   bool

	// el is patched in place on every render so parents keep valid pointers.
	el     *domain.Element
	handle *domain.Element
}

func (r *Root) newNode(parent *node, inst *domain.Instance, entry domain.ComponentEntry) *node {
	n := &node{
		root:     r,
		inst:     inst,
		entry:    entry,
		parent:   parent,
		children: make(map[string]*node),
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	r.arena[inst.Key] = n
	return n
}

func (n *node) event() *domain.InstanceEvent {
	return &domain.InstanceEvent{InstanceKey: n.inst.Key, ComponentKey: n.inst.ComponentKey}
}

// Emit merges a child's update into the sibling state and schedules a re-render.
func (n *node) Emit(update domain.SiblingUpdate) {
	if !n.mounted {
		return
	}
	n.siblings = domain.Reduce(n.siblings, update)
	n.root.markDirty(n)

	ctx := n.root.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	fire(ctx, n.root.engine.hooks.OnSiblingUpdate, &domain.SiblingEvent{ParentKey: n.inst.Key, Update: update})
}

// inputs is what a parent hands this instance. Only data is compared deeply.
func (n *node) inputs(data map[string]any) map[string]any {
	var sink domain.SiblingSink
	if n.parent != nil {
		sink = n.parent
	}
	return map[string]any{
		"instanceKey": n.inst.Key,
		"sink":        sink,
		"data":        data,
	}
}

func stateOf(s domain.SiblingState) map[string]any {
	return map[string]any{"data": map[string]any(s)}
}

// update re-renders when the new inputs or the instance's own sibling state changed.
func (n *node) update(ctx context.Context, data map[string]any) error {
	next := n.inputs(data)
	if !ShouldUpdate(n.renderedInputs, next, stateOf(n.renderedState), stateOf(n.siblings)) {
		fire(ctx, n.root.engine.hooks.OnSkip, n.event())
		return nil
	}
	n.data = data
	return n.render(ctx)
}

// render assembles props, renders children and patches the stable element.
func (n *node) render(ctx context.Context) error {
	state := n.siblings

	children, err := n.renderChildren(ctx, state)
	if err != nil {
		return err
	}

	props := n.assembleProps()
	out, err := n.entry.Component.Render(props, children)
	if err != nil {
		return fmt.Errorf("render %s (%s): %w", n.inst.Key, n.inst.ComponentKey, err)
	}
	if out == nil {
		out = &domain.Element{Type: n.inst.ComponentKey}
	}
	out.InstanceKey = n.inst.Key

	if n.el == nil {
		n.el = out
	} else {
		*n.el = *out
	}
	if n.handle == out {
		n.handle = n.el
	}

	n.renderedInputs = n.inputs(n.data)
	n.renderedState = state

	fire(ctx, n.root.engine.hooks.OnRender, n.event())
	return nil
}
