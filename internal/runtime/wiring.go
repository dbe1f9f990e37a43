package runtime

import (
	"context"

	"github.com/aretw0/gaea/pkg/domain"
)

// mount wires the instance's events: init actions run now, subscribe triggers
// register on the bus and callback triggers become function props.
func (n *node) mount(ctx context.Context) {
	if n.mounted {
		return
	}
	n.mounted = true
	n.siblings = domain.SiblingState{}
	n.callbacks = n.synthesizeCallbacks()

	fire(ctx, n.root.engine.hooks.OnMount, n.event())

	for _, ev := range n.inst.Data.Events {
		switch t := ev.Trigger.(type) {
		case domain.InitTrigger:
			n.dispatch(ctx, ev)
		case domain.SubscribeTrigger:
			sub := n.root.bus.Subscribe(t.Channel, n.subscriber(ev))
			n.subs = append(n.subs, sub)
		case domain.CallbackTrigger:
			// exposed through n.callbacks
		case domain.UnknownTrigger:
			n.root.engine.logger.Debug("Ignoring unknown trigger", "instance", n.inst.Key, "trigger", t.Name)
		}
	}
}

// unmount deregisters exactly the subscriptions mount created, then unmounts children.
func (n *node) unmount(ctx context.Context) {
	if !n.mounted {
		return
	}
	n.mounted = false
	for _, sub := range n.subs {
		n.root.bus.Unsubscribe(sub)
	}
	n.subs = nil

	fire(ctx, n.root.engine.hooks.OnUnmount, n.event())

	for _, key := range n.inst.Children {
		if c, ok := n.children[key]; ok {
			c.unmount(ctx)
		}
	}
	clear(n.children)
	n.siblings = nil
	delete(n.root.arena, n.inst.Key)
	delete(n.root.dirty, n)
}

// subscriber dispatches ev with no positional values whenever its channel is published.
func (n *node) subscriber(ev domain.Event) func(context.Context, any) {
	return func(ctx context.Context, _ any) {
		err := n.root.enter(ctx, func(ctx context.Context) error {
			if n.mounted {
				n.dispatch(ctx, ev)
			}
			return nil
		})
		if err != nil {
			n.root.recordErr(err)
		}
	}
}
