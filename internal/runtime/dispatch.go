package runtime

import (
	"context"

	"github.com/aretw0/gaea/pkg/domain"
)

// dispatch runs the action of ev. values are positional arguments from a callback.
func (n *node) dispatch(ctx context.Context, ev domain.Event, values ...any) {
	e := n.root.engine

	if ev.Action == nil {
		return
	}
	if ev.Trigger != nil {
		fire(ctx, e.hooks.OnDispatch, &domain.DispatchEvent{
			InstanceKey: n.inst.Key,
			Trigger:     ev.Trigger.Kind(),
			Action:      ev.Action.Kind(),
			Args:        values,
		})
	}

	switch a := ev.Action.(type) {
	case domain.NoneAction:
	case domain.PassSiblingNodesAction:
		if n.parent == nil {
			e.logger.Debug("Dropping sibling update from root instance", "instance", n.inst.Key)
			return
		}
		for i, m := range a.Mappings {
			var v any
			if i < len(values) {
				v = values[i]
			}
			n.parent.Emit(domain.SiblingUpdate{Name: m.Name, Value: v})
		}
	case domain.JumpAction:
		if e.navigator == nil {
			e.logger.Debug("No navigator configured, dropping jump", "instance", n.inst.Key, "url", a.URL)
			return
		}
		if err := e.navigator.Open(ctx, a.URL); err != nil {
			e.logger.Warn("Navigation failed", "instance", n.inst.Key, "url", a.URL, "error", err)
		}
	case domain.UnknownAction:
		e.logger.Debug("Ignoring unknown action", "instance", n.inst.Key, "action", a.Name)
	}
}
