package runtime

import (
	"context"
	"slices"

	"github.com/aretw0/gaea/pkg/domain"
)

// assembleProps builds the props handed to the component. Later steps override earlier ones:
// preview flag, ref, callbacks, the instance's raw props, variable bindings.
// Component defaults only fill keys that are still unset.
func (n *node) assembleProps() domain.Props {
	props := domain.Props{
		domain.PropPreview: true,
		domain.PropRef: domain.RefFunc(func(el *domain.Element) {
			n.handle = el
		}),
	}
	for field, cb := range n.callbacks {
		props[field] = cb
	}
	props.Merge(n.inst.Data.Props)
	bindVariables(props, n.inst.Variables, n.data)
	props.FillDefaults(n.entry.Defaults)
	return props
}

// bindVariables writes bound sibling values into props at their dotted paths.
// Unknown binding types are ignored.
func bindVariables(props domain.Props, vars map[string]domain.VariableBinding, visible map[string]any) {
	paths := make([]string, 0, len(vars))
	for path := range vars {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		b := vars[path]
		if b.Type != domain.BindingSibling {
			continue
		}
		props.Set(path, visible[b.Key])
	}
}

// synthesizeCallbacks groups callback-triggered events by field.
// Each field becomes one function that dispatches its events in declaration order.
func (n *node) synthesizeCallbacks() map[string]domain.Callback {
	grouped := make(map[string][]domain.Event)
	for _, ev := range n.inst.Data.Events {
		t, ok := ev.Trigger.(domain.CallbackTrigger)
		if !ok || t.Field == "" {
			continue
		}
		grouped[t.Field] = append(grouped[t.Field], ev)
	}

	callbacks := make(map[string]domain.Callback, len(grouped))
	for field, events := range grouped {
		callbacks[field] = n.callback(events)
	}
	return callbacks
}

func (n *node) callback(events []domain.Event) domain.Callback {
	return func(args ...any) {
		err := n.root.enter(context.Background(), func(ctx context.Context) error {
			if !n.mounted {
				return domain.ErrUnmounted
			}
			for _, ev := range events {
				n.dispatch(ctx, ev, args...)
			}
			return nil
		})
		if err != nil {
			n.root.recordErr(err)
		}
	}
}
