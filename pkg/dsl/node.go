package dsl

import "github.com/aretw0/gaea/pkg/domain"

// InstanceBuilder provides a fluent API for configuring an instance.
type InstanceBuilder struct {
	inst    domain.Instance
	builder *Builder
}

// Component sets the registry key the instance renders with.
func (n *InstanceBuilder) Component(key string) *InstanceBuilder {
	n.inst.ComponentKey = key
	return n
}

// Prop sets a static prop. Dotted paths create nested maps.
func (n *InstanceBuilder) Prop(path string, value any) *InstanceBuilder {
	if n.inst.Data.Props == nil {
		n.inst.Data.Props = make(map[string]any)
	}
	domain.Props(n.inst.Data.Props).Set(path, value)
	return n
}

// Children appends child instance keys in render order.
// Instances added under those keys get this instance as parent.
func (n *InstanceBuilder) Children(keys ...string) *InstanceBuilder {
	n.inst.Children = append(n.inst.Children, keys...)
	return n
}

// Bind reads the prop at path from the sibling variable named key.
func (n *InstanceBuilder) Bind(path, key string) *InstanceBuilder {
	return n.BindAs(domain.BindingSibling, path, key)
}

// BindAs declares a binding of an arbitrary type.
func (n *InstanceBuilder) BindAs(typ, path, key string) *InstanceBuilder {
	if n.inst.Variables == nil {
		n.inst.Variables = make(map[string]domain.VariableBinding)
	}
	n.inst.Variables[path] = domain.VariableBinding{Type: typ, Key: key}
	return n
}

// OnInit starts an event that fires once at mount.
func (n *InstanceBuilder) OnInit() *EventBuilder {
	return n.on(domain.InitTrigger{})
}

// OnSubscribe starts an event that fires on every publish to channel.
func (n *InstanceBuilder) OnSubscribe(channel string) *EventBuilder {
	return n.on(domain.SubscribeTrigger{Channel: channel})
}

// OnCallback starts an event that fires when the component calls field.
func (n *InstanceBuilder) OnCallback(field string) *EventBuilder {
	return n.on(domain.CallbackTrigger{Field: field})
}

func (n *InstanceBuilder) on(t domain.Trigger) *EventBuilder {
	return &EventBuilder{instance: n, trigger: t}
}

// Build returns the underlying domain.Instance.
func (n *InstanceBuilder) Build() domain.Instance {
	return n.inst
}

// EventBuilder completes an event with its action.
type EventBuilder struct {
	instance *InstanceBuilder
	trigger  domain.Trigger
}

// PassSiblings emits the trigger's positional values under the given names.
func (e *EventBuilder) PassSiblings(names ...string) *InstanceBuilder {
	mappings := make([]domain.SiblingMapping, len(names))
	for i, name := range names {
		mappings[i] = domain.SiblingMapping{Name: name}
	}
	return e.Do(domain.PassSiblingNodesAction{Mappings: mappings})
}

// Jump navigates to url.
func (e *EventBuilder) Jump(url string) *InstanceBuilder {
	return e.Do(domain.JumpAction{URL: url})
}

// Nothing records an event whose action does nothing.
func (e *EventBuilder) Nothing() *InstanceBuilder {
	return e.Do(domain.NoneAction{})
}

// Do records the event with an arbitrary action.
func (e *EventBuilder) Do(action domain.Action) *InstanceBuilder {
	inst := &e.instance.inst
	inst.Data.Events = append(inst.Data.Events, domain.Event{Trigger: e.trigger, Action: action})
	return e.instance
}
