package domain

import "encoding/json"

// Element is the headless output of rendering one instance.
// Hosts present it (HTTP JSON, terminal outline, MCP resource).
type Element struct {
	Type        string     `json:"type"`
	InstanceKey string     `json:"instance_key,omitempty"`
	Text        string     `json:"text,omitempty"`
	Props       Props      `json:"props,omitempty"`
	Children    []*Element `json:"children,omitempty"`

	// Handlers holds function props. Only their names are serialized.
	Handlers map[string]Callback `json:"-"`
}

// NewElement splits function props into handlers and runs the ref hook, if any.
func NewElement(typ string, props Props, children []*Element) *Element {
	el := &Element{
		Type:     typ,
		Props:    Props{},
		Children: children,
	}
	var ref RefFunc
	for k, v := range props {
		switch fn := v.(type) {
		case Callback:
			if el.Handlers == nil {
				el.Handlers = make(map[string]Callback)
			}
			el.Handlers[k] = fn
		case func(args ...any):
			if el.Handlers == nil {
				el.Handlers = make(map[string]Callback)
			}
			el.Handlers[k] = fn
		case RefFunc:
			ref = fn
		default:
			el.Props[k] = v
		}
	}
	if ref != nil {
		ref(el)
	}
	return el
}

// HandlerNames returns the sorted names of the element's handlers.
func (e *Element) HandlerNames() []string {
	return sortedKeys(e.Handlers)
}

// Call invokes the named handler. It reports false when no handler exists.
func (e *Element) Call(name string, args ...any) bool {
	fn, ok := e.Handlers[name]
	if !ok {
		return false
	}
	fn(args...)
	return true
}

// Find returns the first element in the subtree rendered for instanceKey.
func (e *Element) Find(instanceKey string) *Element {
	if e == nil {
		return nil
	}
	if e.InstanceKey == instanceKey {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(instanceKey); found != nil {
			return found
		}
	}
	return nil
}

// MarshalJSON adds the handler names so clients know which callbacks exist.
func (e *Element) MarshalJSON() ([]byte, error) {
	type plain Element
	out := struct {
		*plain
		Handlers []string `json:"handlers,omitempty"`
	}{
		plain: (*plain)(e),
	}
	if len(e.Handlers) > 0 {
		out.Handlers = e.HandlerNames()
	}
	return json.Marshal(out)
}
