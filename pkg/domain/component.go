package domain

// Component renders an Element from assembled props and already-rendered children.
type Component interface {
	Render(props Props, children []*Element) (*Element, error)
}

// ComponentFunc adapts a plain function to Component.
type ComponentFunc func(props Props, children []*Element) (*Element, error)

// Render calls f.
func (f ComponentFunc) Render(props Props, children []*Element) (*Element, error) {
	return f(props, children)
}

// Capabilities is the static metadata a component declares about itself.
type Capabilities struct {
	// IsContainer allows the component to receive child instances.
	IsContainer bool `json:"is_container" yaml:"is_container"`
}

// ComponentEntry is what the registry returns for a component key.
type ComponentEntry struct {
	Key          string
	Component    Component
	Capabilities Capabilities

	// Defaults fill props left unset by the instance and its bindings.
	Defaults Props
}
