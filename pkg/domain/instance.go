package domain

// BindingSibling resolves a prop from the sibling state shared by the parent.
const BindingSibling = "sibling"

// Instance represents one authored node of the page tree.
// The JSON field names follow the schema written by the editor.
type Instance struct {
	Key string `json:"key,omitempty"`

	// ComponentKey is the logical component type, resolved through the registry.
	ComponentKey string `json:"gaeaKey"`

	Data InstanceData `json:"data"`

	// Children lists child instance keys in render order.
	// Empty for leaf instances.
	Children []string `json:"childs,omitempty"`

	ParentKey string `json:"parentInstanceKey,omitempty"`

	// Variables maps a local prop path (e.g. "style.color") to the source that populates it.
	Variables map[string]VariableBinding `json:"variables,omitempty"`
}

// InstanceData is the payload edited in the authoring tool.
type InstanceData struct {
	Props  map[string]any `json:"props,omitempty"`
	Events []Event        `json:"events,omitempty"`
}

// VariableBinding declares where a prop value comes from at render time.
type VariableBinding struct {
	Type string `json:"type" mapstructure:"type"`
	Key  string `json:"key" mapstructure:"key"`
}

// SiblingKeys returns the sibling state keys this instance reads.
// The result is the allow-list used when projecting a parent's state.
func (i *Instance) SiblingKeys() []string {
	if len(i.Variables) == 0 {
		return nil
	}
	keys := make([]string, 0, len(i.Variables))
	seen := make(map[string]bool, len(i.Variables))
	for _, path := range sortedKeys(i.Variables) {
		b := i.Variables[path]
		if b.Type != BindingSibling || seen[b.Key] {
			continue
		}
		seen[b.Key] = true
		keys = append(keys, b.Key)
	}
	return keys
}

// IsLeaf reports whether the instance declares no children.
func (i *Instance) IsLeaf() bool {
	return len(i.Children) == 0
}
