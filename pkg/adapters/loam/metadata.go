package loam

import "github.com/aretw0/gaea/pkg/domain"

// InstanceMetadata represents the header/metadata of one instance document.
// It mirrors the editor's JSON record so frontmatter and .json files read the same way.
type InstanceMetadata struct {
	Key       string                            `json:"key" mapstructure:"key"`
	GaeaKey   string                            `json:"gaeaKey" mapstructure:"gaeaKey"`
	Data      DataMetadata                      `json:"data" mapstructure:"data"`
	Childs    []string                          `json:"childs" mapstructure:"childs"`
	Parent    string                            `json:"parentInstanceKey" mapstructure:"parentInstanceKey"`
	Variables map[string]domain.VariableBinding `json:"variables" mapstructure:"variables"`
}

// DataMetadata is the "data" block of an instance.
// Events stay untyped here; YAML may decode them as map[any]any.
type DataMetadata struct {
	Props  map[string]any `json:"props" mapstructure:"props"`
	Events []any          `json:"events" mapstructure:"events"`
}

// LoaderEvent is the editor's event shape as found in a document.
type LoaderEvent struct {
	Trigger     string         `json:"trigger" mapstructure:"trigger"`
	TriggerData map[string]any `json:"triggerData,omitempty" mapstructure:"triggerData"`
	Action      string         `json:"action" mapstructure:"action"`
	ActionData  map[string]any `json:"actionData,omitempty" mapstructure:"actionData"`
}
