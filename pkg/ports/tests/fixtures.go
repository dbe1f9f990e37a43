package tests

import (
	"encoding/json"

	"github.com/aretw0/gaea/pkg/domain"
)

// SampleTree returns a small page: a container with a button that publishes "x"
// and a text bound to it.
func SampleTree() map[string]domain.Instance {
	return map[string]domain.Instance{
		"page": {
			Key:          "page",
			ComponentKey: "gaea-container",
			Data:         domain.InstanceData{Props: map[string]any{"direction": "column"}},
			Children:     []string{"button", "label"},
		},
		"button": {
			Key:          "button",
			ComponentKey: "gaea-button",
			ParentKey:    "page",
			Data: domain.InstanceData{
				Props: map[string]any{"text": "Press"},
				Events: []domain.Event{
					{
						Trigger: domain.CallbackTrigger{Field: "onClick"},
						Action:  domain.PassSiblingNodesAction{Mappings: []domain.SiblingMapping{{Name: "x"}}},
					},
				},
			},
		},
		"label": {
			Key:          "label",
			ComponentKey: "gaea-text",
			ParentKey:    "page",
			Variables: map[string]domain.VariableBinding{
				"text": {Type: domain.BindingSibling, Key: "x"},
			},
		},
	}
}

// SampleTreeJSON returns SampleTree serialized per instance.
func SampleTreeJSON() map[string][]byte {
	out := make(map[string][]byte)
	for k, inst := range SampleTree() {
		raw, err := json.Marshal(inst)
		if err != nil {
			panic(err)
		}
		out[k] = raw
	}
	return out
}

func decode(raw []byte) (*domain.Instance, error) {
	var inst domain.Instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}
