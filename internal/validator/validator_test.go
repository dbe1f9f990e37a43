package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea/internal/compiler"
	"github.com/aretw0/gaea/pkg/adapters/memory"
	"github.com/aretw0/gaea/pkg/components"
)

func validate(records map[string]string, root string) *Report {
	return ValidateTree(memory.NewLoader(records), compiler.NewParser(), components.Default(), root)
}

func TestValidateTree_Valid(t *testing.T) {
	report := validate(map[string]string{
		"page": `{"gaeaKey":"gaea-container","childs":["button","label"]}`,
		"button": `{"gaeaKey":"gaea-button","parentInstanceKey":"page","data":{"events":[
			{"trigger":"callback","triggerData":{"field":"onClick"},"action":"passingSiblingNodes","actionData":{"data":[{"name":"x"}]}}
		]}}`,
		"label": `{"gaeaKey":"gaea-text","parentInstanceKey":"page","variables":{"text":{"type":"sibling","key":"x"}}}`,
	}, "page")

	require.NoError(t, report.Err())
	assert.Empty(t, report.Warnings)
	assert.Equal(t, []string{"page", "button", "label"}, report.Visited)
}

func TestValidateTree_Errors(t *testing.T) {
	tests := []struct {
		name    string
		records map[string]string
		want    string
	}{
		{
			name:    "missing child",
			records: map[string]string{"page": `{"gaeaKey":"gaea-container","childs":["ghost"]}`},
			want:    "Missing instance 'ghost'",
		},
		{
			name:    "missing root",
			records: map[string]string{},
			want:    "Missing instance 'page'",
		},
		{
			name:    "unregistered component",
			records: map[string]string{"page": `{"gaeaKey":"fancy-widget"}`},
			want:    "component 'fancy-widget' not registered",
		},
		{
			name: "cycle",
			records: map[string]string{
				"page": `{"gaeaKey":"gaea-container","childs":["box"]}`,
				"box":  `{"gaeaKey":"gaea-container","parentInstanceKey":"page","childs":["page"]}`,
			},
			want: "Cycle: page -> box -> page",
		},
		{
			name: "shared child",
			records: map[string]string{
				"page": `{"gaeaKey":"gaea-container","childs":["a","b"]}`,
				"a":    `{"gaeaKey":"gaea-container","parentInstanceKey":"page","childs":["c"]}`,
				"b":    `{"gaeaKey":"gaea-container","parentInstanceKey":"page","childs":["c"]}`,
				"c":    `{"gaeaKey":"gaea-text","parentInstanceKey":"a"}`,
			},
			want: "Instance 'c' listed by both 'a' and 'b'",
		},
		{
			name: "listed twice",
			records: map[string]string{
				"page": `{"gaeaKey":"gaea-container","childs":["a","a"]}`,
				"a":    `{"gaeaKey":"gaea-text","parentInstanceKey":"page"}`,
			},
			want: "Instance 'a' listed twice by 'page'",
		},
		{
			name:    "unparseable",
			records: map[string]string{"page": `{"gaeaKey":`},
			want:    "failed to parse instance page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validate(tt.records, "page")
			err := report.Err()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateTree_Warnings(t *testing.T) {
	report := validate(map[string]string{
		"page": `{"gaeaKey":"gaea-container","childs":["btn","txt"],"variables":{"text":{"type":"sibling","key":"x"}}}`,
		"btn": `{"gaeaKey":"gaea-button","parentInstanceKey":"elsewhere","childs":["orphan"],"data":{"events":[
			{"trigger":"hover","action":"none"},
			{"trigger":"subscribe","triggerData":{"name":"tick"},"action":"frobnicate"},
			{"trigger":"callback","triggerData":{"field":"onClick"},"action":"jump","actionData":{}}
		]}}`,
		"txt": `{"gaeaKey":"gaea-text","parentInstanceKey":"page","variables":{"text":{"type":"global","key":"x"}}}`,
	}, "page")

	require.NoError(t, report.Err())
	assert.ElementsMatch(t, []string{
		"Instance 'page': binding 'text' on the root never receives a value",
		"Instance 'btn' declares parent 'elsewhere' but is listed by 'page'",
		"Instance 'btn': event 0 has unknown trigger 'hover'",
		"Instance 'btn': event 1 has unknown action 'frobnicate'",
		"Instance 'btn': event 2 jumps to an empty URL",
		"Instance 'btn' lists children but 'gaea-button' is not a container; they are never rendered",
		"Instance 'txt': binding 'text' has unsupported type 'global'",
	}, report.Warnings)
	assert.NotContains(t, report.Visited, "orphan")
}
