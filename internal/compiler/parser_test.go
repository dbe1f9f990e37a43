package compiler

import (
	"testing"

	"github.com/aretw0/gaea/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser()

	raw := []byte(`{
		"gaeaKey": "gaea-container",
		"data": {
			"props": {"style": {"display": "block"}},
			"events": [{"trigger": "subscribe", "triggerData": {"name": "reload"}, "action": "none"}]
		},
		"childs": ["gaea_instance_3"],
		"parentInstanceKey": null,
		"variables": {"title": {"type": "sibling", "key": "t"}}
	}`)

	inst, err := p.Parse("gaea_instance_1", raw)
	require.NoError(t, err)

	assert.Equal(t, "gaea_instance_1", inst.Key)
	assert.Equal(t, "gaea-container", inst.ComponentKey)
	assert.Equal(t, []string{"gaea_instance_3"}, inst.Children)
	assert.Equal(t, domain.SubscribeTrigger{Channel: "reload"}, inst.Data.Events[0].Trigger)
	assert.Equal(t, domain.VariableBinding{Type: "sibling", Key: "t"}, inst.Variables["title"])
}

func TestParser_Errors(t *testing.T) {
	p := NewParser()

	_, err := p.Parse("a", []byte(`{not json`))
	assert.Error(t, err)

	_, err = p.Parse("a", []byte(`{"data":{}}`))
	assert.ErrorContains(t, err, "missing gaeaKey")

	_, err = p.Parse("a", []byte(`{"key":"b","gaeaKey":"x"}`))
	assert.ErrorContains(t, err, "declares key")
}
