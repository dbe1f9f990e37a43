package dsl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea/pkg/domain"
)

func TestBuilder_SiblingPage(t *testing.T) {
	b := New()

	b.Add("page").
		Component("gaea-container").
		Prop("direction", "column").
		Children("button", "label")

	b.Add("button").
		Component("gaea-button").
		Prop("text", "Press").
		OnCallback("onClick").PassSiblings("x")

	b.Add("label").
		Component("gaea-text").
		Prop("style.color", "blue").
		Bind("text", "x")

	loader, err := b.Build()
	require.NoError(t, err)

	keys, err := loader.ListInstances()
	require.NoError(t, err)
	assert.Equal(t, []string{"button", "label", "page"}, keys)

	raw, err := loader.GetInstance("button")
	require.NoError(t, err)
	var button domain.Instance
	require.NoError(t, json.Unmarshal(raw, &button))
	assert.Equal(t, "page", button.ParentKey)
	require.Len(t, button.Data.Events, 1)
	assert.Equal(t, domain.CallbackTrigger{Field: "onClick"}, button.Data.Events[0].Trigger)
	assert.Equal(t,
		domain.PassSiblingNodesAction{Mappings: []domain.SiblingMapping{{Name: "x"}}},
		button.Data.Events[0].Action)

	raw, err = loader.GetInstance("label")
	require.NoError(t, err)
	var label domain.Instance
	require.NoError(t, json.Unmarshal(raw, &label))
	assert.Equal(t, domain.VariableBinding{Type: domain.BindingSibling, Key: "x"}, label.Variables["text"])
	assert.Equal(t, map[string]any{"color": "blue"}, label.Data.Props["style"])
}

func TestBuilder_Events(t *testing.T) {
	b := New()
	inst := b.Add("ticker").
		Component("gaea-text").
		OnInit().Nothing().
		OnSubscribe("tick").PassSiblings("count").
		OnCallback("onClick").Jump("https://example.com").
		Build()

	require.Len(t, inst.Data.Events, 3)
	assert.Equal(t, domain.InitTrigger{}, inst.Data.Events[0].Trigger)
	assert.Equal(t, domain.NoneAction{}, inst.Data.Events[0].Action)
	assert.Equal(t, domain.SubscribeTrigger{Channel: "tick"}, inst.Data.Events[1].Trigger)
	assert.Equal(t, domain.JumpAction{URL: "https://example.com"}, inst.Data.Events[2].Action)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	first := b.Add("a").Component("gaea-text")
	assert.Same(t, first, b.Add("a"))
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("missing component", func(t *testing.T) {
		b := New()
		b.Add("orphan")
		_, err := b.Build()
		assert.ErrorContains(t, err, "no component")
	})

	t.Run("two parents", func(t *testing.T) {
		b := New()
		b.Add("a").Component("gaea-container").Children("c")
		b.Add("b").Component("gaea-container").Children("c")
		b.Add("c").Component("gaea-text")
		_, err := b.Build()
		assert.ErrorContains(t, err, "listed by both")
	})
}
