package components_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea/pkg/components"
	"github.com/aretw0/gaea/pkg/domain"
)

func render(t *testing.T, key string, props domain.Props, children ...*domain.Element) (*domain.Element, error) {
	t.Helper()
	entry, err := components.Default().Lookup(key)
	require.NoError(t, err)

	merged := props.Clone()
	if merged == nil {
		merged = domain.Props{}
	}
	merged.FillDefaults(entry.Defaults)
	return entry.Component.Render(merged, children)
}

func TestDefault_RegistersBuiltins(t *testing.T) {
	reg := components.Default()
	assert.Equal(t, []string{
		components.Button,
		components.Container,
		components.Input,
		components.Link,
		components.Text,
	}, reg.Keys())

	entry, err := reg.Lookup(components.Container)
	require.NoError(t, err)
	assert.True(t, entry.Capabilities.IsContainer)

	entry, err = reg.Lookup(components.Button)
	require.NoError(t, err)
	assert.False(t, entry.Capabilities.IsContainer)
}

func TestButton_TextAndHandlers(t *testing.T) {
	clicked := false
	el, err := render(t, components.Button, domain.Props{
		"onClick": domain.Callback(func(args ...any) { clicked = true }),
	})
	require.NoError(t, err)

	assert.Equal(t, "button", el.Type)
	assert.Equal(t, "Button", el.Text)
	assert.Equal(t, []string{"onClick"}, el.HandlerNames())
	assert.True(t, el.Call("onClick"))
	assert.True(t, clicked)
}

func TestText_AcceptsLooselyTypedValues(t *testing.T) {
	el, err := render(t, components.Text, domain.Props{"text": 42})
	require.NoError(t, err)
	assert.Equal(t, "42", el.Text)
	assert.Equal(t, "body", el.Props["variant"])

	el, err = render(t, components.Text, domain.Props{"text": nil})
	require.NoError(t, err)
	assert.Empty(t, el.Text)
}

func TestContainer_ValidatesDirection(t *testing.T) {
	child := &domain.Element{Type: "text"}
	el, err := render(t, components.Container, domain.Props{"direction": "row"}, child)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Element{child}, el.Children)

	_, err = render(t, components.Container, domain.Props{"direction": "diagonal"})
	assert.ErrorContains(t, err, "diagonal")
}

func TestLink_FallsBackToHref(t *testing.T) {
	el, err := render(t, components.Link, domain.Props{"href": "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", el.Text)
}

func TestInput_RejectsStructuredValue(t *testing.T) {
	_, err := render(t, components.Input, domain.Props{"value": map[string]any{"a": 1}})
	assert.Error(t, err)
}
