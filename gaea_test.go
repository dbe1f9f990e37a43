package gaea_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/testutils"
	"github.com/aretw0/gaea/pkg/adapters/memory"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/navigation"
	"github.com/aretw0/gaea/pkg/ports/tests"
)

func TestFacade_Integration(t *testing.T) {
	repoPath := t.TempDir()
	testutils.WriteFiles(t, repoPath, map[string]string{
		"page.json": `{"gaeaKey": "gaea-container", "childs": ["button", "label"]}`,
		"button.md": `---
gaeaKey: gaea-button
parentInstanceKey: page
data:
  events:
    - trigger: callback
      triggerData:
        field: onClick
      action: passingSiblingNodes
      actionData:
        data:
          - name: x
---
Press me`,
		"label.md": `---
gaeaKey: gaea-text
parentInstanceKey: page
variables:
  text:
    type: sibling
    key: x
---`,
	})

	engine, err := gaea.New(repoPath)
	require.NoError(t, err)
	assert.NotEmpty(t, engine.Name)

	ctx := context.Background()
	root, err := engine.Instantiate(ctx, "page")
	require.NoError(t, err)
	defer root.Unmount(ctx)

	assert.NotEmpty(t, root.ID)
	assert.Equal(t, "page", root.Key)
	assert.Equal(t, []string{"button", "label", "page"}, root.Mounted())

	tree := root.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, "container", tree.Type)
	assert.Equal(t, "Press me", tree.Find("button").Text)

	require.NoError(t, root.Invoke(ctx, "button", "onClick", "hi"))
	assert.Equal(t, "hi", tree.Find("label").Text)
}

func TestNew_RequiresPathWithoutLoader(t *testing.T) {
	_, err := gaea.New("")
	assert.Error(t, err)
}

func TestEngine_JumpUsesNavigator(t *testing.T) {
	loader, err := memory.NewFromInstances(
		domain.Instance{
			Key:          "link",
			ComponentKey: "gaea-link",
			Data: domain.InstanceData{
				Props: map[string]any{"href": "https://example.com"},
				Events: []domain.Event{{
					Trigger: domain.CallbackTrigger{Field: "onClick"},
					Action:  domain.JumpAction{URL: "https://example.com/next"},
				}},
			},
		},
	)
	require.NoError(t, err)

	nav := navigation.NewRecorder(0)
	engine, err := gaea.New("", gaea.WithLoader(loader), gaea.WithNavigator(nav))
	require.NoError(t, err)

	ctx := context.Background()
	root, err := engine.Instantiate(ctx, "link")
	require.NoError(t, err)
	defer root.Unmount(ctx)

	require.NoError(t, root.Invoke(ctx, "link", "onClick"))
	last, ok := nav.Last()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/next", last.URL)
}

func TestEngine_InspectAndExport(t *testing.T) {
	loader := memory.NewLoader(toStrings(tests.SampleTreeJSON()))
	engine, err := gaea.New("", gaea.WithLoader(loader))
	require.NoError(t, err)

	instances, err := engine.Inspect()
	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, "button", instances[0].Key)

	raw, err := engine.Export()
	require.NoError(t, err)
	var doc map[string]domain.Instance
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "gaea-container", doc["page"].ComponentKey)
	assert.Equal(t, []string{"button", "label"}, doc["page"].Children)
}

func TestEngine_Watch(t *testing.T) {
	loader := memory.NewLoader(nil)
	engine, err := gaea.New("", gaea.WithLoader(loader))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := engine.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, loader.PutInstance(ctx, "a", []byte(`{"gaeaKey":"gaea-text"}`)))
	assert.Equal(t, "a", <-ch)
}

func TestEngine_InstantiateUnknownRoot(t *testing.T) {
	engine, err := gaea.New("", gaea.WithLoader(memory.NewLoader(nil)))
	require.NoError(t, err)

	_, err = engine.Instantiate(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrInstanceNotFound)

	var rerr *domain.ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "missing", rerr.InstanceKey)
}

func toStrings(in map[string][]byte) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = string(v)
	}
	return out
}
