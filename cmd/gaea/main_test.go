package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea"
)

const treeYAML = `root: page
instances:
  page:
    gaeaKey: gaea-container
    childs: [button, label]
  button:
    gaeaKey: gaea-button
    parentInstanceKey: page
    data:
      props:
        text: Press
      events:
        - trigger: callback
          triggerData: {field: onClick}
          action: passingSiblingNodes
          actionData:
            data: [{name: msg}]
  label:
    gaeaKey: gaea-text
    parentInstanceKey: page
    variables:
      text: {type: sibling, key: msg}
`

func writeTree(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(treeYAML), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gaea version "+strings.TrimSpace(gaea.Version)+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "--file", writeTree(t))
	require.NoError(t, err)
	assert.Contains(t, out, `Tree "page" is valid (3 instances)`)
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", "--file", writeTree(t), "--mounted")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"), out)
	assert.Contains(t, out, "classDef")
}

func TestRenderCommand_JSON(t *testing.T) {
	out, err := run(t, "render", "--file", writeTree(t), "--format", "json", "--invoke", "button.onClick")
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "page", tree["instance_key"])
}

func TestPublishCommand_RequiresRedis(t *testing.T) {
	_, err := run(t, "publish", "tick", "--redis", "")
	assert.ErrorContains(t, err, "publish requires --redis")
}
