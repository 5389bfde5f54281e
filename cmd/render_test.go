package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notion/pkg/notion/notiontest"
	"github.com/mattsolo1/grove-notion/pkg/tree"
)

func TestRenderTree(t *testing.T) {
	mk := func(n tree.Node, err error) tree.Node {
		require.NoError(t, err)
		return n
	}
	root := mk(tree.New(notiontest.Page("root", "Workspace")))
	sub := mk(tree.New(notiontest.ChildPage("sub", "Settings")))
	sub.AppendChild(mk(tree.New(notiontest.TextBlock("li", "bulleted_list_item", "item"))))
	root.AppendChild(
		sub,
		mk(tree.New(notiontest.ToDo("run", "!RUN", true, notiontest.Edited))),
	)

	var buf bytes.Buffer
	renderTree(&buf, root, true)
	out := buf.String()

	assert.Contains(t, out, "Workspace")
	assert.Contains(t, out, "├── ")
	assert.Contains(t, out, "│   └── ")
	assert.Contains(t, out, "Undefined (bulleted_list_item)")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "!RUN")
	assert.Contains(t, out, "Checkbox")
	assert.Contains(t, out, "run")
}

func TestKindLabel(t *testing.T) {
	n, err := tree.New(notiontest.Database("db", "Tasks"))
	require.NoError(t, err)
	assert.Equal(t, "Database", kindLabel(n))
}
