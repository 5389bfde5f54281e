package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notion/cmd/config"
	"github.com/mattsolo1/grove-notion/pkg/journal"
	"github.com/mattsolo1/grove-notion/pkg/notion"
	"github.com/mattsolo1/grove-notion/pkg/notion/notiontest"
	"github.com/mattsolo1/grove-notion/pkg/service"
	"github.com/mattsolo1/grove-notion/pkg/store"
)

const rootID = "0123abcd-4567-89ab-cdef-0123456789ab"

func newTestRuntime(t *testing.T) (*config.Runtime, *notiontest.Fake) {
	t.Helper()
	fake := notiontest.New()
	fake.AddPage(rootID, "Workspace")
	fake.AddBlock(notiontest.ToDo("run", "!RUN", false, notiontest.Edited))
	fake.AddBlock(notiontest.Paragraph("note", "hello"))
	fake.SetChildren(rootID, []notion.Object{
		notiontest.BlockStub("run", "to_do"),
		notiontest.BlockStub("note", "paragraph"),
	})
	fake.SetSearchResults(notiontest.Page(rootID, "Workspace"))

	dir := t.TempDir()
	j, err := journal.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	st, err := store.NewFileStore(filepath.Join(dir, "user.conf"))
	require.NoError(t, err)

	logger, _ := logtest.NewNullLogger()
	svc := service.New(&service.Config{RootPageName: "Workspace"}, fake, st, j, logger)
	return &config.Runtime{Service: svc}, fake
}

func run(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTreeCmd(t *testing.T) {
	rt, _ := newTestRuntime(t)
	out, err := run(t, NewTreeCmd(&rt), "--ids")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace")
	assert.Contains(t, out, "!RUN")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "3 objects")
}

func TestFindCmd(t *testing.T) {
	rt, _ := newTestRuntime(t)
	out, err := run(t, NewFindCmd(&rt), "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "note")

	_, err = run(t, NewFindCmd(&rt), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)

	out, err = run(t, NewFindCmd(&rt), "--all", "!RUN")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 results")
}

func TestPressAndHistoryCmd(t *testing.T) {
	rt, fake := newTestRuntime(t)
	out, err := run(t, NewPressCmd(&rt))
	require.NoError(t, err)
	assert.Contains(t, out, "Pressed")
	assert.Len(t, fake.Updates(), 1)

	out, err = run(t, NewHistoryCmd(&rt), "--button", "!RUN")
	require.NoError(t, err)
	assert.Contains(t, out, "pressed")
}

func TestEssentialsCmd(t *testing.T) {
	rt, _ := newTestRuntime(t)
	out, err := run(t, NewEssentialsCmd(&rt))
	assert.Error(t, err, "!CLEAR and !Interface are missing")
	assert.Contains(t, out, "!RUN")
	assert.Contains(t, out, "✗ !CLEAR")
}

func TestRootCmd(t *testing.T) {
	rt, fake := newTestRuntime(t)
	out, err := run(t, NewRootCmd(&rt), "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, rootID)
	assert.Equal(t, 1, fake.CountCalls("search"))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, NewVersionCmd(), "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "dev"`)
}

func TestNeedsRuntime(t *testing.T) {
	root := &cobra.Command{Use: "gnotion"}
	version := NewVersionCmd()
	var rt *config.Runtime
	tree := NewTreeCmd(&rt)
	root.AddCommand(version, tree)

	assert.False(t, NeedsRuntime(version))
	assert.True(t, NeedsRuntime(tree))
}
