package tree

import (
	"context"
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notion/pkg/notion"
	"github.com/mattsolo1/grove-notion/pkg/notion/notiontest"
)

func newTestResolver(fake *notiontest.Fake) (*Resolver, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return NewResolver(fake, logger), hook
}

func childIDs(n Node) []string {
	var ids []string
	for _, c := range n.Children() {
		ids = append(ids, c.ID())
	}
	return ids
}

func TestResolveSinglePage(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")

	r, _ := newTestResolver(fake)
	root, report, err := r.Resolve(context.Background(), "root")
	require.NoError(t, err)

	assert.Equal(t, KindPage, root.Kind())
	assert.Equal(t, "Home", root.(TitleView).Title())
	assert.Empty(t, root.Children())
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, []string{
		"retrieve blocks/root",
		"retrieve pages/root",
		"list blocks/root ",
	}, fake.Calls())
}

func TestResolvePagination(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")

	ids := []string{"c1", "c2", "c3", "c4", "c5"}
	var entries []notion.Object
	for _, id := range ids {
		obj := notiontest.Paragraph(id, "text "+id)
		fake.AddBlock(obj)
		entries = append(entries, notiontest.BlockStub(id, "paragraph"))
	}
	fake.SetChildren("root", entries, 2, 2, 1)

	r, _ := newTestResolver(fake)
	root, report, err := r.Resolve(context.Background(), "root")
	require.NoError(t, err)

	assert.Equal(t, ids, childIDs(root))
	assert.Equal(t, 6, report.Resolved)
	assert.Equal(t, 3, fake.CountCalls("list blocks/root"))
}

func TestResolveNested(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")
	fake.AddPage("sub", "Sub page")
	fake.AddDatabase("db", "Tasks")
	fake.AddPage("row", "Row")
	fake.AddBlock(notiontest.ToDo("btn", "!RUN", false, notiontest.Edited))
	fake.AddBlock(notiontest.Code("cfg", "yaml", "a: 1"))

	fake.SetChildren("root", []notion.Object{
		notiontest.ChildPage("sub", "Sub page"),
		notiontest.ChildDatabase("db", "Tasks"),
	})
	fake.SetChildren("sub", []notion.Object{
		notiontest.BlockStub("btn", "to_do"),
		notiontest.BlockStub("cfg", "code"),
	})
	fake.SetChildren("db", []notion.Object{notiontest.Page("row", "Row")})

	r, _ := newTestResolver(fake)
	root, report, err := r.Resolve(context.Background(), "root")
	require.NoError(t, err)

	require.Equal(t, []string{"sub", "db"}, childIDs(root))
	sub := root.Children()[0]
	assert.Equal(t, []string{"btn", "cfg"}, childIDs(sub))
	_, isCheckbox := sub.Children()[0].(*Checkbox)
	assert.True(t, isCheckbox)
	_, isCode := sub.Children()[1].(*Code)
	assert.True(t, isCode)

	db := root.Children()[1]
	assert.Equal(t, KindDatabase, db.Kind())
	assert.Equal(t, []string{"row"}, childIDs(db))
	assert.Equal(t, 1, fake.CountCalls("list databases/db"))

	// Checkboxes and code blocks never list children.
	assert.Zero(t, fake.CountCalls("list blocks/btn"))
	assert.Zero(t, fake.CountCalls("list blocks/cfg"))
	assert.Equal(t, 6, report.Resolved)
	assert.Zero(t, report.Skipped)
}

func TestResolvePartialFailure(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")
	for _, id := range []string{"c1", "c2", "c3"} {
		fake.AddBlock(notiontest.Paragraph(id, id))
	}
	fake.SetChildren("root", []notion.Object{
		notiontest.BlockStub("c1", "paragraph"),
		notiontest.BlockStub("c2", "paragraph"),
		notiontest.BlockStub("c3", "paragraph"),
	})
	fake.Fail("retrieve", "blocks/c2", errors.New("gone"))

	r, hook := newTestResolver(fake)
	root, report, err := r.Resolve(context.Background(), "root")
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c3"}, childIDs(root))
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "c2")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Skipping child" && e.Data["child"] == "c2" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestResolveContentFailureYieldsLeaf(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")
	fake.AddPage("sub", "Sub page")
	fake.AddBlock(notiontest.Paragraph("after", "after"))
	fake.SetChildren("root", []notion.Object{
		notiontest.ChildPage("sub", "Sub page"),
		notiontest.BlockStub("after", "paragraph"),
	})
	fake.SetChildren("sub", []notion.Object{notiontest.Paragraph("hidden", "x")})
	fake.Fail("list", "sub", errors.New("forbidden"))

	r, _ := newTestResolver(fake)
	root, report, err := r.Resolve(context.Background(), "root")
	require.NoError(t, err)

	assert.Equal(t, []string{"sub", "after"}, childIDs(root))
	assert.Empty(t, root.Children()[0].Children())
	assert.Equal(t, 1, report.Leaves)
	assert.Zero(t, report.Skipped)
}

func TestResolveRootFailure(t *testing.T) {
	fake := notiontest.New()

	r, _ := newTestResolver(fake)
	root, report, err := r.Resolve(context.Background(), "missing")
	require.Error(t, err)
	assert.Nil(t, root)

	var re *notion.RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "missing", re.ID)
	assert.Len(t, report.Errors, 1)

	// Block envelope present but the properties fetch fails.
	fake.Put(notion.EndpointBlocks, notiontest.ChildPage("half", "Half"))
	_, _, err = r.Resolve(context.Background(), "half")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, notion.EndpointPages, re.Endpoint)
}

func TestResolveDispatchFailure(t *testing.T) {
	fake := notiontest.New()
	fake.Put(notion.EndpointBlocks, notiontest.ChildPage("root", "Home"))
	// The pages endpoint answers with something that is not a page.
	fake.Put(notion.EndpointPages, notiontest.Database("root", "Tasks"))

	r, _ := newTestResolver(fake)
	_, _, err := r.Resolve(context.Background(), "root")
	var de *DispatchError
	require.ErrorAs(t, err, &de)
}

func TestResolveUnknownKindIsLeaf(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")
	fake.AddBlock(notiontest.TextBlock("li", "bulleted_list_item", "item"))
	fake.SetChildren("root", []notion.Object{notiontest.BlockStub("li", "bulleted_list_item")})

	r, _ := newTestResolver(fake)
	root, _, err := r.Resolve(context.Background(), "root")
	require.NoError(t, err)

	require.Len(t, root.Children(), 1)
	assert.Equal(t, KindUndefined, root.Children()[0].Kind())
	assert.Zero(t, fake.CountCalls("list blocks/li"))
}

func TestResolveRepeatedObject(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")
	fake.AddPage("loop", "Loop")
	fake.SetChildren("root", []notion.Object{notiontest.ChildPage("loop", "Loop")})
	fake.SetChildren("loop", []notion.Object{notiontest.ChildPage("root", "Home")})

	r, _ := newTestResolver(fake)
	root, report, err := r.Resolve(context.Background(), "root")
	require.NoError(t, err)

	require.Equal(t, []string{"loop"}, childIDs(root))
	assert.Empty(t, root.Children()[0].Children())
	assert.Equal(t, 1, report.Skipped)
}

func TestResolveCancelled(t *testing.T) {
	fake := notiontest.New()
	fake.AddPage("root", "Home")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _ := newTestResolver(fake)
	_, _, err := r.Resolve(ctx, "root")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.Calls())
}
