package notiontest

import (
	"time"

	"github.com/mattsolo1/grove-notion/pkg/notion"
)

// Edited is the default last_edited_time of fixture objects.
var Edited = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// RichText builds a single plain text run.
func RichText(s string) []any {
	return []any{map[string]any{
		"type":       "text",
		"text":       map[string]any{"content": s, "link": nil},
		"plain_text": s,
	}}
}

func stamp(obj notion.Object, edited time.Time) notion.Object {
	obj["created_time"] = Edited.Add(-time.Hour).Format(time.RFC3339)
	obj["last_edited_time"] = edited.Format(time.RFC3339)
	return obj
}

// BlockStub is what the blocks endpoint returns for any block: the envelope
// with its type.
func BlockStub(id, blockType string) notion.Object {
	return stamp(notion.Object{
		"object":       "block",
		"id":           id,
		"type":         blockType,
		"has_children": false,
		blockType:      map[string]any{},
	}, Edited)
}

// Page builds a page object whose title property is called "title".
func Page(id, title string) notion.Object {
	return stamp(notion.Object{
		"object": "page",
		"id":     id,
		"properties": map[string]any{
			"title": map[string]any{
				"id":    "title",
				"type":  "title",
				"title": RichText(title),
			},
		},
	}, Edited)
}

// ChildPage builds the block envelope of a page.
func ChildPage(id, title string) notion.Object {
	obj := BlockStub(id, "child_page")
	obj["child_page"] = map[string]any{"title": title}
	return obj
}

// Database builds a database object.
func Database(id, title string) notion.Object {
	return stamp(notion.Object{
		"object":     "database",
		"id":         id,
		"title":      RichText(title),
		"properties": map[string]any{},
	}, Edited)
}

// ChildDatabase builds the block envelope of a database.
func ChildDatabase(id, title string) notion.Object {
	obj := BlockStub(id, "child_database")
	obj["child_database"] = map[string]any{"title": title}
	return obj
}

// Paragraph builds a paragraph block.
func Paragraph(id, text string) notion.Object {
	return TextBlock(id, "paragraph", text)
}

// TextBlock builds a rich-text bearing block of the given type.
func TextBlock(id, blockType, text string) notion.Object {
	return stamp(notion.Object{
		"object": "block",
		"id":     id,
		"type":   blockType,
		blockType: map[string]any{
			"rich_text": RichText(text),
			"color":     "default",
		},
	}, Edited)
}

// ToDo builds a to_do block.
func ToDo(id, text string, checked bool, edited time.Time) notion.Object {
	return stamp(notion.Object{
		"object": "block",
		"id":     id,
		"type":   "to_do",
		"to_do": map[string]any{
			"rich_text": RichText(text),
			"checked":   checked,
			"color":     "default",
		},
	}, edited)
}

// Code builds a code block.
func Code(id, language, body string) notion.Object {
	return stamp(notion.Object{
		"object": "block",
		"id":     id,
		"type":   "code",
		"code": map[string]any{
			"rich_text": RichText(body),
			"language":  language,
			"caption":   []any{},
		},
	}, Edited)
}

// AddPage registers a page under both the blocks and the pages endpoints.
func (f *Fake) AddPage(id, title string) {
	f.Put(notion.EndpointBlocks, ChildPage(id, title))
	f.Put(notion.EndpointPages, Page(id, title))
}

// AddDatabase registers a database under both the blocks and the databases endpoints.
func (f *Fake) AddDatabase(id, title string) {
	f.Put(notion.EndpointBlocks, ChildDatabase(id, title))
	f.Put(notion.EndpointDatabases, Database(id, title))
}

// AddBlock registers a block under the blocks endpoint.
func (f *Fake) AddBlock(obj notion.Object) {
	f.Put(notion.EndpointBlocks, obj)
}
