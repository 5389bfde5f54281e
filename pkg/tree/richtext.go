package tree

import (
	"strings"

	"github.com/mattsolo1/grove-notion/pkg/notion"
)

// richTextKey returns the key holding the rich text array of a block's
// type-specific object. Older API versions used "text".
func richTextKey(sub notion.Object) string {
	if _, ok := sub["rich_text"]; ok {
		return "rich_text"
	}
	if _, ok := sub["text"]; ok {
		return "text"
	}
	return "rich_text"
}

// plainText concatenates the plain_text of every run. When onlyText is set,
// mentions and equations are skipped.
func plainText(runs []any, onlyText bool) string {
	var sb strings.Builder
	for _, r := range runs {
		run, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if onlyText && run["type"] != "text" {
			continue
		}
		s, _ := run["plain_text"].(string)
		sb.WriteString(s)
	}
	return sb.String()
}

// textRuns builds the rich text array holding a single plain run.
func textRuns(s string) []any {
	return []any{map[string]any{
		"type":       "text",
		"text":       map[string]any{"content": s, "link": nil},
		"plain_text": s,
	}}
}
