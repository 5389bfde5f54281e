package tree

import "github.com/mattsolo1/grove-notion/pkg/notion"

// SemanticKind is the capability category of a node, derived from the raw
// kind reported by the remote.
type SemanticKind string

const (
	KindUndefined SemanticKind = ""
	KindPage      SemanticKind = "page"
	KindDatabase  SemanticKind = "database"
	KindParagraph SemanticKind = "paragraph"
	KindCode      SemanticKind = "code"
	KindCheckbox  SemanticKind = "checkbox"
	KindBlock     SemanticKind = "block"
)

// kindTable is the fixed raw kind -> semantic kind mapping.
var kindTable = map[string]SemanticKind{
	"page":           KindPage,
	"child_page":     KindPage,
	"database":       KindDatabase,
	"child_database": KindDatabase,
	"paragraph":      KindParagraph,
	"heading_1":      KindParagraph,
	"heading_2":      KindParagraph,
	"heading_3":      KindParagraph,
	"code":           KindCode,
	"to_do":          KindCheckbox,
	"block":          KindBlock,
	"unsupported":    KindBlock,
}

// LookupKind maps a raw kind to its semantic kind. Unknown raw kinds map to
// KindUndefined.
func LookupKind(rawKind string) SemanticKind {
	return kindTable[rawKind]
}

// KindOf returns the semantic kind of a raw payload.
func KindOf(obj notion.Object) SemanticKind {
	return LookupKind(obj.Kind())
}

// RawKinds lists every raw kind with a known mapping.
func RawKinds() []string {
	out := make([]string, 0, len(kindTable))
	for k := range kindTable {
		out = append(out, k)
	}
	return out
}

// Capabilities describes which views and behaviours a kind exposes.
type Capabilities struct {
	Content bool
	Title   bool
	Text    bool
	Checked bool
	Code    bool
}

// Capabilities returns the capability set of k.
func (k SemanticKind) Capabilities() Capabilities {
	switch k {
	case KindPage, KindDatabase:
		return Capabilities{Content: true, Title: true}
	case KindParagraph:
		return Capabilities{Content: true, Text: true}
	case KindCode:
		return Capabilities{Code: true}
	case KindCheckbox:
		return Capabilities{Text: true, Checked: true}
	}
	return Capabilities{}
}

// endpoint returns where objects of kind k are retrieved and updated.
func (k SemanticKind) endpoint() (notion.Endpoint, bool) {
	switch k {
	case KindPage:
		return notion.EndpointPages, true
	case KindDatabase:
		return notion.EndpointDatabases, true
	case KindParagraph, KindCode, KindCheckbox, KindBlock:
		return notion.EndpointBlocks, true
	}
	return "", false
}

func (k SemanticKind) String() string {
	if k == KindUndefined {
		return "undefined"
	}
	return string(k)
}
