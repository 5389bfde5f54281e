package tree

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notion/pkg/notion"
)

// Node is one remote object in the local tree. Every variant embeds Block;
// optional capabilities are exposed through TitleView, TextView,
// CheckableView and CodeView.
type Node interface {
	ID() string
	ObjectKind() string
	Kind() SemanticKind
	Raw() notion.Object
	Children() []Node

	CreatedTime() time.Time
	LastEditedTime() time.Time
	SetCreatedTime(time.Time) error
	SetLastEditedTime(time.Time) error

	FetchProperties(ctx context.Context, t notion.Transport) (notion.Object, error)
	FetchContent(ctx context.Context, t notion.Transport) ([]notion.Object, error)
	AppendChild(children ...Node)
	AppendRaw(objects ...notion.Object)
	Update(patch map[string]any) error
	Flush(ctx context.Context, t notion.Transport, log logrus.FieldLogger) error

	core() *Block
}

// TitleView is implemented by pages and databases.
type TitleView interface {
	Node
	Title() string
	SetTitle(string)
}

// TextView is implemented by paragraph-like blocks and checkboxes.
type TextView interface {
	Node
	Text() string
	SetText(string)
}

// CheckableView is implemented by to-do blocks.
type CheckableView interface {
	TextView
	Checked() bool
	SetChecked(bool)
}

// CodeView is implemented by code blocks.
type CodeView interface {
	Node
	Language() string
	SetLanguage(string)
	Body() string
	SetBody(string)
	Decode(v any) error
	Encode(v any) error
}

// setter applies an Update value to a first-class field.
type setter func(v any) error

// Block is the core of every node and, on its own, the bare node used for
// kinds without a specialised view.
type Block struct {
	id         string
	objectKind string
	kind       SemanticKind
	raw        notion.Object
	children   []Node
	setters    map[string]setter
}

// protected fields are remote provenance, never client state.
var protectedFields = []string{"created_time", "last_edited_time"}

func newBlock(kind SemanticKind, raw notion.Object, id string) Block {
	b := Block{
		id:      id,
		kind:    kind,
		raw:     raw,
		setters: make(map[string]setter),
	}
	if raw != nil {
		b.objectKind = raw.Kind()
		if b.id == "" {
			b.id = raw.ID()
		}
	}
	nodeID := b.id
	for _, f := range protectedFields {
		field := f
		b.setters[field] = func(any) error {
			return &InvariantViolation{Field: field, ID: nodeID}
		}
	}
	return b
}

func (b *Block) core() *Block { return b }

func (b *Block) register(field string, fn setter) {
	b.setters[field] = fn
}

// ID returns the remote identifier.
func (b *Block) ID() string { return b.id }

// ObjectKind returns the raw kind the node was built from.
func (b *Block) ObjectKind() string { return b.objectKind }

// Kind returns the semantic kind.
func (b *Block) Kind() SemanticKind { return b.kind }

// Raw returns the last fetched payload. It may be nil for shell nodes.
func (b *Block) Raw() notion.Object { return b.raw }

// Children returns the resolved children in listing order.
func (b *Block) Children() []Node { return b.children }

// CreatedTime returns the remote creation timestamp.
func (b *Block) CreatedTime() time.Time { return b.raw.Time("created_time") }

// LastEditedTime returns the remote last edit timestamp.
func (b *Block) LastEditedTime() time.Time { return b.raw.Time("last_edited_time") }

// SetCreatedTime always fails: the field is controlled by the remote.
func (b *Block) SetCreatedTime(time.Time) error {
	return &InvariantViolation{Field: "created_time", ID: b.id}
}

// SetLastEditedTime always fails: the field is controlled by the remote.
func (b *Block) SetLastEditedTime(time.Time) error {
	return &InvariantViolation{Field: "last_edited_time", ID: b.id}
}

func (b *Block) endpoint() (notion.Endpoint, bool) {
	if ep, ok := b.kind.endpoint(); ok {
		return ep, true
	}
	return notion.EndpointForObject(b.raw.String("object"))
}

// FetchProperties retrieves the full object from the kind-specific endpoint.
func (b *Block) FetchProperties(ctx context.Context, t notion.Transport) (notion.Object, error) {
	ep, ok := b.endpoint()
	if !ok {
		return nil, &notion.RetrievalError{ID: b.id, Err: ErrNoEndpoint}
	}
	obj, err := t.RetrieveObject(ctx, ep, b.id)
	if err != nil {
		var re *notion.RetrievalError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &notion.RetrievalError{Endpoint: ep, ID: b.id, Err: err}
	}
	if obj == nil {
		return nil, &notion.RetrievalError{Endpoint: ep, ID: b.id, Err: notion.ErrAbsent}
	}
	return obj, nil
}

// FetchContent returns the complete, ordered list of immediate children by
// following cursors until the remote reports none. Kinds that cannot hold
// content return nil without calling the remote.
func (b *Block) FetchContent(ctx context.Context, t notion.Transport) ([]notion.Object, error) {
	if !b.kind.Capabilities().Content {
		return nil, nil
	}
	ep := notion.EndpointBlocks
	if b.kind == KindDatabase {
		ep = notion.EndpointDatabases
	}

	var children []notion.Object
	cursor := ""
	for {
		page, err := t.ListChildren(ctx, ep, b.id, cursor)
		if err != nil {
			var ce *notion.ContentError
			if errors.As(err, &ce) {
				return nil, err
			}
			return nil, &notion.ContentError{Endpoint: ep, ID: b.id, Cursor: cursor, Err: err}
		}
		if page == nil {
			break
		}
		children = append(children, page.Results...)
		if page.NextCursor == "" {
			break
		}
		if page.NextCursor == cursor {
			return nil, &notion.ContentError{Endpoint: ep, ID: b.id, Cursor: cursor, Err: fmt.Errorf("cursor did not advance")}
		}
		cursor = page.NextCursor
	}
	return children, nil
}

// AppendChild appends already resolved nodes.
func (b *Block) AppendChild(children ...Node) {
	for _, c := range children {
		if c != nil {
			b.children = append(b.children, c)
		}
	}
}

// AppendRaw wraps raw payloads and appends them. Payloads that cannot be
// dispatched are appended as bare blocks.
func (b *Block) AppendRaw(objects ...notion.Object) {
	for _, obj := range objects {
		n, err := New(obj)
		if err != nil {
			bare := newBlock(KindOf(obj), obj, "")
			n = &bare
		}
		b.children = append(b.children, n)
	}
}

// Update applies patch key by key in sorted order: keys with a first-class
// setter go through it, everything else is stored in the raw payload. The
// first failing setter stops the update and its error is returned.
func (b *Block) Update(patch map[string]any) error {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if set, ok := b.setters[k]; ok {
			if err := set(patch[k]); err != nil {
				return err
			}
			continue
		}
		if b.raw != nil {
			b.raw[k] = patch[k]
		}
	}
	return nil
}

// readOnly lists payload fields the remote rejects on update.
var readOnly = map[string]bool{
	"object":           true,
	"id":               true,
	"type":             true,
	"created_time":     true,
	"last_edited_time": true,
	"created_by":       true,
	"last_edited_by":   true,
	"has_children":     true,
	"parent":           true,
	"url":              true,
	"public_url":       true,
	"request_id":       true,
}

func (b *Block) writable() notion.Object {
	patch := notion.Object{}
	for k, v := range b.raw.Clone() {
		if !readOnly[k] {
			patch[k] = v
		}
	}
	return patch
}

// Flush pushes the raw payload to the remote. On success the payload is
// replaced by the remote's answer. Failures are logged and returned, and
// leave the node untouched.
func (b *Block) Flush(ctx context.Context, t notion.Transport, log logrus.FieldLogger) error {
	log = log.WithFields(logrus.Fields{"id": b.id, "kind": b.kind.String()})

	ep, ok := b.endpoint()
	if !ok || b.raw == nil {
		err := &notion.UpdateError{Endpoint: ep, ID: b.id, Err: ErrNoEndpoint}
		log.WithError(err).Error("Nothing to flush")
		return err
	}

	resp, err := t.UpdateObject(ctx, ep, b.id, b.writable())
	if err != nil {
		log.WithError(err).Error("Error while updating")
		var ue *notion.UpdateError
		if errors.As(err, &ue) {
			return err
		}
		return &notion.UpdateError{Endpoint: ep, ID: b.id, Err: err}
	}
	if resp == nil {
		err := &notion.UpdateError{Endpoint: ep, ID: b.id, Err: notion.ErrAbsent}
		log.WithError(err).Error("No response for update")
		return err
	}

	b.raw = resp
	log.Debug("Successfully updated")
	return nil
}

// asString converts an Update value for a string field.
func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &ValueError{Field: field, Value: v}
	}
	return s, nil
}

// typed returns the block's type-specific sub-object, e.g. raw["to_do"].
func (b *Block) typed() (notion.Object, bool) {
	return b.raw.Map(b.raw.String("type"))
}
