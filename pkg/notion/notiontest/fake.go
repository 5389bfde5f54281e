// Package notiontest provides an in-memory notion.Transport for tests.
package notiontest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattsolo1/grove-notion/pkg/notion"
)

// ErrNotFound is returned for ids the fake does not know.
var ErrNotFound = errors.New("object not found")

// Update records one UpdateObject call.
type Update struct {
	Endpoint notion.Endpoint
	ID       string
	Patch    notion.Object
}

// Fake is a scripted Transport. The zero value is not usable; call New.
type Fake struct {
	mu sync.Mutex

	objects   map[string]notion.Object
	sequences map[string][]notion.Object
	children  map[string][][]notion.Object
	failures  map[string]error
	results   []notion.Object

	// UpdateFunc overrides the default update behaviour when set.
	UpdateFunc func(endpoint notion.Endpoint, id string, patch notion.Object) (notion.Object, error)

	updates []Update
	calls   []string
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		objects:   make(map[string]notion.Object),
		sequences: make(map[string][]notion.Object),
		children:  make(map[string][][]notion.Object),
		failures:  make(map[string]error),
	}
}

func key(endpoint notion.Endpoint, id string) string {
	return string(endpoint) + "/" + id
}

// Put registers obj under endpoint/id.
func (f *Fake) Put(endpoint notion.Endpoint, obj notion.Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key(endpoint, obj.ID())] = obj
}

// Sequence scripts successive RetrieveObject answers for endpoint/id. Once the
// sequence is exhausted the last snapshot keeps being returned.
func (f *Fake) Sequence(endpoint notion.Endpoint, id string, snapshots ...notion.Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sequences[key(endpoint, id)] = snapshots
}

// SetChildren registers the children listing of parentID, split into pages of
// the given sizes. With no sizes everything is returned in one page.
func (f *Fake) SetChildren(parentID string, children []notion.Object, pageSizes ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(pageSizes) == 0 {
		f.children[parentID] = [][]notion.Object{children}
		return
	}
	var pages [][]notion.Object
	rest := children
	for _, n := range pageSizes {
		if n > len(rest) {
			n = len(rest)
		}
		pages = append(pages, rest[:n])
		rest = rest[n:]
	}
	if len(rest) > 0 {
		pages = append(pages, rest)
	}
	f.children[parentID] = pages
}

// SetSearchResults sets what Search returns.
func (f *Fake) SetSearchResults(results ...notion.Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = results
}

// Fail makes an operation fail. op is one of "retrieve", "list", "update" or
// "search"; target is "endpoint/id" for retrieve/update, the parent id for
// list, and ignored for search.
func (f *Fake) Fail(op, target string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op+":"+target] = err
}

// Updates returns every recorded UpdateObject call.
func (f *Fake) Updates() []Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Update(nil), f.updates...)
}

// Calls returns a log of every call made, e.g. "retrieve blocks/abc".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CountCalls returns how many recorded calls start with prefix.
func (f *Fake) CountCalls(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// RetrieveObject implements notion.Transport.
func (f *Fake) RetrieveObject(ctx context.Context, endpoint notion.Endpoint, id string) (notion.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(endpoint, id)
	f.calls = append(f.calls, "retrieve "+k)
	if err := f.failures["retrieve:"+k]; err != nil {
		return nil, &notion.RetrievalError{Endpoint: endpoint, ID: id, Err: err}
	}
	if seq := f.sequences[k]; len(seq) > 0 {
		obj := seq[0]
		if len(seq) > 1 {
			f.sequences[k] = seq[1:]
		}
		if obj == nil {
			return nil, &notion.RetrievalError{Endpoint: endpoint, ID: id, Err: notion.ErrAbsent}
		}
		return obj.Clone(), nil
	}
	obj, ok := f.objects[k]
	if !ok {
		return nil, &notion.RetrievalError{Endpoint: endpoint, ID: id, Err: ErrNotFound}
	}
	return obj.Clone(), nil
}

// ListChildren implements notion.Transport. Cursors have the form "page-N".
func (f *Fake) ListChildren(ctx context.Context, endpoint notion.Endpoint, id, cursor string) (*notion.ChildrenPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("list %s/%s %s", endpoint, id, cursor))
	if err := f.failures["list:"+id]; err != nil {
		return nil, &notion.ContentError{Endpoint: endpoint, ID: id, Cursor: cursor, Err: err}
	}
	pages := f.children[id]
	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(cursor, "page-"))
		if err != nil || n >= len(pages) {
			return nil, &notion.ContentError{Endpoint: endpoint, ID: id, Cursor: cursor, Err: fmt.Errorf("bad cursor")}
		}
		idx = n
	}
	page := &notion.ChildrenPage{}
	if idx < len(pages) {
		for _, obj := range pages[idx] {
			page.Results = append(page.Results, obj.Clone())
		}
	}
	if idx+1 < len(pages) {
		page.NextCursor = fmt.Sprintf("page-%d", idx+1)
		page.HasMore = true
	}
	return page, nil
}

// UpdateObject implements notion.Transport. By default the patch is merged
// into the stored object, last_edited_time advances by a minute and the
// merged object is returned.
func (f *Fake) UpdateObject(ctx context.Context, endpoint notion.Endpoint, id string, patch notion.Object) (notion.Object, error) {
	f.mu.Lock()
	k := key(endpoint, id)
	f.calls = append(f.calls, "update "+k)
	f.updates = append(f.updates, Update{Endpoint: endpoint, ID: id, Patch: patch.Clone()})
	if err := f.failures["update:"+k]; err != nil {
		f.mu.Unlock()
		return nil, &notion.UpdateError{Endpoint: endpoint, ID: id, Err: err}
	}
	if f.UpdateFunc != nil {
		fn := f.UpdateFunc
		f.mu.Unlock()
		return fn(endpoint, id, patch.Clone())
	}
	defer f.mu.Unlock()

	obj := f.objects[k].Clone()
	if obj == nil {
		obj = notion.Object{"id": id}
	}
	for name, v := range patch.Clone() {
		obj[name] = v
	}
	edited := obj.Time("last_edited_time")
	if edited.IsZero() {
		edited = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	obj["last_edited_time"] = edited.Add(time.Minute).Format(time.RFC3339)
	f.objects[k] = obj
	return obj.Clone(), nil
}

// Search implements notion.Transport.
func (f *Fake) Search(ctx context.Context, query string) ([]notion.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "search "+query)
	if err := f.failures["search:"]; err != nil {
		return nil, err
	}
	out := make([]notion.Object, 0, len(f.results))
	for _, r := range f.results {
		out = append(out, r.Clone())
	}
	return out, nil
}

var _ notion.Transport = (*Fake)(nil)
