package tree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-notion/pkg/notion"
)

// New wraps a raw payload into the variant matching its own raw kind.
func New(raw notion.Object) (Node, error) {
	return Wrap(KindOf(raw), raw)
}

// Wrap builds the variant for kind around raw. The kind usually comes from
// the block envelope while raw is the full object fetched for it.
func Wrap(kind SemanticKind, raw notion.Object) (Node, error) {
	if raw == nil {
		return nil, &DispatchError{Kind: kind, Reason: "no payload"}
	}
	id := raw.ID()
	if id == "" {
		return nil, &DispatchError{Kind: kind, Reason: "payload has no id"}
	}
	object := raw.String("object")
	switch kind {
	case KindPage:
		if object != "" && object != "page" && raw.Kind() != "child_page" {
			return nil, &DispatchError{Kind: kind, ID: id, Reason: fmt.Sprintf("payload is a %s", object)}
		}
	case KindDatabase:
		if object != "" && object != "database" && raw.Kind() != "child_database" {
			return nil, &DispatchError{Kind: kind, ID: id, Reason: fmt.Sprintf("payload is a %s", object)}
		}
	}
	return wrap(kind, raw, id), nil
}

// Shell returns a node of the given kind with no payload yet. Its views read
// as empty and its setters do nothing until a payload is attached.
func Shell(kind SemanticKind, id string) Node {
	return wrap(kind, nil, id)
}

// Clone returns a deep copy of n's payload wrapped in the same variant. The
// children slice is copied, the child nodes are shared.
func Clone(n Node) Node {
	c := wrap(n.Kind(), n.Raw().Clone(), n.ID())
	c.core().children = append([]Node(nil), n.Children()...)
	return c
}

func wrap(kind SemanticKind, raw notion.Object, id string) Node {
	switch kind {
	case KindPage:
		return newPage(raw, id)
	case KindDatabase:
		return newDatabase(raw, id)
	case KindParagraph:
		return newParagraph(kind, raw, id)
	case KindCode:
		return newCode(raw, id)
	case KindCheckbox:
		return newCheckbox(raw, id)
	}
	b := newBlock(kind, raw, id)
	return &b
}

// Page is a page or child_page.
type Page struct {
	Block
}

func newPage(raw notion.Object, id string) *Page {
	p := &Page{Block: newBlock(KindPage, raw, id)}
	p.register("title", func(v any) error {
		s, err := asString("title", v)
		if err == nil {
			p.SetTitle(s)
		}
		return err
	})
	return p
}

// titleProperty locates the property holding the page title: the one named
// "title" or "Name", else the first property of type title.
func (p *Page) titleProperty() (notion.Object, bool) {
	props, ok := p.raw.Map("properties")
	if !ok {
		return nil, false
	}
	for _, name := range []string{"title", "Name"} {
		if prop, ok := props.Map(name); ok {
			if _, ok := prop.Slice("title"); ok {
				return prop, true
			}
		}
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if prop, ok := props.Map(name); ok && prop.String("type") == "title" {
			return prop, true
		}
	}
	return nil, false
}

// Title returns the page title.
func (p *Page) Title() string {
	if prop, ok := p.titleProperty(); ok {
		runs, _ := prop.Slice("title")
		return plainText(runs, false)
	}
	if env, ok := p.raw.Map("child_page"); ok {
		return env.String("title")
	}
	return ""
}

// SetTitle replaces the page title locally.
func (p *Page) SetTitle(v string) {
	if prop, ok := p.titleProperty(); ok {
		prop["title"] = textRuns(v)
		return
	}
	if env, ok := p.raw.Map("child_page"); ok {
		env["title"] = v
	}
}

// Database is a database or child_database.
type Database struct {
	Block
}

func newDatabase(raw notion.Object, id string) *Database {
	d := &Database{Block: newBlock(KindDatabase, raw, id)}
	d.register("title", func(v any) error {
		s, err := asString("title", v)
		if err == nil {
			d.SetTitle(s)
		}
		return err
	})
	return d
}

// Title returns the database title.
func (d *Database) Title() string {
	if runs, ok := d.raw.Slice("title"); ok {
		return plainText(runs, false)
	}
	if env, ok := d.raw.Map("child_database"); ok {
		return env.String("title")
	}
	return ""
}

// SetTitle replaces the database title locally.
func (d *Database) SetTitle(v string) {
	if _, ok := d.raw.Slice("title"); ok {
		d.raw["title"] = textRuns(v)
		return
	}
	if env, ok := d.raw.Map("child_database"); ok {
		env["title"] = v
	}
}

// Paragraph is a paragraph-like block: paragraphs and headings.
type Paragraph struct {
	Block
}

func newParagraph(kind SemanticKind, raw notion.Object, id string) *Paragraph {
	t := &Paragraph{Block: newBlock(kind, raw, id)}
	t.registerText()
	return t
}

func (t *Paragraph) registerText() {
	t.register("text", func(v any) error {
		s, err := asString("text", v)
		if err == nil {
			t.SetText(s)
		}
		return err
	})
}

// Text returns the concatenated plain text of the block's text runs.
func (t *Paragraph) Text() string {
	sub, ok := t.typed()
	if !ok {
		return ""
	}
	runs, _ := sub.Slice(richTextKey(sub))
	return plainText(runs, true)
}

// SetText replaces the block's rich text with a single plain run.
func (t *Paragraph) SetText(v string) {
	sub, ok := t.typed()
	if !ok {
		return
	}
	sub[richTextKey(sub)] = textRuns(v)
}

// Checkbox is a to_do block.
type Checkbox struct {
	Paragraph
}

func newCheckbox(raw notion.Object, id string) *Checkbox {
	c := &Checkbox{Paragraph: Paragraph{Block: newBlock(KindCheckbox, raw, id)}}
	c.registerText()
	c.register("checked", func(v any) error {
		b, ok := v.(bool)
		if !ok {
			return &ValueError{Field: "checked", Value: v}
		}
		c.SetChecked(b)
		return nil
	})
	return c
}

// Checked reports the to-do state.
func (c *Checkbox) Checked() bool {
	sub, ok := c.raw.Map("to_do")
	if !ok {
		return false
	}
	checked, _ := sub["checked"].(bool)
	return checked
}

// SetChecked sets the to-do state locally.
func (c *Checkbox) SetChecked(v bool) {
	if sub, ok := c.raw.Map("to_do"); ok {
		sub["checked"] = v
	}
}

// Code is a code block.
type Code struct {
	Block
}

func newCode(raw notion.Object, id string) *Code {
	c := &Code{Block: newBlock(KindCode, raw, id)}
	c.register("language", func(v any) error {
		s, err := asString("language", v)
		if err == nil {
			c.SetLanguage(s)
		}
		return err
	})
	c.register("body", func(v any) error {
		s, err := asString("body", v)
		if err == nil {
			c.SetBody(s)
		}
		return err
	})
	return c
}

// Language returns the code block's language.
func (c *Code) Language() string {
	sub, ok := c.raw.Map("code")
	if !ok {
		return ""
	}
	return sub.String("language")
}

// SetLanguage sets the code block's language locally.
func (c *Code) SetLanguage(v string) {
	if sub, ok := c.raw.Map("code"); ok {
		sub["language"] = v
	}
}

// Body returns the code as plain text.
func (c *Code) Body() string {
	sub, ok := c.raw.Map("code")
	if !ok {
		return ""
	}
	runs, _ := sub.Slice(richTextKey(sub))
	return plainText(runs, false)
}

// SetBody replaces the code text locally.
func (c *Code) SetBody(v string) {
	if sub, ok := c.raw.Map("code"); ok {
		sub[richTextKey(sub)] = textRuns(v)
	}
}

// Decode parses a YAML or JSON body and decodes it into v, which follows
// mapstructure rules (struct tags `mapstructure:"name"`, weak typing).
func (c *Code) Decode(v any) error {
	var generic any
	switch lang := strings.ToLower(c.Language()); lang {
	case "yaml":
		if err := yaml.Unmarshal([]byte(c.Body()), &generic); err != nil {
			return fmt.Errorf("parse yaml body of %s: %w", c.id, err)
		}
	case "json":
		if err := json.Unmarshal([]byte(c.Body()), &generic); err != nil {
			return fmt.Errorf("parse json body of %s: %w", c.id, err)
		}
	default:
		return fmt.Errorf("code block %s: unsupported language %q", c.id, lang)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(generic); err != nil {
		return fmt.Errorf("decode body of %s: %w", c.id, err)
	}
	return nil
}

// Encode serialises v in the block's language and stores it as the body.
func (c *Code) Encode(v any) error {
	var data []byte
	var err error
	switch lang := strings.ToLower(c.Language()); lang {
	case "yaml":
		data, err = yaml.Marshal(v)
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
	default:
		return fmt.Errorf("code block %s: unsupported language %q", c.id, lang)
	}
	if err != nil {
		return fmt.Errorf("encode body of %s: %w", c.id, err)
	}
	c.SetBody(string(data))
	return nil
}

var (
	_ TitleView     = (*Page)(nil)
	_ TitleView     = (*Database)(nil)
	_ TextView      = (*Paragraph)(nil)
	_ CheckableView = (*Checkbox)(nil)
	_ CodeView      = (*Code)(nil)
)
