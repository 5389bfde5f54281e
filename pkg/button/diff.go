package button

import "github.com/mattsolo1/grove-notion/pkg/tree"

// state holds the fields of a checkbox snapshot that count as a change.
// Everything else in the payload (request ids, user objects) is noise.
type state struct {
	edited   string
	checked  bool
	text     string
	archived bool
	inTrash  bool
}

func stateOf(c *tree.Checkbox) state {
	raw := c.Raw()
	archived, _ := raw["archived"].(bool)
	inTrash, _ := raw["in_trash"].(bool)
	return state{
		edited:   raw.String("last_edited_time"),
		checked:  c.Checked(),
		text:     c.Text(),
		archived: archived,
		inTrash:  inTrash,
	}
}

// delta marks which fields differ between two states.
type delta struct {
	edited  bool
	checked bool
	other   bool
}

func diff(old, cur state) delta {
	return delta{
		edited:  old.edited != cur.edited,
		checked: old.checked != cur.checked,
		other:   old.text != cur.text || old.archived != cur.archived || old.inTrash != cur.inTrash,
	}
}

func (d delta) any() bool {
	return d.edited || d.checked || d.other
}
