package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mattsolo1/grove-notion/pkg/tree"
)

var (
	labelStyle   = lipgloss.NewStyle().Bold(true)
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	idStyle      = lipgloss.NewStyle().Faint(true)
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	branchStyle  = lipgloss.NewStyle().Faint(true)

	kindCaser = cases.Title(language.English)
)

// kindLabel renders "checkbox" as "Checkbox" and unknown kinds with their
// raw name, e.g. "Undefined (bulleted_list_item)".
func kindLabel(n tree.Node) string {
	label := kindCaser.String(n.Kind().String())
	if n.Kind() == tree.KindUndefined && n.ObjectKind() != "" {
		label += " (" + n.ObjectKind() + ")"
	}
	return label
}

// describe renders one node on a single line.
func describe(n tree.Node, showIDs bool) string {
	var parts []string
	if cb, ok := n.(tree.CheckableView); ok {
		box := "[ ]"
		if cb.Checked() {
			box = checkedStyle.Render("[x]")
		}
		parts = append(parts, box)
	}
	if label := tree.Label(n); label != "" {
		parts = append(parts, labelStyle.Render(label))
	}
	parts = append(parts, kindStyle.Render(kindLabel(n)))
	if showIDs {
		parts = append(parts, idStyle.Render(n.ID()))
	}
	return strings.Join(parts, " ")
}

// renderTree writes root and its descendants with box-drawing branches.
func renderTree(w io.Writer, root tree.Node, showIDs bool) {
	fmt.Fprintln(w, describe(root, showIDs))
	renderChildren(w, root, "", showIDs)
}

func renderChildren(w io.Writer, n tree.Node, prefix string, showIDs bool) {
	children := n.Children()
	for i, c := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		fmt.Fprintln(w, branchStyle.Render(prefix+branch)+describe(c, showIDs))
		renderChildren(w, c, prefix+indent, showIDs)
	}
}
