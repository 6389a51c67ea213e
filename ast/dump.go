package ast

import (
	"fmt"
	"strings"
)

// Exported is a plain representation of a subtree, suitable for JSON
// encoding.
type Exported struct {
	ID        NodeID      `json:"id"`
	Kind      string      `json:"kind"`
	Text      string      `json:"text,omitempty"`
	LocalRoot bool        `json:"local_root,omitempty"`
	Children  []*Exported `json:"children,omitempty"`
}

// Export converts the subtree rooted at id.
func (t *Tree) Export(id NodeID) *Exported {
	e := &Exported{
		ID:        id,
		Kind:      t.Kind(id).String(),
		LocalRoot: t.IsLocalRoot(id),
	}
	if t.Kind(id).IsLeaf() {
		e.Text = t.Text(id)
	}
	for _, c := range t.Children(id) {
		e.Children = append(e.Children, t.Export(c))
	}
	return e
}

// Dump returns an indented, human readable listing of the subtree rooted
// at id.
func (t *Tree) Dump(id NodeID) string {
	var b strings.Builder
	t.dump(&b, id, 0)
	return b.String()
}

func (t *Tree) dump(b *strings.Builder, id NodeID, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(t.Kind(id).String())
	if t.Kind(id).IsLeaf() {
		if text := t.Text(id); text != "" {
			fmt.Fprintf(b, " %q", text)
		}
	}
	if t.IsLocalRoot(id) {
		b.WriteString(" (local root)")
	}
	b.WriteString("\n")
	for _, c := range t.Children(id) {
		t.dump(b, c, depth+1)
	}
}
