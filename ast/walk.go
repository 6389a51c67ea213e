package ast

import (
	"iter"

	"github.com/cloudcmds/glslx/token"
)

// Inspect traverses the subtree rooted at id in depth-first order. It calls
// f(id) for each node; if f returns false, the children of that node are
// skipped.
func (t *Tree) Inspect(id NodeID, f func(NodeID) bool) {
	if !f(id) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.Inspect(c, f)
	}
}

// Preorder returns an iterator over the subtree rooted at id in depth-first
// preorder. The tree must not be edited while iterating.
func (t *Tree) Preorder(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		var visit func(NodeID) bool
		visit = func(n NodeID) bool {
			if !yield(n) {
				return false
			}
			for _, c := range t.nodes[n].children {
				if !visit(c) {
					return false
				}
			}
			return true
		}
		if id != NoNode {
			visit(id)
		}
	}
}

// Leaves returns an iterator over the leaves below id, in order.
func (t *Tree) Leaves(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for n := range t.Preorder(id) {
			if len(t.nodes[n].children) == 0 && t.nodes[n].kind.IsLeaf() {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// FindAll returns the nodes below id, id included, with the given kind.
func (t *Tree) FindAll(id NodeID, kind Kind) []NodeID {
	var found []NodeID
	for n := range t.Preorder(id) {
		if t.nodes[n].kind == kind {
			found = append(found, n)
		}
	}
	return found
}

// FirstToken returns the first token below id together with the stream that
// holds it. The last result is false when no leaf below id has a token.
func (t *Tree) FirstToken(id NodeID) (token.Token, *token.Stream, bool) {
	for leaf := range t.Leaves(id) {
		if tok, ok := t.Token(leaf); ok {
			return tok, t.streams[t.nodes[leaf].stream], true
		}
	}
	return token.Token{}, nil, false
}
