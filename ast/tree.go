// Package ast defines the syntax tree of a shader.
//
// All nodes of a tree live in one arena and are addressed by NodeID. Parent
// and child links are indexes into the arena, so edits rewrite a handful of
// integers instead of re-parenting object graphs. Leaves refer to exactly one
// token of one of the tree's token streams; inner nodes own no tokens. A
// fragment parsed separately is added to a tree with Graft, which appends its
// arena and its token stream.
package ast

import (
	"fmt"

	"github.com/cloudcmds/glslx/token"
)

// NodeID addresses a node within a Tree.
type NodeID int32

// NoNode is the zero value for absent node references.
const NoNode NodeID = -1

// Span is an inclusive range of token indexes within one stream.
type Span struct {
	Stream int
	First  int
	Last   int
}

// NoSpan is a span that covers nothing.
var NoSpan = Span{Stream: -1, First: -1, Last: -1}

// Valid reports whether the span covers at least one token.
func (s Span) Valid() bool {
	return s.Stream >= 0 && s.First >= 0 && s.Last >= s.First
}

type node struct {
	kind     Kind
	parent   NodeID
	children []NodeID
	stream   int
	tok      int
	text     string
	origin   Span
	local    bool
	home     int
}

// Observer is notified of structural changes to a tree. The walk runtime
// uses it to keep its position valid while phases edit the tree.
type Observer interface {
	ChildInserted(parent NodeID, index int)
	ChildReplaced(parent NodeID, index int, old, new NodeID)
}

// Tree is a mutable, ordered, parent-linked syntax tree.
type Tree struct {
	nodes     []node
	streams   []*token.Stream
	root      NodeID
	observers []Observer
}

// New returns an empty tree whose primary token stream is the given one.
func New(stream *token.Stream) *Tree {
	t := &Tree{root: NoNode}
	if stream != nil {
		t.streams = append(t.streams, stream)
	}
	return t
}

// Root returns the root node of the tree.
func (t *Tree) Root() NodeID {
	return t.root
}

// SetRoot sets the root node of the tree.
func (t *Tree) SetRoot(id NodeID) {
	t.root = id
}

// Len returns the number of nodes in the arena, including detached ones.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Streams returns the token streams of the tree. Stream 0 is the stream the
// tree was parsed from; grafted fragments add one stream each.
func (t *Tree) Streams() []*token.Stream {
	return t.streams
}

// Stream returns the token stream with the given index.
func (t *Tree) Stream(i int) *token.Stream {
	return t.streams[i]
}

// AddNode appends an inner node with the given children to the arena.
func (t *Tree) AddNode(kind Kind, children ...NodeID) NodeID {
	id := t.push(node{kind: kind, stream: -1, tok: -1})
	for _, c := range children {
		if c == NoNode {
			continue
		}
		t.nodes[c].parent = id
		t.nodes[id].children = append(t.nodes[id].children, c)
	}
	return id
}

// AddLeaf appends a leaf referring to token tok of the given stream.
func (t *Tree) AddLeaf(kind Kind, stream, tok int) NodeID {
	return t.push(node{kind: kind, stream: stream, tok: tok})
}

// AppendChild adds child as the last child of parent while building a
// tree. Observers are not notified.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.nodes[child].parent = parent
	t.nodes[parent].children = append(t.nodes[parent].children, child)
}

// NewTombstone returns a detached leaf that prints nothing. It fills the
// slot of a removed node.
func (t *Tree) NewTombstone() NodeID {
	return t.push(node{kind: Tombstone, stream: -1, tok: -1})
}

// NewSynthetic returns a detached leaf of the given kind that prints text
// verbatim instead of a token.
func (t *Tree) NewSynthetic(kind Kind, text string) NodeID {
	return t.push(node{kind: kind, stream: -1, tok: -1, text: text})
}

func (t *Tree) push(n node) NodeID {
	n.parent = NoNode
	n.origin = NoSpan
	n.home = -1
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Valid reports whether id addresses a node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Kind returns the kind of a node.
func (t *Tree) Kind(id NodeID) Kind {
	return t.nodes[id].kind
}

// Parent returns the parent of a node, or NoNode for the root and detached
// nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns the children of a node. The slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// NumChildren returns the number of children of a node.
func (t *Tree) NumChildren(id NodeID) int {
	return len(t.nodes[id].children)
}

// Child returns the i-th child of a node, or NoNode if out of range.
func (t *Tree) Child(id NodeID, i int) NodeID {
	children := t.nodes[id].children
	if i < 0 || i >= len(children) {
		return NoNode
	}
	return children[i]
}

// ChildIndex returns the index of child within parent, or -1.
func (t *Tree) ChildIndex(parent, child NodeID) int {
	for i, c := range t.nodes[parent].children {
		if c == child {
			return i
		}
	}
	return -1
}

// FirstChild returns the first child of id with one of the given kinds.
func (t *Tree) FirstChild(id NodeID, kinds ...Kind) NodeID {
	for _, c := range t.nodes[id].children {
		for _, k := range kinds {
			if t.nodes[c].kind == k {
				return c
			}
		}
	}
	return NoNode
}

// Token returns the token of a leaf. The second result is false for inner
// nodes and for leaves without a token.
func (t *Tree) Token(id NodeID) (token.Token, bool) {
	n := &t.nodes[id]
	if n.stream < 0 || n.tok < 0 {
		return token.Token{}, false
	}
	return t.streams[n.stream].Tokens[n.tok], true
}

// Leaf returns the stream and token index of a leaf, or -1, -1.
func (t *Tree) Leaf(id NodeID) (stream, tok int) {
	n := &t.nodes[id]
	return n.stream, n.tok
}

// Origin returns the span of original tokens a replacement node stands in
// for. The printer skips that span.
func (t *Tree) Origin(id NodeID) (Span, bool) {
	o := t.nodes[id].origin
	return o, o.Valid()
}

// IsLocalRoot reports whether id is the root of a grafted fragment.
func (t *Tree) IsLocalRoot(id NodeID) bool {
	return t.nodes[id].local
}

// SetLocalRoot marks id as a local root.
func (t *Tree) SetLocalRoot(id NodeID, local bool) {
	t.nodes[id].local = local
}

// HomeStream returns the index of the token stream that a grafted fragment
// was parsed from. The last result is false if id is not the root of a
// grafted fragment.
func (t *Tree) HomeStream(id NodeID) (int, bool) {
	home := t.nodes[id].home
	return home, t.nodes[id].local && home >= 0
}

// Ancestor returns the closest proper ancestor of id with one of the given
// kinds, or with any kind if none are given. The search does not go past a
// local root.
func (t *Tree) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for cur := id; cur != NoNode && !t.nodes[cur].local; {
		cur = t.nodes[cur].parent
		if cur == NoNode {
			break
		}
		if len(kinds) == 0 {
			return cur
		}
		for _, k := range kinds {
			if t.nodes[cur].kind == k {
				return cur
			}
		}
	}
	return NoNode
}

// LocalRoot returns the local root enclosing id, or the tree root if id is
// not inside a grafted fragment.
func (t *Tree) LocalRoot(id NodeID) NodeID {
	cur := id
	for !t.nodes[cur].local && t.nodes[cur].parent != NoNode {
		cur = t.nodes[cur].parent
	}
	return cur
}

// Attached reports whether id is reachable from the tree root.
func (t *Tree) Attached(id NodeID) bool {
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		if cur == t.root {
			return true
		}
	}
	return false
}

// Span returns the token span of the leaves below id that share the stream
// of its first leaf.
func (t *Tree) Span(id NodeID) Span {
	span := NoSpan
	t.collectSpan(id, &span, false)
	return span
}

// coverage is like Span but also includes the origins of replacement nodes,
// so it covers every original token the subtree stands for.
func (t *Tree) coverage(id NodeID) Span {
	span := NoSpan
	t.collectSpan(id, &span, true)
	return span
}

func (t *Tree) collectSpan(id NodeID, span *Span, origins bool) {
	n := &t.nodes[id]
	if origins && n.origin.Valid() {
		mergeSpan(span, n.origin)
	}
	if n.stream >= 0 && n.tok >= 0 {
		mergeSpan(span, Span{Stream: n.stream, First: n.tok, Last: n.tok})
	}
	for _, c := range n.children {
		t.collectSpan(c, span, origins)
	}
}

func mergeSpan(span *Span, s Span) {
	if !span.Valid() {
		*span = s
		return
	}
	if s.Stream != span.Stream {
		return
	}
	span.First = min(span.First, s.First)
	span.Last = max(span.Last, s.Last)
}

// Text returns the source text of a node. Leaves return their token literal
// or synthetic text. Inner nodes join their leaves, keeping the original
// hidden tokens between leaves that were adjacent in the source and using a
// single space otherwise.
func (t *Tree) Text(id NodeID) string {
	var out []byte
	prevStream, prevTok := -1, -1
	for leaf := range t.Leaves(id) {
		n := &t.nodes[leaf]
		var text string
		if n.stream >= 0 && n.tok >= 0 {
			stream := t.streams[n.stream]
			tok := stream.Tokens[n.tok]
			text = tok.Literal
			if len(out) > 0 {
				if n.stream == prevStream && n.tok > prevTok && hiddenBetween(stream, prevTok, n.tok) {
					out = append(out, stream.Text(prevTok+1, n.tok-1)...)
				} else {
					out = append(out, ' ')
				}
			}
			prevStream, prevTok = n.stream, n.tok
		} else {
			text = n.text
			if text == "" {
				continue
			}
			if len(out) > 0 {
				out = append(out, ' ')
			}
			prevStream, prevTok = -1, -1
		}
		out = append(out, text...)
	}
	return string(out)
}

func hiddenBetween(s *token.Stream, from, to int) bool {
	for i := from + 1; i < to; i++ {
		if !s.Tokens[i].Hidden() {
			return false
		}
	}
	return true
}

// Observe registers an observer and returns a function that removes it.
func (t *Tree) Observe(o Observer) func() {
	t.observers = append(t.observers, o)
	return func() {
		for i, existing := range t.observers {
			if existing == o {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Insert places the detached node child at index within parent's children.
func (t *Tree) Insert(parent NodeID, index int, child NodeID) error {
	if err := t.checkDetached(child); err != nil {
		return err
	}
	p := &t.nodes[parent]
	if index < 0 || index > len(p.children) {
		return fmt.Errorf("insert index %d out of range [0, %d]", index, len(p.children))
	}
	p.children = append(p.children, NoNode)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = child
	t.nodes[child].parent = parent
	for _, o := range t.observers {
		o.ChildInserted(parent, index)
	}
	return nil
}

// Replace puts the detached node new into the slot of old. The old node is
// detached and the new node records the original tokens old covered, so the
// printer omits them.
func (t *Tree) Replace(old, new NodeID) error {
	if old == t.root {
		return fmt.Errorf("the root node cannot be replaced")
	}
	parent := t.nodes[old].parent
	if parent == NoNode {
		return fmt.Errorf("node %d is detached and cannot be replaced", old)
	}
	if err := t.checkDetached(new); err != nil {
		return err
	}
	index := t.ChildIndex(parent, old)
	if index < 0 {
		return fmt.Errorf("node %d not found in its parent", old)
	}
	if cov := t.coverage(old); cov.Valid() {
		t.nodes[new].origin = cov
	}
	t.nodes[parent].children[index] = new
	t.nodes[new].parent = parent
	t.nodes[old].parent = NoNode
	for _, o := range t.observers {
		o.ChildReplaced(parent, index, old, new)
	}
	return nil
}

func (t *Tree) checkDetached(id NodeID) error {
	if !t.Valid(id) {
		return fmt.Errorf("invalid node %d", id)
	}
	if id == t.root {
		return fmt.Errorf("the root node cannot be inserted")
	}
	if t.nodes[id].parent != NoNode {
		return fmt.Errorf("node %d already has a parent", id)
	}
	return nil
}

// Graft adds the nodes and token streams of a separately parsed fragment to
// this tree. It returns the fragment's root, detached and marked as a local
// root. The fragment tree must not be used afterwards.
func (t *Tree) Graft(frag *Tree) (NodeID, error) {
	if frag.root == NoNode {
		return NoNode, fmt.Errorf("fragment has no root")
	}
	nodeOffset := NodeID(len(t.nodes))
	streamOffset := len(t.streams)
	for _, n := range frag.nodes {
		if n.parent != NoNode {
			n.parent += nodeOffset
		}
		if len(n.children) > 0 {
			children := make([]NodeID, len(n.children))
			for i, c := range n.children {
				children[i] = c + nodeOffset
			}
			n.children = children
		}
		if n.stream >= 0 {
			n.stream += streamOffset
		}
		if n.origin.Valid() {
			n.origin.Stream += streamOffset
		}
		if n.home >= 0 {
			n.home += streamOffset
		}
		t.nodes = append(t.nodes, n)
	}
	t.streams = append(t.streams, frag.streams...)
	root := frag.root + nodeOffset
	t.nodes[root].parent = NoNode
	t.nodes[root].local = true
	t.nodes[root].home = streamOffset
	return root, nil
}
