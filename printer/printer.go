// Package printer turns a syntax tree back into source code.
//
// The printer does not format anything. Leaves print their original token
// preceded by the whitespace and comments that came before it in its token
// stream, so printing an unedited tree reproduces its input exactly. Nodes
// that replaced other nodes suppress the original tokens they stand for,
// and fragments grafted into the tree print from their own token streams.
package printer

import (
	"bytes"
	"io"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/token"
)

// Option is a configuration function for a Printer.
type Option func(*Printer)

// WithDirectiveNewlines controls whether the printer inserts line breaks so
// that preprocessor directives always sit on their own line. It is enabled
// by default.
func WithDirectiveNewlines(enabled bool) Option {
	return func(p *Printer) {
		p.directiveNewlines = enabled
	}
}

// Printer holds the settings for printing trees. A Printer may be reused for
// any number of trees.
type Printer struct {
	directiveNewlines bool
}

// New returns a Printer with the given options.
func New(options ...Option) *Printer {
	p := &Printer{directiveNewlines: true}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Print returns the source code of the tree.
func (p *Printer) Print(tree *ast.Tree) string {
	var buf bytes.Buffer
	p.print(&buf, tree)
	return buf.String()
}

// Fprint writes the source code of the tree to w.
func (p *Printer) Fprint(w io.Writer, tree *ast.Tree) error {
	var buf bytes.Buffer
	p.print(&buf, tree)
	_, err := buf.WriteTo(w)
	return err
}

// Print returns the source code of the tree using the default settings.
func Print(tree *ast.Tree) string {
	return New().Print(tree)
}

func (p *Printer) print(buf *bytes.Buffer, tree *ast.Tree) {
	if tree.Root() == ast.NoNode {
		return
	}
	s := &state{
		Printer: p,
		buf:     buf,
		tree:    tree,
		cursors: make([]int, len(tree.Streams())),
	}
	s.node(tree.Root(), true)
}

// state holds the progress of one print. Each token stream has a cursor:
// the index of the first token not yet printed or skipped.
type state struct {
	*Printer
	buf  *bytes.Buffer
	tree *ast.Tree

	cursors []int

	// set after a directive until the next text is written
	afterDirective bool
}

func (s *state) node(id ast.NodeID, isRoot bool) {
	if origin, ok := s.tree.Origin(id); ok {
		s.skip(origin)
	}
	kind := s.tree.Kind(id)
	if kind.IsLeaf() && s.tree.NumChildren(id) == 0 {
		s.leaf(id, kind)
	} else {
		for _, c := range s.tree.Children(id) {
			s.node(c, false)
		}
	}
	// the tree root owns the primary stream, a fragment root its own
	home, ok := s.tree.HomeStream(id)
	if isRoot && !ok {
		home, ok = 0, len(s.cursors) > 0
	}
	if ok {
		s.gap(home, s.tree.Stream(home).Len())
	}
}

func (s *state) leaf(id ast.NodeID, kind ast.Kind) {
	if kind == ast.Tombstone {
		return
	}
	stream, tok := s.tree.Leaf(id)
	if stream < 0 || tok < 0 {
		if kind.IsDirective() {
			s.directiveBreak()
		}
		s.write(s.tree.Text(id))
		s.afterDirective = kind.IsDirective()
		return
	}
	s.gap(stream, tok)
	t := s.tree.Stream(stream).At(tok)
	if kind.IsDirective() || token.IsDirective(t.Type) {
		s.directiveBreak()
		s.write(t.Literal)
		s.afterDirective = true
	} else {
		s.write(t.Literal)
	}
	s.cursors[stream] = max(s.cursors[stream], tok+1)
}

// skip drops the original tokens covered by span, keeping the hidden
// tokens before it.
func (s *state) skip(span ast.Span) {
	s.gap(span.Stream, span.First)
	s.cursors[span.Stream] = max(s.cursors[span.Stream], span.Last+1)
}

// gap writes the hidden tokens from the stream's cursor up to, not
// including, index end. Visible tokens in the gap were removed or moved and
// are not printed.
func (s *state) gap(stream, end int) {
	tokens := s.tree.Stream(stream).Tokens
	for i := s.cursors[stream]; i < end && i < len(tokens); i++ {
		if tokens[i].Hidden() {
			s.write(tokens[i].Literal)
		}
	}
	s.cursors[stream] = max(s.cursors[stream], end)
}

// directiveBreak starts a new line unless the current output line holds
// only whitespace.
func (s *state) directiveBreak() {
	if !s.directiveNewlines {
		return
	}
	b := s.buf.Bytes()
	if line := b[bytes.LastIndexByte(b, '\n')+1:]; len(bytes.TrimSpace(line)) > 0 {
		s.buf.WriteByte('\n')
	}
	s.afterDirective = false
}

func (s *state) write(text string) {
	if text == "" {
		return
	}
	if s.afterDirective && s.directiveNewlines && text[0] != '\n' && text[0] != '\r' {
		s.buf.WriteByte('\n')
	}
	s.afterDirective = false
	s.buf.WriteString(text)
}
