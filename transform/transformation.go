package transform

import "github.com/cloudcmds/glslx/errors"

// SetupFunc builds the graph of a conditional transformation for the given
// job parameters. It runs at most once per planning pass.
type SetupFunc func(params JobParameters, g *Graph) error

// Transformation is a named, ordered group of phases and nested
// transformations. The ordering methods of its static graph are promoted,
// so items are added with t.ChainDependent(p) and the like.
//
// A transformation either has a static graph, fixed when it is built, or a
// setup function that fills a fresh graph each time a plan is built. If the
// static graph holds any item the setup function is never called.
type Transformation struct {
	*Graph
	name  string
	setup SetupFunc
}

// NewTransformation returns a transformation whose given items run
// concurrently. The last item becomes the tail, so ChainDependency adds
// items that run before it.
func NewTransformation(name string, items ...Item) *Transformation {
	t := &Transformation{name: name}
	t.Graph = newGraph(t)
	for _, item := range items {
		t.AddEndDependency(item)
	}
	return t
}

// NewConditional returns a transformation whose graph is built by setup for
// the parameters of each plan.
func NewConditional(name string, setup SetupFunc) *Transformation {
	t := NewTransformation(name)
	t.setup = setup
	return t
}

// Name returns the name of the transformation.
func (t *Transformation) Name() string {
	return t.name
}

func (t *Transformation) isItem() {}

// Static reports whether the transformation uses its static graph.
func (t *Transformation) Static() bool {
	return t.Graph.Len() > 0
}

// Conditional reports whether the transformation builds its graph per plan.
func (t *Transformation) Conditional() bool {
	return !t.Static() && t.setup != nil
}

// Err returns the first error recorded while building the static graph, or
// an error if the transformation is unnamed.
func (t *Transformation) Err() error {
	if t.name == "" {
		return errors.Configurationf(errors.E3006, "transformation has no name")
	}
	return t.Graph.Err()
}

func (t *Transformation) String() string {
	return t.name
}
