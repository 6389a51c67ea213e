package transform

import (
	"fmt"
	"strings"

	"github.com/cloudcmds/glslx/errors"
)

// Item is something that can be ordered within a Graph: a *Transformation,
// a *Phase, or one of the sentinels Root and End.
type Item interface {
	Name() string
	isItem()
}

type sentinel string

func (s sentinel) Name() string { return string(s) }

func (sentinel) isItem() {}

// Root and End stand for the start and the end of the graph they are used
// in. Root runs before every other item of its graph and End after every
// other item. Root never has dependencies and End never has dependents.
var (
	Root Item = sentinel("root")
	End  Item = sentinel("end")
)

// node is one item of a graph with its ordered dependency and dependent
// sets. An edge from a dependent to a dependency means the dependency runs
// first.
type node struct {
	item       Item
	ordinal    int
	deps       []*node
	dependents []*node
}

func (n *node) sentinel() bool {
	_, ok := n.item.(sentinel)
	return ok
}

func (n *node) dependsOn(d *node) bool {
	for _, existing := range n.deps {
		if existing == d {
			return true
		}
	}
	return false
}

// Graph orders the items of a transformation. It is a builder: the first
// failing call records an error that Err returns, and every later call is a
// no-op.
//
// Besides the explicit edges a graph tracks two cursors used by the chaining
// methods. The tail is the item that the next ChainDependency call makes run
// before; it starts out as End. The head is the item that the next
// ChainDependent call makes run after; it starts out as Root.
type Graph struct {
	owner Item
	nodes map[Item]*node
	order []*node
	root  *node
	end   *node
	tail  *node
	head  *node
	err   error
}

// NewGraph returns an empty graph. Conditional transformations receive a
// fresh graph from the planner and do not need to create one.
func NewGraph() *Graph {
	return newGraph(nil)
}

func newGraph(owner Item) *Graph {
	g := &Graph{owner: owner, nodes: map[Item]*node{}}
	g.root = &node{item: Root, ordinal: -2}
	g.end = &node{item: End, ordinal: -1}
	g.tail = g.end
	g.head = g.root
	return g
}

// Err returns the first error recorded while building the graph.
func (g *Graph) Err() error {
	return g.err
}

// Len returns the number of items in the graph, not counting the sentinels.
func (g *Graph) Len() int {
	return len(g.order)
}

// Contains reports whether item was added to the graph.
func (g *Graph) Contains(item Item) bool {
	_, ok := g.nodes[item]
	return ok
}

// Items returns the items of the graph in the order they were added.
func (g *Graph) Items() []Item {
	items := make([]Item, len(g.order))
	for i, n := range g.order {
		items[i] = n.item
	}
	return items
}

// Dependencies returns the items that item explicitly depends on.
func (g *Graph) Dependencies(item Item) []Item {
	n := g.lookup(item)
	if n == nil {
		return nil
	}
	deps := make([]Item, len(n.deps))
	for i, d := range n.deps {
		deps[i] = d.item
	}
	return deps
}

func (g *Graph) fail(format string, args ...any) {
	if g.err == nil {
		g.err = errors.Configurationf(errors.E3001, format, args...)
	}
}

func (g *Graph) lookup(item Item) *node {
	switch item {
	case Root:
		return g.root
	case End:
		return g.end
	}
	return g.nodes[item]
}

// node returns the node of item, adding it to the graph if needed.
func (g *Graph) node(item Item) *node {
	if g.err != nil {
		return nil
	}
	if item == nil {
		g.fail("cannot add a nil item")
		return nil
	}
	if n := g.lookup(item); n != nil {
		return n
	}
	if g.owner != nil && item == g.owner {
		g.fail("%q cannot contain itself", item.Name())
		return nil
	}
	n := &node{item: item, ordinal: len(g.order)}
	g.nodes[item] = n
	g.order = append(g.order, n)
	return n
}

// edge makes dependent run after dependency.
func (g *Graph) edge(dependent, dependency *node) {
	if g.err != nil || dependent == nil || dependency == nil {
		return
	}
	switch {
	case dependent == g.root:
		g.fail("root cannot depend on %q", dependency.item.Name())
	case dependency == g.end:
		g.fail("%q cannot depend on end", dependent.item.Name())
	case dependent == dependency:
		g.fail("%q cannot depend on itself", dependent.item.Name())
	case dependent.dependsOn(dependency):
	default:
		dependent.deps = append(dependent.deps, dependency)
		dependency.dependents = append(dependency.dependents, dependent)
	}
}

// copyEdges gives n the same dependencies and dependents as ref.
func (g *Graph) copyEdges(n, ref *node) {
	if g.err != nil || n == nil {
		return
	}
	// snapshot, edge appends to ref's sets when ref shares neighbors with n
	deps := append([]*node(nil), ref.deps...)
	dependents := append([]*node(nil), ref.dependents...)
	for _, d := range deps {
		g.edge(n, d)
	}
	for _, d := range dependents {
		g.edge(d, n)
	}
}

// Add adds item to run after Root and before End, concurrently with the
// other items that have no further constraints.
func (g *Graph) Add(item Item) {
	n := g.node(item)
	g.edge(n, g.root)
	g.edge(g.end, n)
}

// AddDependency makes dependent run after dependency. The dependency becomes
// the tail.
func (g *Graph) AddDependency(dependent, dependency Item) {
	d := g.node(dependency)
	g.edge(g.node(dependent), d)
	if g.err == nil {
		g.tail = d
	}
}

// AddDependent makes dependent run after dependency. The dependent becomes
// the head.
func (g *Graph) AddDependent(dependency, dependent Item) {
	n := g.node(dependent)
	g.edge(n, g.node(dependency))
	if g.err == nil {
		g.head = n
	}
}

// ChainDependency makes item run before the tail and makes it the new tail.
// Chaining several dependencies runs them in reverse order.
func (g *Graph) ChainDependency(item Item) {
	n := g.node(item)
	g.edge(g.tail, n)
	if g.err == nil {
		g.tail = n
	}
}

// ChainDependent makes item run after the head and makes it the new head.
// Chaining several dependents runs them in order.
func (g *Graph) ChainDependent(item Item) {
	n := g.node(item)
	g.edge(n, g.head)
	if g.err == nil {
		g.head = n
	}
}

// ChainConcurrentDependency adds item with the same dependencies and
// dependents as the tail. The tail does not change.
func (g *Graph) ChainConcurrentDependency(item Item) {
	if g.tail.sentinel() {
		g.fail("no dependency to run %q concurrently with", nameOf(item))
		return
	}
	g.copyEdges(g.node(item), g.tail)
}

// ChainConcurrentDependent adds item with the same dependencies and
// dependents as the head. The head does not change.
func (g *Graph) ChainConcurrentDependent(item Item) {
	if g.head.sentinel() {
		g.fail("no dependent to run %q concurrently with", nameOf(item))
		return
	}
	g.copyEdges(g.node(item), g.head)
}

// ChainConcurrentSibling adds item to run after the tail and before every
// dependent of the tail. The tail does not change.
func (g *Graph) ChainConcurrentSibling(item Item) {
	if g.tail.sentinel() {
		g.fail("no dependency to add %q as a sibling of", nameOf(item))
		return
	}
	n := g.node(item)
	g.edge(n, g.tail)
	for _, d := range append([]*node(nil), g.tail.dependents...) {
		if d != n {
			g.edge(d, n)
		}
	}
}

// AddConcurrentWith adds item with the same dependencies and dependents as
// existing, which must already be part of the graph.
func (g *Graph) AddConcurrentWith(existing, item Item) {
	ref := g.lookup(existing)
	if ref == nil || ref.sentinel() {
		g.fail("cannot run %q concurrently with %q: not an item of the graph",
			nameOf(item), nameOf(existing))
		return
	}
	g.copyEdges(g.node(item), ref)
}

// AddRootDependent makes item run right after Root and makes it the head.
func (g *Graph) AddRootDependent(item Item) {
	n := g.node(item)
	g.edge(n, g.root)
	if g.err == nil {
		g.head = n
	}
}

// AddEndDependency makes item run right before End and makes it the tail.
func (g *Graph) AddEndDependency(item Item) {
	n := g.node(item)
	g.edge(g.end, n)
	if g.err == nil {
		g.tail = n
	}
}

// AppendDependent makes item run after every item currently in the graph
// and makes it the tail.
func (g *Graph) AppendDependent(item Item) {
	n := g.node(item)
	if n == nil || g.err != nil {
		return
	}
	var last []*node
	for _, other := range g.order {
		if other != n && !other.hasItemNeighbor(true) {
			last = append(last, other)
		}
	}
	for _, d := range g.end.deps {
		if d != n {
			g.edge(n, d)
		}
	}
	for _, d := range last {
		g.edge(n, d)
	}
	g.edge(g.end, n)
	if g.err == nil {
		g.tail = n
	}
}

// PrependDependency makes item run before every item currently in the graph
// and makes it the head.
func (g *Graph) PrependDependency(item Item) {
	n := g.node(item)
	if n == nil || g.err != nil {
		return
	}
	var first []*node
	for _, other := range g.order {
		if other != n && !other.hasItemNeighbor(false) {
			first = append(first, other)
		}
	}
	for _, d := range append([]*node(nil), g.root.dependents...) {
		if d != n {
			g.edge(d, n)
		}
	}
	for _, d := range first {
		g.edge(d, n)
	}
	g.edge(n, g.root)
	if g.err == nil {
		g.head = n
	}
}

// hasItemNeighbor reports whether n has a dependent (or, if dependents is
// false, a dependency) that is not a sentinel.
func (n *node) hasItemNeighbor(dependents bool) bool {
	set := n.deps
	if dependents {
		set = n.dependents
	}
	for _, other := range set {
		if !other.sentinel() {
			return true
		}
	}
	return false
}

func nameOf(item Item) string {
	if item == nil {
		return "<nil>"
	}
	return item.Name()
}

// String returns a description of the explicit edges, one item per line.
func (g *Graph) String() string {
	var b strings.Builder
	for _, n := range append(append([]*node{g.root}, g.order...), g.end) {
		b.WriteString(n.item.Name())
		if len(n.deps) > 0 {
			b.WriteString(" <-")
			for _, d := range n.deps {
				fmt.Fprintf(&b, " %s", d.item.Name())
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
