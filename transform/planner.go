package transform

import (
	"container/heap"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudcmds/glslx/errors"
)

// Plan is the execution order of the phases reachable from a manager. Each
// level is run by one combined walk of the tree; phases within a level
// keep the order in which they were registered.
type Plan struct {
	levels [][]*Phase
	phases []*Phase
}

// Levels returns the phases grouped by level, in execution order.
func (p *Plan) Levels() [][]*Phase {
	return p.levels
}

// Phases returns every phase of the plan in execution order.
func (p *Plan) Phases() []*Phase {
	return p.phases
}

// String lists the phase names of each level on its own line.
func (p *Plan) String() string {
	var b strings.Builder
	for i, level := range p.levels {
		names := make([]string, len(level))
		for j, phase := range level {
			names[j] = phase.name
		}
		fmt.Fprintf(&b, "%d: %s\n", i, strings.Join(names, ", "))
	}
	return b.String()
}

// planNode is a vertex of the flattened graph: either a phase or the entry
// or exit point of a transformation.
type planNode struct {
	phase      *Phase
	label      string
	ordinal    int
	deps       []*planNode
	dependents []*planNode
	indegree   int
	level      int
}

func (n *planNode) addDep(d *planNode) {
	if n == d || slices.Contains(n.deps, d) {
		return
	}
	n.deps = append(n.deps, d)
	d.dependents = append(d.dependents, n)
}

// expansion is the pair of plan nodes a transformation was expanded into.
// Everything inside the transformation runs after entry and before exit.
type expansion struct {
	entry *planNode
	exit  *planNode
}

// planner flattens nested transformations into one graph of plan nodes.
// One planner is used for one planning pass.
type planner struct {
	params   JobParameters
	nodes    []*planNode
	expanded map[*Transformation]*expansion
	phases   map[*Phase]*planNode
	graphs   map[*Transformation]*Graph
}

func newPlanner(params JobParameters) *planner {
	return &planner{
		params:   params,
		expanded: map[*Transformation]*expansion{},
		phases:   map[*Phase]*planNode{},
		graphs:   map[*Transformation]*Graph{},
	}
}

func (pl *planner) newNode(phase *Phase, label string) *planNode {
	n := &planNode{phase: phase, label: label, ordinal: len(pl.nodes)}
	pl.nodes = append(pl.nodes, n)
	return n
}

func (pl *planner) phaseNode(p *Phase) *planNode {
	if n, ok := pl.phases[p]; ok {
		return n
	}
	n := pl.newNode(p, p.name)
	pl.phases[p] = n
	return n
}

// graphOf returns the graph that t contributes to this pass, running its
// setup function if it is conditional.
func (pl *planner) graphOf(t *Transformation) (*Graph, error) {
	if !t.Conditional() {
		if err := t.Err(); err != nil {
			return nil, fmt.Errorf("transformation %q: %w", t.name, err)
		}
		return t.Graph, nil
	}
	if g, ok := pl.graphs[t]; ok {
		return g, nil
	}
	g := newGraph(t)
	if err := t.setup(pl.params, g); err != nil {
		return nil, &errors.Error{
			Kind:    errors.KindConfiguration,
			Code:    errors.E3003,
			Message: fmt.Sprintf("setup of transformation %q failed: %s", t.name, err),
			Err:     err,
		}
	}
	if err := g.Err(); err != nil {
		return nil, fmt.Errorf("transformation %q: %w", t.name, err)
	}
	pl.graphs[t] = g
	return g, nil
}

// expand adds the plan nodes of t and everything it contains. Each
// transformation is expanded once per pass; later references reuse the
// same entry and exit nodes.
func (pl *planner) expand(t *Transformation) (*expansion, error) {
	if e, ok := pl.expanded[t]; ok {
		return e, nil
	}
	e := &expansion{
		entry: pl.newNode(nil, t.name+"(entry)"),
		exit:  pl.newNode(nil, t.name+"(exit)"),
	}
	pl.expanded[t] = e
	g, err := pl.graphOf(t)
	if err != nil {
		return nil, err
	}

	// in is the plan node an item's dependencies attach to, out the one its
	// dependents attach to.
	type ends struct{ in, out *planNode }
	resolved := map[*node]ends{
		g.root: {e.entry, e.entry},
		g.end:  {e.exit, e.exit},
	}
	for _, n := range g.order {
		switch item := n.item.(type) {
		case *Phase:
			pn := pl.phaseNode(item)
			resolved[n] = ends{pn, pn}
		case *Transformation:
			sub, err := pl.expand(item)
			if err != nil {
				return nil, err
			}
			resolved[n] = ends{sub.entry, sub.exit}
		default:
			return nil, errors.Internalf("unexpected item %q in graph of %q", item.Name(), t.name)
		}
	}
	for _, d := range g.end.deps {
		e.exit.addDep(resolved[d].out)
	}
	for _, n := range g.order {
		for _, d := range n.deps {
			resolved[n].in.addDep(resolved[d].out)
		}
		if len(n.deps) == 0 {
			resolved[n].in.addDep(e.entry)
		}
		if len(n.dependents) == 0 {
			e.exit.addDep(resolved[n].out)
		}
	}
	e.exit.addDep(e.entry)
	return e, nil
}

// nodeHeap orders ready plan nodes by creation order.
type nodeHeap []*planNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].ordinal < h[j].ordinal }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(*planNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// sort returns the plan nodes in a topological order, preferring the node
// created first whenever several are ready.
func (pl *planner) sort() ([]*planNode, error) {
	ready := &nodeHeap{}
	for _, n := range pl.nodes {
		n.indegree = len(n.deps)
		if n.indegree == 0 {
			*ready = append(*ready, n)
		}
	}
	heap.Init(ready)
	sorted := make([]*planNode, 0, len(pl.nodes))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*planNode)
		sorted = append(sorted, n)
		for _, d := range n.dependents {
			d.indegree--
			if d.indegree == 0 {
				heap.Push(ready, d)
			}
		}
	}
	if len(sorted) < len(pl.nodes) {
		return nil, errors.Configurationf(errors.E3002, "dependency cycle: %s", pl.cycle())
	}
	return sorted, nil
}

// cycle returns a description of one cycle among the nodes left over by
// sort, listed in the order the nodes would have to run.
func (pl *planner) cycle() string {
	var start *planNode
	for _, n := range pl.nodes {
		if n.indegree > 0 {
			start = n
			break
		}
	}
	if start == nil {
		return "unknown"
	}
	seen := map[*planNode]int{}
	var path []*planNode
	for cur := start; ; {
		if i, ok := seen[cur]; ok {
			path = path[i:]
			break
		}
		seen[cur] = len(path)
		path = append(path, cur)
		// every leftover node has a leftover dependency; follow the oldest
		var next *planNode
		for _, d := range cur.deps {
			if d.indegree > 0 && (next == nil || d.ordinal < next.ordinal) {
				next = d
			}
		}
		cur = next
	}
	labels := make([]string, 0, len(path)+1)
	for i := len(path) - 1; i >= 0; i-- {
		labels = append(labels, path[i].label)
	}
	labels = append(labels, path[len(path)-1].label)
	return strings.Join(labels, " -> ")
}

// build plans the phases reachable from root.
func (pl *planner) build(root *Transformation) (*Plan, error) {
	if _, err := pl.expand(root); err != nil {
		return nil, err
	}
	sorted, err := pl.sort()
	if err != nil {
		return nil, err
	}
	plan := &Plan{}
	for _, n := range sorted {
		n.level = 0
		for _, d := range n.deps {
			level := d.level
			if d.phase != nil {
				level++
			}
			n.level = max(n.level, level)
		}
		if n.phase == nil {
			continue
		}
		for len(plan.levels) <= n.level {
			plan.levels = append(plan.levels, nil)
		}
		plan.levels[n.level] = append(plan.levels[n.level], n.phase)
		plan.phases = append(plan.phases, n.phase)
	}
	plan.levels = slices.DeleteFunc(plan.levels, func(level []*Phase) bool {
		return len(level) == 0
	})
	for _, p := range plan.phases {
		if p.initialized {
			continue
		}
		if p.init != nil {
			if err := p.init(); err != nil {
				return nil, &errors.Error{
					Kind:    errors.KindConfiguration,
					Code:    errors.E3006,
					Message: fmt.Sprintf("init of phase %q failed: %s", p.name, err),
					Err:     err,
				}
			}
		}
		p.initialized = true
	}
	return plan, nil
}
