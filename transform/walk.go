package transform

import (
	"github.com/cloudcmds/glslx/ast"
)

// frame is one node on the walker's stack. next is the index of the next
// child to visit, or -1 while the enter handlers are still pending.
type frame struct {
	id       ast.NodeID
	next     int
	detached bool
}

// walker runs the phases of one level over the tree in a single iterative
// depth-first traversal. It observes the tree so that edits made by the
// handlers keep the traversal consistent:
//
//   - a child inserted before the walker's position in its parent shifts the
//     position, so no node is visited twice
//   - a node replaced while on the stack is detached, and its remaining
//     children and handlers are skipped
//   - a node that replaced another is not visited during this walk
type walker struct {
	job      *Job
	phases   []*Phase
	stack    []frame
	replaced map[ast.NodeID]bool
}

func newWalker(job *Job, phases []*Phase) *walker {
	return &walker{
		job:      job,
		phases:   phases,
		replaced: map[ast.NodeID]bool{},
	}
}

// ChildInserted implements ast.Observer.
func (w *walker) ChildInserted(parent ast.NodeID, index int) {
	for i := range w.stack {
		f := &w.stack[i]
		if f.id == parent && index < f.next {
			f.next++
		}
	}
}

// ChildReplaced implements ast.Observer.
func (w *walker) ChildReplaced(parent ast.NodeID, index int, old, new ast.NodeID) {
	w.replaced[new] = true
	for i := range w.stack {
		if w.stack[i].id == old {
			for j := i; j < len(w.stack); j++ {
				w.stack[j].detached = true
			}
			return
		}
	}
}

func (w *walker) walk(root ast.NodeID) error {
	tree := w.job.tree
	stop := tree.Observe(w)
	defer stop()
	w.stack = append(w.stack[:0], frame{id: root, next: -1})
	for len(w.stack) > 0 {
		top := len(w.stack) - 1
		f := &w.stack[top]
		if f.detached {
			w.stack = w.stack[:top]
			continue
		}
		if f.next < 0 {
			f.next = 0
			if err := w.dispatch(top, true); err != nil {
				return err
			}
			continue
		}
		if children := tree.Children(f.id); f.next < len(children) {
			child := children[f.next]
			f.next++
			if !w.replaced[child] {
				w.stack = append(w.stack, frame{id: child, next: -1})
			}
			continue
		}
		if err := w.dispatch(top, false); err != nil {
			return err
		}
		w.stack = w.stack[:top]
	}
	return nil
}

// dispatch calls the enter or exit handlers of every phase for the node of
// the frame at index i. It stops early once the node has been detached: a
// phase that replaces or removes the node hides it from the phases after it
// in the level, which see neither its enter nor its exit call.
func (w *walker) dispatch(i int, enter bool) error {
	id := w.stack[i].id
	kind := w.job.tree.Kind(id)
	for _, p := range w.phases {
		if !p.hasHandlers {
			continue
		}
		byKind, anyKind := p.exit[kind], p.exitAny
		if enter {
			byKind, anyKind = p.enter[kind], p.enterAny
		}
		if byKind == nil && anyKind == nil {
			continue
		}
		w.job.phase = p
		for _, h := range []Handler{byKind, anyKind} {
			if h == nil {
				continue
			}
			if err := h(w.job, id); err != nil {
				return err
			}
			if w.stack[i].detached {
				return nil
			}
		}
	}
	return nil
}

// runLevel runs one level of a plan: activation, before-walk hooks, the
// combined walk, and after-walk hooks.
func (j *Job) runLevel(level int, phases []*Phase) error {
	j.level = level
	active := make([]*Phase, 0, len(phases))
	walk := false
	for _, p := range phases {
		j.phase = p
		if p.active(j) {
			active = append(active, p)
			walk = walk || p.hasHandlers
		}
	}
	j.phase = nil
	if len(active) == 0 {
		return nil
	}
	for _, p := range active {
		if p.beforeWalk == nil {
			continue
		}
		j.phase = p
		if err := p.beforeWalk(j); err != nil {
			return err
		}
	}
	if walk {
		j.phase = nil
		j.log().Debug().Int("phases", len(active)).Msg("walking tree")
		if err := newWalker(j, active).walk(j.tree.Root()); err != nil {
			return err
		}
	}
	for _, p := range active {
		j.phase = p
		if !p.runsAfterWalk(j) {
			continue
		}
		if err := p.afterWalk(j); err != nil {
			return err
		}
	}
	j.phase = nil
	return nil
}
