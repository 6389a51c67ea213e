package transform

import "github.com/cloudcmds/glslx/ast"

// Handler is called for a node during the walk of a level. A non-nil error
// aborts the transform call.
type Handler func(job *Job, node ast.NodeID) error

// Phase is a named set of callbacks. Phases placed in the same level of a
// plan share one traversal of the tree; each receives the enter and exit
// calls for every node in registration order.
//
// A phase is configured with its builder methods, which return the phase
// so calls can be chained:
//
//	p := transform.NewPhase("rename").
//		OnEnter(ast.Reference, renameRef).
//		Activation(func(j *transform.Job) bool { return enabled })
type Phase struct {
	name            string
	enter           [ast.NumKinds]Handler
	exit            [ast.NumKinds]Handler
	enterAny        Handler
	exitAny         Handler
	hasHandlers     bool
	activation      func(*Job) bool
	beforeWalk      func(*Job) error
	afterWalk       func(*Job) error
	activeAfterWalk func(*Job) bool
	reset           func()
	init            func() error
	initialized     bool
}

// NewPhase returns a phase with no callbacks.
func NewPhase(name string) *Phase {
	return &Phase{name: name}
}

// NewRunPhase returns a phase that only runs fn before the walk of its
// level.
func NewRunPhase(name string, fn func(*Job) error) *Phase {
	return NewPhase(name).BeforeWalk(fn)
}

// Name returns the name of the phase.
func (p *Phase) Name() string {
	return p.name
}

func (p *Phase) isItem() {}

func (p *Phase) String() string {
	return p.name
}

// chain runs first and then next, stopping at the first error.
func chain(first, next Handler) Handler {
	if first == nil {
		return next
	}
	return func(job *Job, node ast.NodeID) error {
		if err := first(job, node); err != nil {
			return err
		}
		return next(job, node)
	}
}

// OnEnter adds a handler called when the walk enters a node of the given
// kind, before its children.
func (p *Phase) OnEnter(kind ast.Kind, h Handler) *Phase {
	p.enter[kind] = chain(p.enter[kind], h)
	p.hasHandlers = true
	return p
}

// OnExit adds a handler called when the walk leaves a node of the given
// kind, after its children.
func (p *Phase) OnExit(kind ast.Kind, h Handler) *Phase {
	p.exit[kind] = chain(p.exit[kind], h)
	p.hasHandlers = true
	return p
}

// OnEnterAny adds a handler called when the walk enters any node. It runs
// after the handler for the node's kind.
func (p *Phase) OnEnterAny(h Handler) *Phase {
	p.enterAny = chain(p.enterAny, h)
	p.hasHandlers = true
	return p
}

// OnExitAny adds a handler called when the walk leaves any node. It runs
// after the handler for the node's kind.
func (p *Phase) OnExitAny(h Handler) *Phase {
	p.exitAny = chain(p.exitAny, h)
	p.hasHandlers = true
	return p
}

// Activation sets the predicate that decides, once per level, whether the
// phase takes part. Phases are active by default.
func (p *Phase) Activation(fn func(*Job) bool) *Phase {
	p.activation = fn
	return p
}

// BeforeWalk sets a hook that runs before the walk of the phase's level.
func (p *Phase) BeforeWalk(fn func(*Job) error) *Phase {
	p.beforeWalk = fn
	return p
}

// AfterWalk sets a hook that runs after the walk of the phase's level.
func (p *Phase) AfterWalk(fn func(*Job) error) *Phase {
	p.afterWalk = fn
	return p
}

// ActiveAfterWalk sets the predicate that decides whether the after-walk
// hook runs. It holds by default.
func (p *Phase) ActiveAfterWalk(fn func(*Job) bool) *Phase {
	p.activeAfterWalk = fn
	return p
}

// ResetState sets a hook that clears per-job state. It runs at the start of
// every transform call whose plan contains the phase.
func (p *Phase) ResetState(fn func()) *Phase {
	p.reset = fn
	return p
}

// Init sets a hook that runs once, the first time a plan containing the
// phase is built.
func (p *Phase) Init(fn func() error) *Phase {
	p.init = fn
	return p
}

// HasHandlers reports whether the phase has any enter or exit handler.
func (p *Phase) HasHandlers() bool {
	return p.hasHandlers
}

func (p *Phase) active(job *Job) bool {
	return p.activation == nil || p.activation(job)
}

func (p *Phase) runsAfterWalk(job *Job) bool {
	return p.afterWalk != nil && (p.activeAfterWalk == nil || p.activeAfterWalk(job))
}
