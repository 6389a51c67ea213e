// Package transform runs ordered sets of transformation phases over shader
// syntax trees.
//
// Phases are grouped into transformations, which order them with a
// dependency graph. A Manager collects transformations, plans them into
// levels of phases, and runs each level as one walk of the tree. Phases edit
// the tree through the Job they receive, and the manager prints the edited
// tree back to source.
package transform

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/parser"
	"github.com/cloudcmds/glslx/printer"
	"github.com/rs/zerolog"
)

// Option is a configuration function for a Manager.
type Option func(*Manager)

// WithLogger sets the logger of the manager. Jobs log at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithParserOptions sets options used for every parse, including the
// fragments that phases parse.
func WithParserOptions(options ...parser.Option) Option {
	return func(m *Manager) {
		m.parserOptions = append(m.parserOptions, options...)
	}
}

// WithErrorListener makes the manager collect the syntax errors of its
// input and report each of them to fn. The transform call still fails.
func WithErrorListener(fn func(*errors.Error)) Option {
	return func(m *Manager) {
		m.listener = fn
	}
}

// WithPrinter sets the printer used to turn transformed trees into source.
func WithPrinter(p *printer.Printer) Option {
	return func(m *Manager) {
		m.printer = p
	}
}

// Manager holds the registered transformations and runs them over input.
// A manager caches its plans and is not safe for concurrent use.
type Manager struct {
	root          *Transformation
	plans         map[JobParameters]*Plan
	params        JobParameters
	logger        zerolog.Logger
	parserOptions []parser.Option
	listener      func(*errors.Error)
	printer       *printer.Printer
}

// New returns a manager with no transformations.
func New(options ...Option) *Manager {
	m := &Manager{
		root:    NewTransformation("manager"),
		plans:   map[JobParameters]*Plan{},
		logger:  zerolog.Nop(),
		printer: printer.New(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *Manager) check(t *Transformation) error {
	if t == nil {
		return errors.Configurationf(errors.E3006, "cannot register a nil transformation")
	}
	if err := t.Err(); err != nil {
		return err
	}
	if err := nestedErr(t, map[*Transformation]bool{t: true}); err != nil {
		return err
	}
	if m.root.Contains(t) {
		return errors.Configurationf(errors.E3006, "transformation %q is already registered", t.name)
	}
	return nil
}

// nestedErr returns the first error recorded by a transformation nested in
// the static graph of t.
func nestedErr(t *Transformation, seen map[*Transformation]bool) error {
	for _, item := range t.Items() {
		sub, ok := item.(*Transformation)
		if !ok || seen[sub] {
			continue
		}
		seen[sub] = true
		if err := sub.Err(); err != nil {
			return fmt.Errorf("transformation %q: %w", sub.name, err)
		}
		if err := nestedErr(sub, seen); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a transformation that runs after the transformations
// registered before it.
func (m *Manager) Register(t *Transformation) error {
	if err := m.check(t); err != nil {
		return err
	}
	m.root.ChainDependent(t)
	clear(m.plans)
	return m.root.Err()
}

// AddConcurrent adds a transformation that runs concurrently with the
// registered transformations that have no ordering constraint.
func (m *Manager) AddConcurrent(t *Transformation) error {
	if err := m.check(t); err != nil {
		return err
	}
	m.root.Add(t)
	clear(m.plans)
	return m.root.Err()
}

// Root returns the transformation that holds every registered
// transformation. Its graph may be used for ordering that Register and
// AddConcurrent do not cover.
func (m *Manager) Root() *Transformation {
	return m.root
}

// WithJobParameters sets the job parameters for the duration of fn. The
// previous parameters are restored when fn returns, even if it fails or
// panics, so calls may be nested.
func (m *Manager) WithJobParameters(params JobParameters, fn func() error) error {
	prev := m.params
	m.params = params
	defer func() { m.params = prev }()
	return fn()
}

// JobParameters returns the job parameters set by WithJobParameters.
func (m *Manager) JobParameters() JobParameters {
	return m.params
}

// Plan returns the plan for the given parameters. Plans for fixed,
// comparable parameters are cached until the next registration.
func (m *Manager) Plan(params JobParameters) (*Plan, error) {
	cache := isFixed(params)
	if cache && !isComparable(params) {
		m.logger.Warn().Type("params", params).Msg("fixed job parameters are not comparable; plan is not cached")
		cache = false
	}
	if cache {
		if plan, ok := m.plans[params]; ok {
			return plan, nil
		}
	}
	plan, err := newPlanner(params).build(m.root)
	if err != nil {
		return nil, err
	}
	m.logger.Debug().Int("levels", len(plan.levels)).Int("phases", len(plan.phases)).Msg("planned")
	if cache {
		m.plans[params] = plan
	}
	return plan, nil
}

func (m *Manager) parseOptions() []parser.Option {
	if m.listener == nil {
		return m.parserOptions
	}
	return append(append([]parser.Option(nil), m.parserOptions...), parser.WithErrorListener(m.listener))
}

// Transform parses src, runs the registered transformations over it and
// returns the printed result.
func (m *Manager) Transform(ctx context.Context, src string) (string, error) {
	tree, err := parser.Parse(ctx, src, m.parseOptions()...)
	if err != nil {
		return "", err
	}
	if err := m.TransformTree(ctx, tree); err != nil {
		return "", err
	}
	return m.printer.Print(tree), nil
}

// TransformReader is like Transform but reads the source from r.
func (m *Manager) TransformReader(ctx context.Context, r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return m.Transform(ctx, string(src))
}

// TransformTree runs the registered transformations over a parsed tree.
func (m *Manager) TransformTree(ctx context.Context, tree *ast.Tree) error {
	plan, err := m.Plan(m.params)
	if err != nil {
		return err
	}
	job := newJob(ctx, m, tree)
	for _, p := range plan.phases {
		if p.reset != nil {
			p.reset()
		}
	}
	for i, level := range plan.levels {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := job.runLevel(i, level); err != nil {
			return err
		}
	}
	job.log().Debug().Msg("transformed")
	return nil
}
