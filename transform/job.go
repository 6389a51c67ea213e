package transform

import (
	"context"
	"fmt"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/parser"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

// Job is the state of one transform call. Handlers and hooks receive the
// job and use it to read the tree and to edit it. Edits are applied to the
// tree immediately.
type Job struct {
	ID uuid.UUID

	ctx     context.Context
	tree    *ast.Tree
	params  JobParameters
	options []parser.Option
	logger  zerolog.Logger
	phase   *Phase
	level   int
}

func newJob(ctx context.Context, m *Manager, tree *ast.Tree) *Job {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Nil
	}
	return &Job{
		ID:      id,
		ctx:     ctx,
		tree:    tree,
		params:  m.params,
		options: m.parserOptions,
		logger:  m.logger.With().Str("job", id.String()).Logger(),
	}
}

// Context returns the context of the transform call.
func (j *Job) Context() context.Context {
	return j.ctx
}

// Tree returns the tree being transformed.
func (j *Job) Tree() *ast.Tree {
	return j.tree
}

// Parameters returns the job parameters of the transform call, or nil.
func (j *Job) Parameters() JobParameters {
	return j.params
}

// Phase returns the phase whose callback is running, or nil.
func (j *Job) Phase() *Phase {
	return j.phase
}

// Logger returns a logger annotated with the job, plan level and phase.
func (j *Job) Logger() *zerolog.Logger {
	return j.log()
}

func (j *Job) log() *zerolog.Logger {
	ctx := j.logger.With().Int("plan_level", j.level)
	if j.phase != nil {
		ctx = ctx.Str("phase", j.phase.name)
	}
	l := ctx.Logger()
	return &l
}

func editError(err error) error {
	return errors.Wrap(errors.KindInternal, errors.E4002, err)
}

// Replace puts the detached node new into the slot of old. The original
// tokens old covered are not printed.
func (j *Job) Replace(old, new ast.NodeID) error {
	if err := j.tree.Replace(old, new); err != nil {
		return editError(err)
	}
	return nil
}

// Remove replaces node with a tombstone, which prints nothing. The number
// of children of its parent does not change.
func (j *Job) Remove(node ast.NodeID) error {
	return j.Replace(node, j.tree.NewTombstone())
}

// CreateLocalRoot parses src with the given entry rule and grafts the
// result into the tree. It returns the detached root of the fragment, which
// prints from its own tokens wherever it is placed.
func (j *Job) CreateLocalRoot(src string, rule parser.Rule) (ast.NodeID, error) {
	frag, err := parser.ParseRule(j.ctx, src, rule, j.options...)
	if err != nil {
		return ast.NoNode, errors.Wrap(errors.KindInternal, errors.E4002,
			fmt.Errorf("parsing %s %q: %w", rule, src, err))
	}
	root, err := j.tree.Graft(frag)
	if err != nil {
		return ast.NoNode, editError(err)
	}
	return root, nil
}

// ReplaceWithFragment parses src with the given entry rule and puts the
// result in the slot of old.
func (j *Job) ReplaceWithFragment(old ast.NodeID, src string, rule parser.Rule) (ast.NodeID, error) {
	root, err := j.CreateLocalRoot(src, rule)
	if err != nil {
		return ast.NoNode, err
	}
	return root, j.Replace(old, root)
}

// InjectNode inserts the detached node among the top-level children at the
// given point.
func (j *Job) InjectNode(point InjectionPoint, node ast.NodeID) error {
	if err := j.tree.Insert(j.tree.Root(), point.index(j.tree), node); err != nil {
		return editError(err)
	}
	return nil
}

// InjectNodes inserts the detached nodes at the given point, keeping their
// order.
func (j *Job) InjectNodes(point InjectionPoint, nodes ...ast.NodeID) error {
	index := point.index(j.tree)
	for i := len(nodes) - 1; i >= 0; i-- {
		if err := j.tree.Insert(j.tree.Root(), index, nodes[i]); err != nil {
			return editError(err)
		}
	}
	return nil
}

// InjectExternalDeclaration parses src as an external declaration and
// inserts it at the given point.
func (j *Job) InjectExternalDeclaration(point InjectionPoint, src string) error {
	return j.InjectExternalDeclarations(point, src)
}

// InjectExternalDeclarations parses each source as an external declaration
// and inserts them at the given point, keeping their order.
func (j *Job) InjectExternalDeclarations(point InjectionPoint, srcs ...string) error {
	nodes := make([]ast.NodeID, 0, len(srcs))
	for _, src := range srcs {
		node, err := j.CreateLocalRoot(src, parser.ExternalDeclaration)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}
	return j.InjectNodes(point, nodes...)
}

// InjectDefine inserts "#define content" at the given point.
func (j *Job) InjectDefine(point InjectionPoint, content string) error {
	return j.InjectDefines(point, content)
}

// InjectDefines inserts a #define line for each content at the given point,
// keeping their order. The printer starts a new line after a directive, so
// only defines placed at the very end carry their own line break.
func (j *Job) InjectDefines(point InjectionPoint, contents ...string) error {
	srcs := make([]string, len(contents))
	for i, c := range contents {
		srcs[i] = "#define " + c
		if point == BeforeEOF {
			srcs[i] += "\n"
		}
	}
	return j.InjectExternalDeclarations(point, srcs...)
}

// Location returns the source location of the first token below node.
func (j *Job) Location(node ast.NodeID) errors.SourceLocation {
	tok, stream, ok := j.tree.FirstToken(node)
	if !ok {
		return errors.SourceLocation{}
	}
	return errors.SourceLocation{
		Filename: stream.File,
		Line:     tok.StartPosition.LineNumber(),
		Column:   tok.StartPosition.ColumnNumber(),
		Source:   stream.LineText(tok.StartPosition),
	}
}

// Reject returns a rejection located at node. Returning it from a handler
// or hook aborts the transform call.
func (j *Job) Reject(node ast.NodeID, code errors.ErrorCode, format string, args ...any) error {
	err := errors.Rejectionf(j.Location(node), code, format, args...)
	j.log().Debug().Str("code", string(code)).Msg(err.Message)
	return err
}
