package transform

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/parser"
	"github.com/stretchr/testify/require"
)

// texts returns a handler that records the text of each node it sees.
func texts(into *[]string) Handler {
	return func(job *Job, node ast.NodeID) error {
		*into = append(*into, job.Tree().Text(node))
		return nil
	}
}

func transform(t *testing.T, src string, transformations ...*Transformation) string {
	t.Helper()
	out, err := managerWith(t, transformations...).Transform(context.Background(), src)
	require.NoError(t, err)
	return out
}

func TestSharedWalk(t *testing.T) {
	var events []string
	record := func(label string) Handler {
		return func(job *Job, node ast.NodeID) error {
			events = append(events, label+" "+job.Tree().Text(node))
			return nil
		}
	}
	first := NewPhase("first").
		OnEnter(ast.Declaration, record("enter first")).
		OnExit(ast.Declaration, record("exit first"))
	second := NewPhase("second").
		OnEnter(ast.Declaration, record("enter second")).
		OnExitAny(func(job *Job, node ast.NodeID) error {
			if job.Tree().Kind(node) == ast.Declaration {
				events = append(events, "exit any "+job.Tree().Text(node))
			}
			return nil
		})
	tr := NewTransformation("t")
	tr.Add(first)
	tr.Add(second)
	transform(t, "a; b;", tr)
	require.Equal(t, []string{
		"enter first a;",
		"enter second a;",
		"exit first a;",
		"exit any a;",
		"enter first b;",
		"enter second b;",
		"exit first b;",
		"exit any b;",
	}, events)
}

func TestKindHandlerRunsBeforeAnyHandler(t *testing.T) {
	var events []string
	p := NewPhase("p").
		OnEnterAny(func(job *Job, node ast.NodeID) error {
			if job.Tree().Kind(node) == ast.Identifier {
				events = append(events, "any")
			}
			return nil
		}).
		OnEnter(ast.Identifier, func(*Job, ast.NodeID) error {
			events = append(events, "kind")
			return nil
		}).
		OnEnter(ast.Identifier, func(*Job, ast.NodeID) error {
			events = append(events, "kind again")
			return nil
		})
	transform(t, "x;", NewTransformation("t", p))
	require.Equal(t, []string{"kind", "kind again", "any"}, events)
}

func TestHooks(t *testing.T) {
	var events []string
	hook := func(label string) func(*Job) error {
		return func(job *Job) error {
			events = append(events, fmt.Sprintf("%s %s", label, job.Phase().Name()))
			return nil
		}
	}
	a := NewPhase("a").
		BeforeWalk(hook("before")).
		AfterWalk(hook("after")).
		OnEnter(ast.TranslationUnit, func(*Job, ast.NodeID) error {
			events = append(events, "walk")
			return nil
		})
	b := NewPhase("b").
		BeforeWalk(hook("before")).
		AfterWalk(hook("after")).
		ActiveAfterWalk(func(*Job) bool { return false })
	inactive := NewPhase("inactive").
		Activation(func(*Job) bool { return false }).
		BeforeWalk(hook("before")).
		AfterWalk(hook("after")).
		OnEnterAny(func(*Job, ast.NodeID) error {
			events = append(events, "inactive walk")
			return nil
		})
	tr := NewTransformation("t")
	tr.Add(a)
	tr.Add(b)
	tr.Add(inactive)
	transform(t, "x;", tr)
	require.Equal(t, []string{"before a", "before b", "walk", "after a"}, events)
}

func TestActivationSeesParameters(t *testing.T) {
	var seen []string
	p := NewPhase("p").
		Activation(func(job *Job) bool {
			v, _ := ValueOf[bool](job.Parameters())
			return v
		}).
		OnEnter(ast.Declaration, texts(&seen))
	m := managerWith(t, NewTransformation("t", p))
	for _, enabled := range []bool{false, true} {
		err := m.WithJobParameters(Fixed[bool]{Value: enabled}, func() error {
			_, err := m.Transform(context.Background(), "a;")
			return err
		})
		require.NoError(t, err)
	}
	require.Equal(t, []string{"a;"}, seen)
}

func TestResetState(t *testing.T) {
	var found []string
	resets := 0
	p := NewPhase("p").
		OnEnter(ast.Declaration, texts(&found)).
		ResetState(func() {
			resets++
			found = nil
		})
	m := managerWith(t, NewTransformation("t", p))
	for _, src := range []string{"a;", "b; c;"} {
		_, err := m.Transform(context.Background(), src)
		require.NoError(t, err)
	}
	require.Equal(t, 2, resets)
	require.Equal(t, []string{"b;", "c;"}, found)
}

func TestInsertBeforePositionIsNotVisited(t *testing.T) {
	var seen []string
	p := NewPhase("p").OnEnter(ast.Declaration, func(job *Job, node ast.NodeID) error {
		seen = append(seen, job.Tree().Text(node))
		if job.Tree().Text(node) == "a;" {
			return job.InjectExternalDeclaration(BeforeVersion, "f;")
		}
		return nil
	})
	out := transform(t, "a;b;", NewTransformation("t", p))
	require.Equal(t, []string{"a;", "b;"}, seen)
	require.Equal(t, "f;a;b;", out)
}

func TestInsertAfterPositionIsVisited(t *testing.T) {
	var seen []string
	p := NewPhase("p").OnEnter(ast.Declaration, func(job *Job, node ast.NodeID) error {
		seen = append(seen, job.Tree().Text(node))
		if job.Tree().Text(node) == "a;" {
			return job.InjectExternalDeclaration(BeforeEOF, "z;")
		}
		return nil
	})
	out := transform(t, "a;b;\n", NewTransformation("t", p))
	require.Equal(t, []string{"a;", "b;", "z;"}, seen)
	require.Equal(t, "a;b;\nz;", out)
}

func TestReplacedNodeIsDetached(t *testing.T) {
	var decls, idents, exits []string
	replace := NewPhase("replace").
		OnEnter(ast.Declaration, func(job *Job, node ast.NodeID) error {
			if job.Tree().Text(node) != "a;" {
				return nil
			}
			_, err := job.ReplaceWithFragment(node, "x;", parser.ExternalDeclaration)
			return err
		}).
		OnExit(ast.Declaration, texts(&exits))
	observe := NewPhase("observe").
		OnEnter(ast.Declaration, texts(&decls)).
		OnEnter(ast.Identifier, texts(&idents))
	tr := NewTransformation("t")
	tr.Add(replace)
	tr.Add(observe)
	out := transform(t, "a;b;", tr)
	require.Equal(t, "x;b;", out)
	require.Equal(t, []string{"b;"}, decls)
	require.Equal(t, []string{"b"}, idents)
	require.Equal(t, []string{"b;"}, exits)
}

func TestReplacedNodeOnlyHidesFromLaterPhases(t *testing.T) {
	var before, after []string
	first := NewPhase("first").OnEnter(ast.Declaration, texts(&before))
	remove := NewPhase("remove").OnEnter(ast.Declaration, func(job *Job, node ast.NodeID) error {
		if job.Tree().Text(node) != "a;" {
			return nil
		}
		return job.Remove(node)
	})
	last := NewPhase("last").OnEnter(ast.Declaration, texts(&after))
	tr := NewTransformation("t")
	tr.Add(first)
	tr.Add(remove)
	tr.Add(last)
	require.Equal(t, "b;", transform(t, "a;b;", tr))
	require.Equal(t, []string{"a;", "b;"}, before)
	require.Equal(t, []string{"b;"}, after)
}

func TestReplacedAncestorIsDetached(t *testing.T) {
	var idents []string
	p := NewPhase("p").
		OnEnter(ast.TypeSpecifier, func(job *Job, node ast.NodeID) error {
			decl := job.Tree().Ancestor(node, ast.Declaration)
			if job.Tree().Text(decl) != "a;" {
				return nil
			}
			return job.Remove(decl)
		}).
		OnEnter(ast.Identifier, texts(&idents))
	out := transform(t, "a; b;", NewTransformation("t", p))
	require.Equal(t, " b;", out)
	require.Equal(t, []string{"b"}, idents)
}

func TestReplacementIsWalkedInLaterLevels(t *testing.T) {
	var seen []string
	first := NewPhase("first").OnEnter(ast.Reference, func(job *Job, node ast.NodeID) error {
		_, err := job.ReplaceWithFragment(node, "y", parser.Expression)
		return err
	})
	second := NewPhase("second").OnEnter(ast.Reference, texts(&seen))
	tr := NewTransformation("t")
	tr.ChainDependent(first)
	tr.ChainDependent(second)
	out := transform(t, "float f = x + 1.0;", tr)
	require.Equal(t, "float f = y + 1.0;", out)
	require.Equal(t, []string{"y"}, seen)
}

func TestHandlerErrorAborts(t *testing.T) {
	failure := fmt.Errorf("boom")
	ran := false
	fail := NewPhase("fail").OnEnter(ast.Declaration, func(*Job, ast.NodeID) error {
		return failure
	})
	later := NewRunPhase("later", func(*Job) error {
		ran = true
		return nil
	})
	tr := NewTransformation("t")
	tr.ChainDependent(fail)
	tr.ChainDependent(later)
	out, err := managerWith(t, tr).Transform(context.Background(), "a;")
	require.ErrorIs(t, err, failure)
	require.Empty(t, out)
	require.False(t, ran)
}

func TestRejectionAborts(t *testing.T) {
	p := NewPhase("reject").OnEnter(ast.Identifier, func(job *Job, node ast.NodeID) error {
		return job.Reject(node, errors.E2001, "name %q is reserved", job.Tree().Text(node))
	})
	m := managerWith(t, NewTransformation("t", p))
	m.parserOptions = append(m.parserOptions, parser.WithFilename("reject.vsh"))
	out, err := m.Transform(context.Background(), "float x;\nbad;")
	require.Empty(t, out)
	require.True(t, errors.IsRejection(err))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.False(t, e.IsFatal())
	require.Equal(t, `name "x" is reserved`, e.Message)
	require.Equal(t, errors.SourceLocation{
		Filename: "reject.vsh",
		Line:     1,
		Column:   7,
		Source:   "float x;",
	}, e.Location)
}

func TestContextCheckedBetweenLevels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ran := false
	tr := NewTransformation("t")
	tr.ChainDependent(NewRunPhase("cancel", func(*Job) error {
		cancel()
		return nil
	}))
	tr.ChainDependent(NewRunPhase("later", func(*Job) error {
		ran = true
		return nil
	}))
	_, err := managerWith(t, tr).Transform(ctx, "a;")
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, ran)
}
