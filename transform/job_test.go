package transform

import (
	"context"
	"testing"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/parser"
	"github.com/stretchr/testify/require"
)

// runOnce returns a transformation with a single run phase.
func runOnce(fn func(*Job) error) *Transformation {
	return NewTransformation("run", NewRunPhase("run", fn))
}

func TestInjectionPointIndex(t *testing.T) {
	src := `#version 330
#extension GL_foo : enable
#pragma debug(on)
#define X 1
uniform float t;
void main() {}
`
	tree, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	tests := []struct {
		point    InjectionPoint
		expected int
	}{
		{BeforeVersion, 0},
		{BeforeExtensions, 1},
		{BeforeDirectives, 2},
		{BeforeDeclarations, 4},
		{BeforeFunctions, 5},
		{BeforeEOF, 7},
	}
	for _, tt := range tests {
		t.Run(tt.point.String(), func(t *testing.T) {
			require.Equal(t, tt.expected, tt.point.index(tree))
		})
	}
}

func TestInjectionPointDefaults(t *testing.T) {
	tree, err := parser.Parse(context.Background(), "// nothing\n")
	require.NoError(t, err)
	for _, p := range InjectionPoints() {
		if p == BeforeEOF {
			require.Equal(t, 1, p.index(tree))
			continue
		}
		require.Equal(t, 0, p.index(tree), p.String())
	}

	tree, err = parser.Parse(context.Background(), "#version 330\nfloat x;\n")
	require.NoError(t, err)
	require.Equal(t, 0, BeforeVersion.index(tree))
	require.Equal(t, 1, BeforeExtensions.index(tree))
	require.Equal(t, 2, BeforeFunctions.index(tree))
}

func TestParseInjectionPoint(t *testing.T) {
	for _, p := range InjectionPoints() {
		parsed, err := ParseInjectionPoint(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}
	_, err := ParseInjectionPoint("before_lunch")
	require.Error(t, err)
	require.Equal(t, "InjectionPoint(42)", InjectionPoint(42).String())
}

func TestInjectAtBeforeVersion(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		return job.InjectExternalDeclaration(BeforeVersion, "f;")
	})
	require.Equal(t, "f;a;//present\nb;c;d;", transform(t, "a;//present\nb;c;d;", tr))
}

func TestInjectBeforeEOF(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		return job.InjectExternalDeclaration(BeforeEOF, "void f() {}")
	})
	require.Equal(t, "float x;\nvoid f() {}", transform(t, "float x;\n", tr))
}

func TestInjectExternalDeclarationsKeepOrder(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		return job.InjectExternalDeclarations(BeforeFunctions, "uniform float a;", "uniform float b;")
	})
	out := transform(t, "#version 330\nvoid main() {}", tr)
	require.Equal(t, "#version 330\nuniform float a;uniform float b;\nvoid main() {}", out)
}

func TestInjectNodes(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		tree := job.Tree()
		return job.InjectNodes(BeforeDeclarations,
			tree.NewSynthetic(ast.Directive, "#define A 1"),
			tree.NewSynthetic(ast.Directive, "#define B 2"))
	})
	out := transform(t, "float x;", tr)
	require.Equal(t, "#define A 1\n#define B 2\nfloat x;", out)
}

func TestInjectDefine(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		return job.InjectDefine(BeforeDeclarations, "SCALE 2.0")
	})
	out := transform(t, "#version 330\nfloat x;\n", tr)
	require.Equal(t, "#version 330\n#define SCALE 2.0\nfloat x;\n", out)
}

func TestInjectDefinesKeepTrailingText(t *testing.T) {
	tests := []struct {
		point    InjectionPoint
		input    string
		expected string
	}{
		{BeforeVersion, "float x;\n", "#define A 1\n#define B 2\nfloat x;\n"},
		{BeforeDeclarations, "#version 330\nfloat x;\n", "#version 330\n#define A 1\n#define B 2\nfloat x;\n"},
		{BeforeEOF, "float x;\n", "float x;\n#define A 1\n#define B 2\n"},
		{BeforeEOF, "float x;", "float x;\n#define A 1\n#define B 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.point.String(), func(t *testing.T) {
			tr := runOnce(func(job *Job) error {
				return job.InjectDefines(tt.point, "A 1", "B 2")
			})
			require.Equal(t, tt.expected, transform(t, tt.input, tr))
		})
	}
}

func TestRemoveKeepsChildCount(t *testing.T) {
	var before, after int
	p := NewPhase("remove").OnEnter(ast.Declaration, func(job *Job, node ast.NodeID) error {
		tree := job.Tree()
		if tree.Text(node) != "b;" {
			return nil
		}
		before = tree.NumChildren(tree.Root())
		if err := job.Remove(node); err != nil {
			return err
		}
		after = tree.NumChildren(tree.Root())
		return nil
	})
	out := transform(t, "a; b; c;", NewTransformation("t", p))
	require.Equal(t, "a;  c;", out)
	require.Equal(t, 4, before)
	require.Equal(t, before, after)
}

func TestReplaceWithFragmentKeepsComments(t *testing.T) {
	p := NewPhase("replace").OnEnter(ast.Declaration, func(job *Job, node ast.NodeID) error {
		_, err := job.ReplaceWithFragment(node, "vec3 n; /* replaced */", parser.ExternalDeclaration)
		return err
	})
	out := transform(t, "// head\nfloat x; // tail\n", NewTransformation("t", p))
	require.Equal(t, "// head\nvec3 n; /* replaced */ // tail\n", out)
}

func TestCreateLocalRoot(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		node, err := job.CreateLocalRoot("x * 2.0", parser.Expression)
		require.NoError(t, err)
		require.True(t, job.Tree().IsLocalRoot(node))
		require.Equal(t, ast.NoNode, job.Tree().Parent(node))
		require.Equal(t, ast.BinaryExpression, job.Tree().Kind(node))
		return nil
	})
	transform(t, "float x;", tr)
}

func TestFragmentSyntaxErrorIsInternal(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		return job.InjectExternalDeclaration(BeforeEOF, "float")
	})
	_, err := managerWith(t, tr).Transform(context.Background(), "a;")
	require.ErrorIs(t, err, errors.ErrInternal)
	require.ErrorIs(t, err, errors.ErrSyntax)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E4002, e.Code)
}

func TestInvalidEdits(t *testing.T) {
	tests := []struct {
		name string
		edit func(job *Job) error
	}{
		{"replace root", func(job *Job) error {
			return job.Replace(job.Tree().Root(), job.Tree().NewTombstone())
		}},
		{"remove root", func(job *Job) error {
			return job.Remove(job.Tree().Root())
		}},
		{"inject attached node", func(job *Job) error {
			tree := job.Tree()
			return job.InjectNode(BeforeEOF, tree.Child(tree.Root(), 0))
		}},
		{"replace detached node", func(job *Job) error {
			tree := job.Tree()
			node := tree.Child(tree.Root(), 0)
			if err := job.Remove(node); err != nil {
				return err
			}
			return job.Remove(node)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := managerWith(t, runOnce(tt.edit)).Transform(context.Background(), "a; b;")
			require.ErrorIs(t, err, errors.ErrInternal)
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, errors.E4002, e.Code)
		})
	}
}

func TestJobAccessors(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	m := New()
	var job *Job
	require.NoError(t, m.Register(runOnce(func(j *Job) error {
		job = j
		require.Equal(t, "run", j.Phase().Name())
		require.Equal(t, "value", j.Context().Value(key{}))
		require.NotNil(t, j.Logger())
		return nil
	})))
	_, err := m.Transform(ctx, "a;")
	require.NoError(t, err)
	require.NotNil(t, job)
	require.False(t, job.ID.IsNil())
	require.Nil(t, job.Phase())
	require.Nil(t, job.Parameters())
	require.Equal(t, ast.TranslationUnit, job.Tree().Kind(job.Tree().Root()))
}

func TestLocation(t *testing.T) {
	tr := runOnce(func(job *Job) error {
		tree := job.Tree()
		decl := tree.Child(tree.Root(), 1)
		require.Equal(t, errors.SourceLocation{
			Filename: "loc.glsl",
			Line:     2,
			Column:   3,
			Source:   "  vec2 uv;",
		}, job.Location(decl))
		require.True(t, job.Location(tree.NewTombstone()).IsZero())
		return nil
	})
	m := New(WithParserOptions(parser.WithFilename("loc.glsl")))
	require.NoError(t, m.Register(tr))
	_, err := m.Transform(context.Background(), "float x;\n  vec2 uv;\n")
	require.NoError(t, err)
}
