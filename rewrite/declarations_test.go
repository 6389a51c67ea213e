package rewrite

import (
	"context"
	"testing"

	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/parser"
	"github.com/stretchr/testify/require"
)

const vertexShader = `#version 330
layout(location = 0) in vec4 position;
uniform mat4 mvp;
void main() {
	gl_Position = mvp * position;
}
`

func TestReplaceDeclarations(t *testing.T) {
	out := run(t, vertexShader, ReplaceDeclarations("iris"))
	require.Equal(t, `#version 330

uniform mat4 mvp;layout (location = 0) attribute vec4 iris_Position;
void main() {
	gl_Position = mvp * iris_getModelSpaceVertexPosition();
}
void iris_getModelSpaceVertexPosition() { }`, out)
}

func TestReplaceDeclarationsResetsState(t *testing.T) {
	m := manager(t, ReplaceDeclarations("iris"))
	_, err := m.Transform(context.Background(), vertexShader)
	require.NoError(t, err)

	src := "uniform float position;\nvoid main() { gl_Position = vec4(position); }\n"
	out, err := m.Transform(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestReplaceDeclarationsIgnores(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"output", "layout(location = 0) out vec4 color;\n"},
		{"other location", "layout(location = 1) in vec4 normal;\n"},
		{"other type", "layout(location = 0) in vec3 position;\n"},
		{"array", "layout(location = 0) in vec4 position[2];\n"},
		{"local", "void main() { float position; }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.input, run(t, tt.input, ReplaceDeclarations("iris")))
		})
	}
}

func TestReplaceDeclarationsRejectsReservedNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"attribute", "layout(location = 0) in vec4 iris_Position;\n"},
		{"prototype", "void iris_getModelSpaceVertexPosition();\n"},
		{"definition", "void iris_getModelSpaceVertexPosition() {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manager(t, ReplaceDeclarations("iris"))
			out, err := m.Transform(context.Background(), tt.input)
			require.Empty(t, out)
			require.True(t, errors.IsRejection(err))
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, errors.E2001, e.Code)
		})
	}
}

func TestMatchAttribute(t *testing.T) {
	tests := []struct {
		input     string
		qualifier string
		name      string
		ok        bool
	}{
		{"layout(location = 0) in vec4 a;", "in", "a", true},
		{"layout (location=0) attribute vec4 b;", "attribute", "b", true},
		{"layout(location = 0) out vec4 c;", "out", "c", true},
		{"layout(location = 0) in vec4 d, e;", "", "", false},
		{"in vec4 f;", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree, err := parser.ParseRule(context.Background(), tt.input, parser.ExternalDeclaration)
			require.NoError(t, err)
			qualifier, name, ok := matchAttribute(tree, tree.Root())
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.qualifier, qualifier)
			require.Equal(t, tt.name, name)
		})
	}
}
