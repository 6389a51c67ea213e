package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/transform"
	"github.com/stretchr/testify/require"
)

const example = `
transform "strip_directives" "compat" {
  kinds = ["pragma"]
}

transform "inject" "header" {
  point        = "before_declarations"
  declarations = ["uniform float ${var.prefix}time;"]
  after        = ["compat"]
}

transform "rename" "frag" {
  names = { gl_FragColor = "fragColor" }
}

transform "replace_references" "pos" {
  name       = "gl_Vertex"
  expression = "iris_getModelSpaceVertexPosition()"
}

transform "replace_declarations" "iris" {}

reserved {
  names    = ["iris_Position"]
  prefixes = ["glslx_"]
}
`

func parse(t *testing.T, src string, options ...Option) *Pipeline {
	t.Helper()
	p, err := Parse("test.hcl", []byte(src), options...)
	require.NoError(t, err)
	return p
}

func apply(t *testing.T, p *Pipeline, src string) (string, error) {
	t.Helper()
	m := transform.New()
	require.NoError(t, p.Apply(m))
	return m.Transform(context.Background(), src)
}

func TestParseExample(t *testing.T) {
	p := parse(t, example, WithVariables(map[string]string{"prefix": "u_"}))
	require.Len(t, p.Steps, 5)

	var types, names []string
	for _, s := range p.Steps {
		types = append(types, s.Type)
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"strip_directives", "inject", "rename", "replace_references", "replace_declarations"}, types)
	require.Equal(t, []string{"compat", "header", "frag", "pos", "iris"}, names)
	require.Equal(t, []string{"compat"}, p.Step("header").After)
	require.Empty(t, p.Step("frag").After)
	require.NotNil(t, p.Reserved)
	require.Equal(t, p.Reserved, p.Step(ReservedStep))
	require.Nil(t, p.Step("missing"))
}

func TestExampleTransform(t *testing.T) {
	p := parse(t, example, WithVariables(map[string]string{"prefix": "u_"}))
	out, err := apply(t, p, "void main() {\n\tgl_FragColor = vec4(1.0);\n}\n")
	require.NoError(t, err)
	require.Equal(t, "uniform float u_time;\nvoid main() {\n\tfragColor = vec4(1.0);\n}\n", out)
}

func TestExampleRejectsReservedNames(t *testing.T) {
	p := parse(t, example, WithVariables(map[string]string{"prefix": "u_"}))
	_, err := apply(t, p, "float glslx_x;\n")
	require.True(t, errors.IsRejection(err))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E2001, e.Code)
}

func TestPlanOrder(t *testing.T) {
	p := parse(t, `
transform "inject" "b" {
  declarations = ["float b;"]
  after        = ["a"]
}

transform "rename" "a" {
  names = { x = "y" }
}

reserved {
  prefixes = ["glslx_"]
}
`)
	m := transform.New()
	require.NoError(t, p.Apply(m))
	plan, err := m.Plan(nil)
	require.NoError(t, err)
	var names []string
	for _, phase := range plan.Phases() {
		names = append(names, phase.Name())
	}
	require.Equal(t, []string{ReservedStep, "a", "b"}, names)
	require.Len(t, plan.Levels(), 3)
}

func TestVariables(t *testing.T) {
	src := `
variable "prefix" {
  default = "g_"
}

transform "inject" "header" {
  declarations = ["uniform float ${var.prefix}time;"]
}
`
	tests := []struct {
		name     string
		vars     map[string]string
		expected string
	}{
		{"default", nil, "uniform float g_time;\nfloat x;\n"},
		{"override", map[string]string{"prefix": "u_"}, "uniform float u_time;\nfloat x;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parse(t, src, WithVariables(tt.vars))
			out, err := apply(t, p, "float x;\n")
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestVariableWithoutValue(t *testing.T) {
	_, err := Parse("test.hcl", []byte(`variable "prefix" {}`))
	require.ErrorIs(t, err, errors.ErrConfiguration)
	require.Contains(t, err.Error(), `variable "prefix" has no value`)
}

func TestUnknownType(t *testing.T) {
	_, err := Parse("test.hcl", []byte(`transform "renam" "x" {}`))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E3004, e.Code)
	require.Equal(t, `did you mean "rename"?`, e.Hint)
	require.Equal(t, "test.hcl", e.Location.Filename)
	require.Equal(t, 1, e.Location.Line)
}

func TestInvalidSteps(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			"duplicate name",
			"transform \"rename\" \"a\" {\n  names = {}\n}\ntransform \"validate\" \"a\" {}\n",
			`duplicate transform name "a"`,
		},
		{
			"reserved name",
			"transform \"validate\" \"reserved\" {}\n",
			`duplicate transform name "reserved"`,
		},
		{
			"unknown after",
			"transform \"validate\" \"check\" {}\ntransform \"validate\" \"b\" {\n  after = [\"chek\"]\n}\n",
			`transform "b" runs after unknown transform "chek"`,
		},
		{
			"unknown point",
			"transform \"inject\" \"a\" {\n  point = \"nowhere\"\n  declarations = []\n}\n",
			`unknown injection point "nowhere"`,
		},
		{
			"unknown preset",
			"transform \"validate\" \"a\" {\n  preset = \"strict\"\n}\n",
			`unknown preset "strict"`,
		},
		{
			"unknown construct",
			"transform \"validate\" \"a\" {\n  disallow = [\"goto\"]\n}\n",
			`unknown construct "goto"`,
		},
		{
			"unknown directive kind",
			"transform \"strip_directives\" \"a\" {\n  kinds = [\"include\"]\n}\n",
			"include",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.hcl", []byte(tt.src))
			require.ErrorIs(t, err, errors.ErrConfiguration)
			require.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestUnknownAfterHint(t *testing.T) {
	_, err := Parse("test.hcl", []byte("transform \"validate\" \"check\" {}\ntransform \"validate\" \"b\" {\n  after = [\"chek\"]\n}\n"))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E3005, e.Code)
	require.Equal(t, `did you mean "check"?`, e.Hint)
}

func TestDiagnosticLocation(t *testing.T) {
	src := "transform \"rename\" \"a\" {\n  names = {}\n  bogus = 1\n}\n"
	_, err := Parse("test.hcl", []byte(src))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E3005, e.Code)
	require.Equal(t, "test.hcl", e.Location.Filename)
	require.Equal(t, 3, e.Location.Line)
	require.Equal(t, "  bogus = 1", e.Location.Source)
	require.Contains(t, e.Message, "Unsupported argument")
}

func TestSyntaxErrorLocation(t *testing.T) {
	_, err := Parse("test.hcl", []byte("transform \"rename\" \"a\" {\n  names = \n}\n"))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E3005, e.Code)
	require.Equal(t, "test.hcl", e.Location.Filename)
	require.NotZero(t, e.Location.Line)
}

func TestAfterCycle(t *testing.T) {
	p := parse(t, `
transform "validate" "a" {
  after = ["b"]
}

transform "validate" "b" {
  after = ["a"]
}
`)
	_, err := apply(t, p, "float x;\n")
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E3002, e.Code)
}

func TestValidatePreset(t *testing.T) {
	p := parse(t, `
transform "validate" "portable" {
  preset   = "portable"
  disallow = ["discard"]
}
`)
	_, err := apply(t, p, "#pragma optimize(off)\nvoid main() { discard; }\n")
	require.True(t, errors.IsRejection(err))
	require.Contains(t, err.Error(), "2 validation errors")

	out, err := apply(t, p, "void main() { }\n")
	require.NoError(t, err)
	require.Equal(t, "void main() { }\n", out)
}

func TestTypes(t *testing.T) {
	require.Equal(t, []string{
		"define",
		"inject",
		"rename",
		"replace_declarations",
		"replace_references",
		"strip_directives",
		"validate",
	}, Types())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte("transform \"define\" \"defs\" {\n  defines = [\"A 1\"]\n}\n"), 0o644))
	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, p.Filename)
	out, err := apply(t, p, "float x;\n")
	require.NoError(t, err)
	require.Equal(t, "#define A 1\nfloat x;\n", out)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
