// Package pipeline loads HCL pipeline files that configure a set of
// transformations.
//
// A pipeline file holds one transform block per transformation. Each block
// names a built-in type and an instance name:
//
//	variable "prefix" {
//	  default = "glslx_"
//	}
//
//	transform "inject" "header" {
//	  point        = "before_declarations"
//	  declarations = ["uniform float ${var.prefix}time;"]
//	  after        = ["compat"]
//	}
//
//	transform "strip_directives" "compat" {}
//
//	reserved {
//	  prefixes = ["glslx_"]
//	}
//
// Blocks run concurrently unless "after" names the instances that must run
// first. A reserved block adds a validation step that runs before every
// other step. Expressions may refer to variables as var.name; values given
// with WithVariables override the defaults of variable blocks.
package pipeline

import (
	"fmt"
	"os"

	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/syntax"
	"github.com/cloudcmds/glslx/transform"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
)

// ReservedStep is the name of the validation step added by a reserved block.
const ReservedStep = "reserved"

// Step is one configured transformation of a pipeline.
type Step struct {
	Type           string
	Name           string
	After          []string
	Transformation *transform.Transformation
}

// Pipeline is a loaded pipeline file.
type Pipeline struct {
	Filename string
	Steps    []*Step
	// Reserved is the validation step of the reserved block, if any.
	Reserved *Step
}

// Option is a configuration function for loading a pipeline.
type Option func(*loader)

// WithVariables sets variable values, overriding the defaults declared in
// the file.
func WithVariables(vars map[string]string) Option {
	return func(l *loader) {
		for k, v := range vars {
			l.vars[k] = v
		}
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

type fileRoot struct {
	Variables  []*variableBlock  `hcl:"variable,block"`
	Transforms []*transformBlock `hcl:"transform,block"`
	Reserved   *reservedBlock    `hcl:"reserved,block"`
}

type variableBlock struct {
	Name    string  `hcl:"name,label"`
	Default *string `hcl:"default,optional"`
}

type transformBlock struct {
	Type string   `hcl:"type,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// transformCommon holds the attributes every transform block accepts.
type transformCommon struct {
	After  []string `hcl:"after,optional"`
	Remain hcl.Body `hcl:",remain"`
}

type reservedBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type reservedConfig struct {
	Names    []string `hcl:"names,optional"`
	Prefixes []string `hcl:"prefixes,optional"`
}

type loader struct {
	filename string
	src      []byte
	vars     map[string]string
	logger   zerolog.Logger
}

// Load reads and parses the pipeline file at path.
func Load(path string, options ...Option) (*Pipeline, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, src, options...)
}

// Parse parses a pipeline file. The filename is used in error locations.
func Parse(filename string, src []byte, options ...Option) (*Pipeline, error) {
	l := &loader{
		filename: filename,
		src:      src,
		vars:     map[string]string{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l.load()
}

func (l *loader) load() (*Pipeline, error) {
	file, diags := hclparse.NewParser().ParseHCL(l.src, l.filename)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags, l.src)
	}
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, diagnosticsError(diags, l.src)
	}
	ctx, err := l.evalContext(root.Variables)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Filename: l.filename}
	names := map[string]bool{}
	for _, block := range root.Transforms {
		if names[block.Name] || block.Name == ReservedStep {
			return nil, l.errorAt(block.Body, errors.E3005, "duplicate transform name %q", block.Name)
		}
		names[block.Name] = true
		step, err := l.step(block, ctx)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, step)
	}
	for _, step := range p.Steps {
		for _, dep := range step.After {
			if names[dep] {
				continue
			}
			err := errors.Configurationf(errors.E3005, "transform %q runs after unknown transform %q", step.Name, dep)
			err.Hint = errors.FormatSuggestions(errors.SuggestSimilar(dep, p.names()))
			return nil, err
		}
	}
	if root.Reserved != nil {
		var c reservedConfig
		if diags := gohcl.DecodeBody(root.Reserved.Body, ctx, &c); diags.HasErrors() {
			return nil, diagnosticsError(diags, l.src)
		}
		p.Reserved = &Step{
			Type: "validate",
			Name: ReservedStep,
			Transformation: syntax.NewTransformation(ReservedStep, syntax.Config{
				ReservedNames:    c.Names,
				ReservedPrefixes: c.Prefixes,
			}),
		}
	}
	l.logger.Debug().
		Str("file", l.filename).
		Int("steps", len(p.Steps)).
		Bool("reserved", p.Reserved != nil).
		Msg("loaded pipeline")
	return p, nil
}

// evalContext returns the evaluation context that exposes the variables as
// var.name.
func (l *loader) evalContext(blocks []*variableBlock) (*hcl.EvalContext, error) {
	values := map[string]cty.Value{}
	for _, v := range blocks {
		if value, ok := l.vars[v.Name]; ok {
			values[v.Name] = cty.StringVal(value)
			continue
		}
		if v.Default == nil {
			return nil, errors.Configurationf(errors.E3005, "variable %q has no value", v.Name)
		}
		values[v.Name] = cty.StringVal(*v.Default)
	}
	for name, value := range l.vars {
		if _, ok := values[name]; !ok {
			values[name] = cty.StringVal(value)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(values)},
	}, nil
}

func (l *loader) step(block *transformBlock, ctx *hcl.EvalContext) (*Step, error) {
	build, ok := builders[block.Type]
	if !ok {
		err := l.errorAt(block.Body, errors.E3004, "unknown transformation type %q", block.Type)
		err.Hint = errors.FormatSuggestions(errors.SuggestSimilar(block.Type, Types()))
		return nil, err
	}
	var common transformCommon
	if diags := gohcl.DecodeBody(block.Body, ctx, &common); diags.HasErrors() {
		return nil, diagnosticsError(diags, l.src)
	}
	t, diags, err := build(block.Name, common.Remain, ctx)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags, l.src)
	}
	if err != nil {
		return nil, l.errorAt(block.Body, errors.E3005, "transform %q: %s", block.Name, err)
	}
	return &Step{
		Type:           block.Type,
		Name:           block.Name,
		After:          common.After,
		Transformation: t,
	}, nil
}

func (l *loader) errorAt(body hcl.Body, code errors.ErrorCode, format string, args ...any) *errors.Error {
	err := errors.Configurationf(code, format, args...)
	r := body.MissingItemRange()
	err.Location = location(&r, l.src)
	return err
}

func (p *Pipeline) names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}

// Step returns the step with the given name, or nil.
func (p *Pipeline) Step(name string) *Step {
	for _, s := range p.Steps {
		if s.Name == name {
			return s
		}
	}
	if p.Reserved != nil && p.Reserved.Name == name {
		return p.Reserved
	}
	return nil
}

// Transformation returns a transformation that runs the steps of the
// pipeline in the order their after lists require. The validation step of
// a reserved block runs before all of them.
func (p *Pipeline) Transformation() (*transform.Transformation, error) {
	t := transform.NewTransformation(p.Filename)
	if p.Filename == "" {
		t = transform.NewTransformation("pipeline")
	}
	for _, s := range p.Steps {
		t.Add(s.Transformation)
	}
	for _, s := range p.Steps {
		for _, dep := range s.After {
			t.AddDependency(s.Transformation, p.Step(dep).Transformation)
		}
	}
	if p.Reserved != nil {
		t.PrependDependency(p.Reserved.Transformation)
	}
	if err := t.Err(); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", p.Filename, err)
	}
	return t, nil
}

// Apply registers the pipeline with the manager. It runs after the
// transformations registered before it.
func (p *Pipeline) Apply(m *transform.Manager) error {
	t, err := p.Transformation()
	if err != nil {
		return err
	}
	return m.Register(t)
}
