package pipeline

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/rewrite"
	"github.com/cloudcmds/glslx/syntax"
	"github.com/cloudcmds/glslx/transform"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
)

// builder decodes the body of a transform block and builds the
// transformation it describes.
type builder func(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error)

var builders = map[string]builder{
	"inject":               buildInject,
	"define":               buildDefine,
	"rename":               buildRename,
	"replace_references":   buildReplaceReferences,
	"strip_directives":     buildStripDirectives,
	"replace_declarations": buildReplaceDeclarations,
	"validate":             buildValidate,
}

// Types returns the names of the transformation types a pipeline file may
// use, sorted.
func Types() []string {
	return slices.Sorted(maps.Keys(builders))
}

type injectConfig struct {
	Point        string   `hcl:"point,optional"`
	Declarations []string `hcl:"declarations"`
}

type defineConfig struct {
	Point   string   `hcl:"point,optional"`
	Defines []string `hcl:"defines"`
}

type renameConfig struct {
	Names map[string]string `hcl:"names"`
}

type replaceReferencesConfig struct {
	Name       string `hcl:"name"`
	Expression string `hcl:"expression"`
}

type stripDirectivesConfig struct {
	Kinds []string `hcl:"kinds,optional"`
}

type emptyConfig struct{}

type validateConfig struct {
	Preset           string   `hcl:"preset,optional"`
	Disallow         []string `hcl:"disallow,optional"`
	ReservedNames    []string `hcl:"reserved_names,optional"`
	ReservedPrefixes []string `hcl:"reserved_prefixes,optional"`
}

func injectionPoint(name string) (transform.InjectionPoint, error) {
	if name == "" {
		return transform.BeforeDeclarations, nil
	}
	return transform.ParseInjectionPoint(name)
}

func buildInject(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error) {
	var c injectConfig
	if diags := gohcl.DecodeBody(body, ctx, &c); diags.HasErrors() {
		return nil, diags, nil
	}
	point, err := injectionPoint(c.Point)
	if err != nil {
		return nil, nil, err
	}
	return rewrite.InjectDeclarations(name, point, c.Declarations...), nil, nil
}

func buildDefine(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error) {
	var c defineConfig
	if diags := gohcl.DecodeBody(body, ctx, &c); diags.HasErrors() {
		return nil, diags, nil
	}
	point, err := injectionPoint(c.Point)
	if err != nil {
		return nil, nil, err
	}
	return rewrite.InjectDefines(name, point, c.Defines...), nil, nil
}

func buildRename(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error) {
	var c renameConfig
	if diags := gohcl.DecodeBody(body, ctx, &c); diags.HasErrors() {
		return nil, diags, nil
	}
	return rewrite.Rename(name, c.Names), nil, nil
}

func buildReplaceReferences(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error) {
	var c replaceReferencesConfig
	if diags := gohcl.DecodeBody(body, ctx, &c); diags.HasErrors() {
		return nil, diags, nil
	}
	return rewrite.ReplaceReferences(name, c.Name, c.Expression), nil, nil
}

func buildStripDirectives(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error) {
	var c stripDirectivesConfig
	if diags := gohcl.DecodeBody(body, ctx, &c); diags.HasErrors() {
		return nil, diags, nil
	}
	kinds := make([]ast.Kind, 0, len(c.Kinds))
	for _, k := range c.Kinds {
		kind, err := rewrite.ParseDirectiveKind(k)
		if err != nil {
			return nil, nil, err
		}
		kinds = append(kinds, kind)
	}
	return rewrite.StripDirectives(name, kinds...), nil, nil
}

func buildReplaceDeclarations(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error) {
	var c emptyConfig
	if diags := gohcl.DecodeBody(body, ctx, &c); diags.HasErrors() {
		return nil, diags, nil
	}
	return rewrite.ReplaceDeclarations(name), nil, nil
}

var presets = map[string]syntax.Config{
	"":              syntax.FullLanguage,
	"full":          syntax.FullLanguage,
	"portable":      syntax.Portable,
	"straight_line": syntax.StraightLine,
}

var disallowFlags = map[string]func(*syntax.Config){
	"extensions":       func(c *syntax.Config) { c.DisallowExtensions = true },
	"pragmas":          func(c *syntax.Config) { c.DisallowPragmas = true },
	"directives":       func(c *syntax.Config) { c.DisallowDirectives = true },
	"structs":          func(c *syntax.Config) { c.DisallowStructs = true },
	"interface_blocks": func(c *syntax.Config) { c.DisallowInterfaceBlocks = true },
	"layout":           func(c *syntax.Config) { c.DisallowLayout = true },
	"loops":            func(c *syntax.Config) { c.DisallowLoops = true },
	"switch":           func(c *syntax.Config) { c.DisallowSwitch = true },
	"discard":          func(c *syntax.Config) { c.DisallowDiscard = true },
}

func buildValidate(name string, body hcl.Body, ctx *hcl.EvalContext) (*transform.Transformation, hcl.Diagnostics, error) {
	var c validateConfig
	if diags := gohcl.DecodeBody(body, ctx, &c); diags.HasErrors() {
		return nil, diags, nil
	}
	config, ok := presets[c.Preset]
	if !ok {
		return nil, nil, fmt.Errorf("unknown preset %q", c.Preset)
	}
	for _, d := range c.Disallow {
		set, ok := disallowFlags[d]
		if !ok {
			return nil, nil, fmt.Errorf("unknown construct %q", d)
		}
		set(&config)
	}
	config.ReservedNames = c.ReservedNames
	config.ReservedPrefixes = c.ReservedPrefixes
	return rewrite.Validate(name, config), nil, nil
}
