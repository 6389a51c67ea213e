package rewrite

import (
	"fmt"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/transform"
)

var directiveNames = map[string]ast.Kind{
	"version":   ast.VersionDirective,
	"extension": ast.ExtensionDirective,
	"pragma":    ast.PragmaDirective,
	"define":    ast.Directive,
}

// ParseDirectiveKind returns the directive kind with the given name:
// "version", "extension", "pragma" or "define". The last one stands for
// every directive that is not one of the others.
func ParseDirectiveKind(name string) (ast.Kind, error) {
	if kind, ok := directiveNames[name]; ok {
		return kind, nil
	}
	return ast.Invalid, fmt.Errorf("unknown directive kind %q", name)
}

// StripDirectives returns a transformation that removes the top-level
// directives of the given kinds. Without kinds it removes extension and
// pragma directives.
func StripDirectives(name string, kinds ...ast.Kind) *transform.Transformation {
	if len(kinds) == 0 {
		kinds = []ast.Kind{ast.ExtensionDirective, ast.PragmaDirective}
	}
	remove := func(job *transform.Job, node ast.NodeID) error {
		return job.Remove(node)
	}
	p := transform.NewPhase(name).Init(func() error {
		for _, kind := range kinds {
			if !kind.IsDirective() {
				return fmt.Errorf("%s is not a directive kind", kind)
			}
		}
		return nil
	})
	for _, kind := range kinds {
		if kind.IsDirective() {
			p.OnEnter(kind, remove)
		}
	}
	return transform.NewTransformation(name, p)
}
