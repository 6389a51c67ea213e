// Package rewrite provides ready-made transformations built on package
// transform.
//
// Every constructor returns a *transform.Transformation that can be
// registered with a transform.Manager or nested in another transformation.
// Fragments given to a constructor are parsed once when the first plan is
// built, so a malformed fragment is reported as a configuration error
// before any input is transformed.
package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/parser"
	"github.com/cloudcmds/glslx/transform"
)

// parseFragment parses src with the given entry rule, outside of any job.
func parseFragment(src string, rule parser.Rule) (*ast.Tree, error) {
	tree, err := parser.ParseRule(context.Background(), src, rule)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", rule, src, err)
	}
	return tree, nil
}

// withNewline terminates src with a newline so that the injected text ends
// its own line.
func withNewline(src string) string {
	if strings.HasSuffix(src, "\n") {
		return src
	}
	return src + "\n"
}

// InjectDeclarations returns a transformation that inserts the external
// declarations at the given point, in order, each on its own line.
func InjectDeclarations(name string, point transform.InjectionPoint, declarations ...string) *transform.Transformation {
	srcs := make([]string, len(declarations))
	for i, d := range declarations {
		srcs[i] = withNewline(d)
	}
	p := transform.NewRunPhase(name, func(job *transform.Job) error {
		return job.InjectExternalDeclarations(point, srcs...)
	}).Init(func() error {
		for _, src := range srcs {
			if _, err := parseFragment(src, parser.ExternalDeclaration); err != nil {
				return err
			}
		}
		return nil
	})
	return transform.NewTransformation(name, p)
}

// InjectDefines returns a transformation that inserts a #define line for
// each definition, such as "SCALE 2.0", at the given point.
func InjectDefines(name string, point transform.InjectionPoint, defines ...string) *transform.Transformation {
	p := transform.NewRunPhase(name, func(job *transform.Job) error {
		return job.InjectDefines(point, defines...)
	})
	return transform.NewTransformation(name, p)
}
