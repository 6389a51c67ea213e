package transform

import (
	"fmt"

	"github.com/cloudcmds/glslx/ast"
)

// InjectionPoint names a position among the top-level children of a
// translation unit at which new nodes are inserted.
type InjectionPoint int

const (
	// BeforeVersion inserts before the version directive, or at the very
	// start if there is none.
	BeforeVersion InjectionPoint = iota
	// BeforeExtensions inserts before the first extension directive,
	// pragma, directive, declaration or function.
	BeforeExtensions
	// BeforeDirectives inserts before the first pragma, directive,
	// declaration or function.
	BeforeDirectives
	// BeforeDeclarations inserts before the first declaration or function.
	BeforeDeclarations
	// BeforeFunctions inserts before the first function definition.
	BeforeFunctions
	// BeforeEOF inserts at the end of the translation unit.
	BeforeEOF
)

var injectionPointNames = map[InjectionPoint]string{
	BeforeVersion:      "before_version",
	BeforeExtensions:   "before_extensions",
	BeforeDirectives:   "before_directives",
	BeforeDeclarations: "before_declarations",
	BeforeFunctions:    "before_functions",
	BeforeEOF:          "before_eof",
}

func (p InjectionPoint) String() string {
	if name, ok := injectionPointNames[p]; ok {
		return name
	}
	return fmt.Sprintf("InjectionPoint(%d)", int(p))
}

// InjectionPoints returns every injection point in order.
func InjectionPoints() []InjectionPoint {
	return []InjectionPoint{
		BeforeVersion, BeforeExtensions, BeforeDirectives,
		BeforeDeclarations, BeforeFunctions, BeforeEOF,
	}
}

// ParseInjectionPoint returns the injection point with the given name, such
// as "before_declarations".
func ParseInjectionPoint(name string) (InjectionPoint, error) {
	for _, p := range InjectionPoints() {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown injection point %q", name)
}

// precedes reports whether nodes of the given kind must come after nodes
// injected at p. Each point's set contains the sets of the points after it.
func (p InjectionPoint) precedes(kind ast.Kind) bool {
	switch kind {
	case ast.FunctionDefinition:
		return p <= BeforeFunctions
	case ast.Declaration, ast.LayoutDefaults, ast.InterfaceBlock,
		ast.FunctionPrototype, ast.EmptyDeclaration:
		return p <= BeforeDeclarations
	case ast.PragmaDirective, ast.Directive:
		return p <= BeforeDirectives
	case ast.ExtensionDirective:
		return p <= BeforeExtensions
	}
	return false
}

// index returns the child index of the translation unit at which nodes
// injected at p are inserted.
func (p InjectionPoint) index(tree *ast.Tree) int {
	root := tree.Root()
	children := tree.Children(root)
	switch p {
	case BeforeVersion:
		for i, c := range children {
			if tree.Kind(c) == ast.VersionDirective {
				return i
			}
		}
		return 0
	case BeforeEOF:
		return len(children)
	}
	eof := len(children)
	for i, c := range children {
		kind := tree.Kind(c)
		if p.precedes(kind) {
			return i
		}
		if kind == ast.EOF && eof == len(children) {
			eof = i
		}
	}
	return eof
}
