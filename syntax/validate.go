package syntax

import (
	"fmt"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/token"
)

// ConfigValidator validates a tree against a Config.
type ConfigValidator struct {
	config Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(config Config) *ConfigValidator {
	return &ConfigValidator{config: config}
}

// Validate checks the attached part of the tree against the configuration.
func (v *ConfigValidator) Validate(tree *ast.Tree) []Violation {
	var violations []Violation
	for node := range tree.Preorder(tree.Root()) {
		if violation, ok := v.checkNode(tree, node); ok {
			violations = append(violations, violation)
		}
	}
	return violations
}

func disallowed(node ast.NodeID, what string) (Violation, bool) {
	return Violation{
		Code:    errors.E2002,
		Message: what + " are not allowed",
		Node:    node,
	}, true
}

func (v *ConfigValidator) checkNode(tree *ast.Tree, node ast.NodeID) (Violation, bool) {
	c := &v.config
	switch tree.Kind(node) {
	case ast.ExtensionDirective:
		if c.DisallowExtensions {
			return disallowed(node, "extension directives")
		}

	case ast.PragmaDirective:
		if c.DisallowPragmas {
			return disallowed(node, "pragma directives")
		}

	case ast.Directive:
		if c.DisallowDirectives {
			return disallowed(node, "preprocessor directives")
		}

	case ast.StructSpecifier:
		if c.DisallowStructs {
			return disallowed(node, "struct definitions")
		}

	case ast.InterfaceBlock:
		if c.DisallowInterfaceBlocks {
			return disallowed(node, "interface blocks")
		}

	case ast.LayoutQualifier:
		if c.DisallowLayout {
			return disallowed(node, "layout qualifiers")
		}

	case ast.ForStatement, ast.WhileStatement, ast.DoStatement:
		if c.DisallowLoops {
			return disallowed(node, "loops")
		}

	case ast.SwitchStatement:
		if c.DisallowSwitch {
			return disallowed(node, "switch statements")
		}

	case ast.JumpStatement:
		if !c.DisallowDiscard {
			break
		}
		if tok, ok := tree.Token(tree.Child(node, 0)); ok && tok.Type == token.DISCARD {
			return disallowed(node, "discard statements")
		}

	case ast.Identifier, ast.Reference:
		if name := tree.Text(node); c.Reserved(name) {
			return Violation{
				Code:    errors.E2001,
				Message: fmt.Sprintf("name %q is reserved", name),
				Node:    node,
			}, true
		}
	}
	return Violation{}, false
}
