package rewrite

import (
	"maps"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/parser"
	"github.com/cloudcmds/glslx/transform"
)

// Rename returns a transformation that renames every declared or referenced
// name found in names to its mapped value. Member names after a period and
// layout qualifier names are left alone.
func Rename(name string, names map[string]string) *transform.Transformation {
	names = maps.Clone(names)
	rename := func(job *transform.Job, node ast.NodeID) error {
		tree := job.Tree()
		to, ok := names[tree.Text(node)]
		if !ok {
			return nil
		}
		switch tree.Kind(tree.Parent(node)) {
		case ast.MemberExpression, ast.LayoutQualifierID:
			return nil
		}
		return job.Replace(node, tree.NewSynthetic(tree.Kind(node), to))
	}
	p := transform.NewPhase(name).
		OnEnter(ast.Identifier, rename).
		OnEnter(ast.Reference, rename)
	return transform.NewTransformation(name, p)
}

// ReplaceReferences returns a transformation that replaces every reference
// to target with the expression. The expression is parenthesized where an
// operator around the reference would otherwise bind into it.
func ReplaceReferences(name, target, expression string) *transform.Transformation {
	var composite bool
	p := transform.NewPhase(name).
		Init(func() error {
			tree, err := parseFragment(expression, parser.Expression)
			if err != nil {
				return err
			}
			composite = needsGrouping(tree.Kind(tree.Root()))
			return nil
		}).
		OnEnter(ast.Reference, func(job *transform.Job, node ast.NodeID) error {
			tree := job.Tree()
			if tree.Text(node) != target {
				return nil
			}
			src := expression
			if composite && bindsTightly(tree.Kind(tree.Parent(node))) {
				src = "(" + expression + ")"
			}
			_, err := job.ReplaceWithFragment(node, src, parser.Expression)
			return err
		})
	return transform.NewTransformation(name, p)
}

func needsGrouping(kind ast.Kind) bool {
	switch kind {
	case ast.BinaryExpression, ast.UnaryExpression, ast.AssignmentExpression,
		ast.ConditionalExpression, ast.SequenceExpression:
		return true
	}
	return false
}

// bindsTightly reports whether an operand of a node of this kind must be
// grouped when it is itself an operator expression.
func bindsTightly(parent ast.Kind) bool {
	switch parent {
	case ast.BinaryExpression, ast.UnaryExpression, ast.PostfixExpression,
		ast.ConditionalExpression, ast.IndexExpression, ast.MemberExpression,
		ast.AssignmentExpression:
		return true
	}
	return false
}
