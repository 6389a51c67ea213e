package syntax

import (
	"fmt"
	"strings"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/hashicorp/go-multierror"
)

// Violation is a construct a Validator does not allow.
type Violation struct {
	Code    errors.ErrorCode // E2001 for reserved names, E2002 otherwise
	Message string           // description of the violation
	Node    ast.NodeID       // the offending node
}

// Validator inspects a tree and returns its violations.
// Validators should not modify the tree.
type Validator interface {
	// Validate checks the tree and returns every violation, so that all of
	// them can be reported at once.
	Validate(tree *ast.Tree) []Violation
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Tree) []Violation

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(tree *ast.Tree) []Violation {
	return f(tree)
}

// Locate returns the source location of the first token below node.
func Locate(tree *ast.Tree, node ast.NodeID) errors.SourceLocation {
	tok, stream, ok := tree.FirstToken(node)
	if !ok {
		return errors.SourceLocation{}
	}
	return errors.SourceLocation{
		Filename: stream.File,
		Line:     tok.StartPosition.LineNumber(),
		Column:   tok.StartPosition.ColumnNumber(),
		Source:   stream.LineText(tok.StartPosition),
	}
}

// Rejection returns the violation as a rejection located in tree.
func (v Violation) Rejection(tree *ast.Tree) *errors.Error {
	return errors.Rejectionf(Locate(tree, v.Node), v.Code, "%s", v.Message)
}

// Combine converts violations to rejections and combines them into one
// error. It returns nil when there are no violations and the rejection
// itself when there is one.
func Combine(tree *ast.Tree, violations []Violation) error {
	switch len(violations) {
	case 0:
		return nil
	case 1:
		return violations[0].Rejection(tree)
	}
	result := &multierror.Error{ErrorFormat: formatViolations}
	for _, v := range violations {
		result = multierror.Append(result, v.Rejection(tree))
	}
	return result
}

func formatViolations(errs []error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(errs))
	for _, err := range errs {
		fmt.Fprintf(&b, "  - %s\n", err.Error())
	}
	return b.String()
}

// Check runs every validator over tree and combines their violations.
func Check(tree *ast.Tree, validators ...Validator) error {
	var violations []Violation
	for _, v := range validators {
		violations = append(violations, v.Validate(tree)...)
	}
	return Combine(tree, violations)
}
