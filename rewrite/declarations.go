package rewrite

import (
	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/parser"
	"github.com/cloudcmds/glslx/transform"
)

const (
	// PositionFunction computes the model space vertex position. Calls to it
	// replace references to removed position attributes.
	PositionFunction = "iris_getModelSpaceVertexPosition"
	// PositionAttribute is the attribute declared in place of the removed
	// ones.
	PositionAttribute = "iris_Position"
)

// attributePattern is the token sequence of a position attribute
// declaration. Empty entries match any token.
var attributePattern = []string{"layout", "(", "location", "=", "0", ")", "", "vec4", "", ";"}

const (
	qualifierToken = 6
	nameToken      = 8
)

type declarationReplacement struct {
	// removed attribute names to their storage qualifier
	found map[string]string
}

// ReplaceDeclarations returns a transformation that replaces vertex
// position attributes.
//
// Its first phase finds top-level declarations of the form
//
//	layout(location = 0) in vec4 name;
//
// with an in or attribute qualifier and removes them. Declaring
// PositionAttribute that way, or a function named PositionFunction, is
// rejected. When any declaration was removed it declares PositionAttribute
// before the functions and a PositionFunction stub at the end. The second
// phase then replaces references to the removed names with calls to
// PositionFunction.
func ReplaceDeclarations(name string) *transform.Transformation {
	r := &declarationReplacement{found: map[string]string{}}
	find := transform.NewPhase(name+".find").
		ResetState(func() { clear(r.found) }).
		OnEnter(ast.Declaration, r.declaration).
		OnEnter(ast.FunctionPrototype, r.function).
		OnEnter(ast.FunctionDefinition, r.function).
		ActiveAfterWalk(r.active).
		AfterWalk(r.inject)
	replace := transform.NewPhase(name+".replace").
		Activation(r.active).
		OnEnter(ast.Reference, r.reference)
	t := transform.NewTransformation(name)
	t.ChainDependent(find)
	t.ChainDependent(replace)
	return t
}

func (r *declarationReplacement) active(*transform.Job) bool {
	return len(r.found) > 0
}

// matchAttribute reports whether node matches attributePattern and returns
// the storage qualifier and the declared name.
func matchAttribute(tree *ast.Tree, node ast.NodeID) (qualifier, name string, ok bool) {
	var leaves []ast.NodeID
	for leaf := range tree.Leaves(node) {
		if len(leaves) == len(attributePattern) {
			return "", "", false
		}
		leaves = append(leaves, leaf)
	}
	if len(leaves) != len(attributePattern) {
		return "", "", false
	}
	for i, want := range attributePattern {
		if want != "" && tree.Text(leaves[i]) != want {
			return "", "", false
		}
	}
	if tree.Kind(leaves[nameToken]) != ast.Identifier {
		return "", "", false
	}
	return tree.Text(leaves[qualifierToken]), tree.Text(leaves[nameToken]), true
}

func (r *declarationReplacement) declaration(job *transform.Job, node ast.NodeID) error {
	tree := job.Tree()
	if tree.Parent(node) != tree.Root() {
		return nil
	}
	qualifier, name, ok := matchAttribute(tree, node)
	if !ok {
		return nil
	}
	if name == PositionAttribute {
		return job.Reject(node, errors.E2001, "declaration of reserved name %q", name)
	}
	if qualifier != "in" && qualifier != "attribute" {
		return nil
	}
	r.found[name] = qualifier
	job.Logger().Debug().Str("name", name).Msg("removing position attribute")
	return job.Remove(node)
}

func (r *declarationReplacement) function(job *transform.Job, node ast.NodeID) error {
	tree := job.Tree()
	if fn := tree.FirstChild(node, ast.Identifier); fn != ast.NoNode && tree.Text(fn) == PositionFunction {
		return job.Reject(fn, errors.E2001, "declaration of reserved name %q", PositionFunction)
	}
	return nil
}

func (r *declarationReplacement) inject(job *transform.Job) error {
	err := job.InjectExternalDeclaration(transform.BeforeEOF, "void "+PositionFunction+"() { }")
	if err != nil {
		return err
	}
	return job.InjectExternalDeclaration(transform.BeforeFunctions,
		"layout (location = 0) attribute vec4 "+PositionAttribute+";")
}

func (r *declarationReplacement) reference(job *transform.Job, node ast.NodeID) error {
	if _, ok := r.found[job.Tree().Text(node)]; !ok {
		return nil
	}
	_, err := job.ReplaceWithFragment(node, PositionFunction+"()", parser.Expression)
	return err
}
