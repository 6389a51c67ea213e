package parser

import (
	"context"
	"testing"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/internal/lexer"
	"github.com/cloudcmds/glslx/token"
	"github.com/stretchr/testify/require"
)

func dumpRule(t *testing.T, input string, rule Rule) string {
	t.Helper()
	tree, err := ParseRule(context.Background(), input, rule)
	require.NoError(t, err)
	return tree.Dump(tree.Root())
}

func TestDeclaration(t *testing.T) {
	tree, err := Parse(context.Background(), "a;")
	require.NoError(t, err)
	require.Equal(t, `TranslationUnit
  Declaration
    FullySpecifiedType
      TypeSpecifier
        Identifier "a"
    Terminal ";"
  EOF
`, tree.Dump(tree.Root()))
}

func TestLayoutDeclaration(t *testing.T) {
	require.Equal(t, `Declaration
  FullySpecifiedType
    QualifierList
      LayoutQualifier
        Terminal "layout"
        Terminal "("
        LayoutQualifierID
          Identifier "location"
          Terminal "="
          Literal "0"
        Terminal ")"
      Terminal "in"
    TypeSpecifier
      Terminal "vec4"
  Declarator
    Identifier "position"
  Terminal ";"
`, dumpRule(t, "layout(location = 0) in vec4 position;", ExternalDeclaration))
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", `BinaryExpression
  Reference "a"
  Terminal "+"
  BinaryExpression
    Reference "b"
    Terminal "*"
    Reference "c"
`},
		{"a * b + c", `BinaryExpression
  BinaryExpression
    Reference "a"
    Terminal "*"
    Reference "b"
  Terminal "+"
  Reference "c"
`},
		{"a = b = c", `AssignmentExpression
  Reference "a"
  Terminal "="
  AssignmentExpression
    Reference "b"
    Terminal "="
    Reference "c"
`},
		{"-x[0]", `UnaryExpression
  Terminal "-"
  IndexExpression
    Reference "x"
    Terminal "["
    Literal "0"
    Terminal "]"
`},
		{"a ? b : c", `ConditionalExpression
  Reference "a"
  Terminal "?"
  Reference "b"
  Terminal ":"
  Reference "c"
`},
		{"vec4(1.0, x)", `CallExpression
  TypeSpecifier
    Terminal "vec4"
  Terminal "("
  Literal "1.0"
  Terminal ","
  Reference "x"
  Terminal ")"
`},
		{"f(a), b", `SequenceExpression
  CallExpression
    Reference "f"
    Terminal "("
    Reference "a"
    Terminal ")"
  Terminal ","
  Reference "b"
`},
		{"v.xyz++", `PostfixExpression
  MemberExpression
    Reference "v"
    Terminal "."
    Identifier "xyz"
  Terminal "++"
`},
		{"(a || b) && !c", `BinaryExpression
  GroupExpression
    Terminal "("
    BinaryExpression
      Reference "a"
      Terminal "||"
      Reference "b"
    Terminal ")"
  Terminal "&&"
  UnaryExpression
    Terminal "!"
    Reference "c"
`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, dumpRule(t, tt.input, Expression))
		})
	}
}

func TestTopLevelKinds(t *testing.T) {
	input := `#version 330 core
#extension GL_ARB_foo : enable
#pragma optimize(off)
#define SCALE 2.0
precision highp float;
layout(std140) uniform;
uniform Block { vec4 a; float b[2]; } blk;
struct Light { vec3 pos; vec3 color; } light;
float f(in float x, vec2 y[2]);
;
void main() {}
`
	tree, err := Parse(context.Background(), input)
	require.NoError(t, err)
	var kinds []ast.Kind
	for _, c := range tree.Children(tree.Root()) {
		kinds = append(kinds, tree.Kind(c))
	}
	require.Equal(t, []ast.Kind{
		ast.VersionDirective,
		ast.ExtensionDirective,
		ast.PragmaDirective,
		ast.Directive,
		ast.Declaration,
		ast.LayoutDefaults,
		ast.InterfaceBlock,
		ast.Declaration,
		ast.FunctionPrototype,
		ast.EmptyDeclaration,
		ast.FunctionDefinition,
		ast.EOF,
	}, kinds)
	require.Len(t, tree.FindAll(tree.Root(), ast.StructSpecifier), 1)
	require.Len(t, tree.FindAll(tree.Root(), ast.Parameter), 2)
}

func TestStatements(t *testing.T) {
	input := `
void main() {
	int total = 0;
	for (int i = 0; i < 4; i++) {
		if (i == 2) continue; else total += i;
	}
	while (total > 10) total--;
	do { total = total / 2; } while (total > 100);
	switch (total) {
	case 1:
		break;
	default:
		discard;
	}
	Light l;
	gl_FragColor = vec4(float(total));
	return;
}
`
	tree, err := Parse(context.Background(), input)
	require.NoError(t, err)
	root := tree.Root()
	for kind, count := range map[ast.Kind]int{
		ast.ForStatement:         1,
		ast.IfStatement:          1,
		ast.WhileStatement:       1,
		ast.DoStatement:          1,
		ast.SwitchStatement:      1,
		ast.CaseLabel:            2,
		ast.JumpStatement:        4,
		ast.DeclarationStatement: 3,
		ast.CompoundStatement:    4,
	} {
		require.Len(t, tree.FindAll(root, kind), count, kind.String())
	}
}

func TestLeavesCoverVisibleTokens(t *testing.T) {
	input := "uniform float t; // time\nvoid main() { gl_Position = vec4(t) * 2.0; }\n"
	tree, err := Parse(context.Background(), input)
	require.NoError(t, err)
	stream := tree.Stream(0)
	var visible []int
	for _, tok := range stream.Tokens {
		if !tok.Hidden() {
			visible = append(visible, tok.Index)
		}
	}
	var leaves []int
	for leaf := range tree.Leaves(tree.Root()) {
		_, tok := tree.Leaf(leaf)
		leaves = append(leaves, tok)
	}
	require.Equal(t, visible, leaves)
}

func TestFragmentHasNoEOF(t *testing.T) {
	tree, err := ParseRule(context.Background(), "x = 1;", Statement)
	require.NoError(t, err)
	require.Equal(t, ast.ExpressionStatement, tree.Kind(tree.Root()))
	require.Empty(t, tree.FindAll(tree.Root(), ast.EOF))
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rule    Rule
		code    errors.ErrorCode
		message string
	}{
		{"missing semicolon", "foo", TranslationUnit, errors.E1005, `(expected ";")`},
		{"illegal character", "§", TranslationUnit, errors.E1002, "unexpected character"},
		{"unexpected token", "a b c;", TranslationUnit, errors.E1001, `unexpected "c" while parsing declaration`},
		{"missing expression", "x = ;", Statement, errors.E1004, "expected expression"},
		{"trailing input", "a b", Expression, errors.E1009, `unexpected "b" after expression`},
		{"unclosed block", "void main() {", TranslationUnit, errors.E1005, "while parsing block"},
		{"bad assignment", "1 = a", Expression, errors.E1003, "invalid assignment target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(context.Background(), tt.input, tt.rule)
			require.Error(t, err)
			require.ErrorIs(t, err, errors.ErrSyntax)
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, tt.code, e.Code)
			require.Contains(t, e.Message, tt.message)
		})
	}
}

func TestErrorLocation(t *testing.T) {
	_, err := Parse(context.Background(), "float x;\na b c;", WithFilename("shader.fsh"))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.SourceLocation{
		Filename: "shader.fsh",
		Line:     2,
		Column:   5,
		Source:   "a b c;",
	}, e.Location)
	require.Contains(t, e.FriendlyErrorMessage(), "--> shader.fsh:2:5")
}

func TestErrorListener(t *testing.T) {
	var reported []*errors.Error
	_, err := Parse(context.Background(), "a b c; d e f; float ok;",
		WithErrorListener(func(e *errors.Error) { reported = append(reported, e) }))
	require.Error(t, err)
	require.Len(t, reported, 2)

	var collected SyntaxErrors
	require.ErrorAs(t, err, &collected)
	require.Len(t, collected, 2)
	require.Equal(t, reported[0], collected[0])
	require.ErrorIs(t, err, errors.ErrSyntax)
	require.Contains(t, err.Error(), "(and 1 more)")
	require.Contains(t, collected.FriendlyErrorMessage(), "found 2 errors")
}

func TestErrorListenerLimit(t *testing.T) {
	input := ""
	for range MaxErrors + 5 {
		input += "a b c;\n"
	}
	var count int
	_, err := Parse(context.Background(), input, WithErrorListener(func(*errors.Error) { count++ }))
	require.Error(t, err)
	require.Equal(t, MaxErrors, count)
}

func TestMaxDepth(t *testing.T) {
	_, err := ParseRule(context.Background(), "((((((a))))))", Expression, WithMaxDepth(5))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.E1008, e.Code)

	_, err = ParseRule(context.Background(), "((((((a))))))", Expression)
	require.NoError(t, err)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, "a; b;")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewFromStream(t *testing.T) {
	stream, err := lexer.Tokenize("vec3 n;", "n.glsl")
	require.NoError(t, err)
	tree, err := New(stream).Parse(context.Background(), TranslationUnit)
	require.NoError(t, err)
	decl := tree.Child(tree.Root(), 0)
	require.Equal(t, "vec3 n;", tree.Text(decl))
	tok, ok := tree.Token(tree.FirstChild(tree.FirstChild(decl, ast.Declarator), ast.Identifier))
	require.True(t, ok)
	require.Equal(t, token.Type(token.IDENT), tok.Type)
	require.Equal(t, "n.glsl", tok.StartPosition.File)
}

func TestRuleString(t *testing.T) {
	require.Equal(t, "statement", Statement.String())
	require.Equal(t, "Rule(9)", Rule(9).String())
}
