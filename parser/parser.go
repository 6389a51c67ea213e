// Package parser builds syntax trees from shader source code.
//
// The parser works on the visible tokens of a token stream produced by the
// lexer; whitespace and comments stay in the stream for the printer but are
// never seen here. Every token the parser consumes becomes a leaf of the
// tree, so the leaves of a parsed tree cover the visible tokens in order.
package parser

import (
	"context"
	"fmt"

	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/internal/lexer"
	"github.com/cloudcmds/glslx/token"
)

type (
	prefixParseFn func() (ast.NodeID, bool)
	infixParseFn  func(ast.NodeID) (ast.NodeID, bool)
)

// Rule selects the grammar rule a parse starts from.
type Rule int

const (
	// TranslationUnit parses a whole shader, ending with an EOF leaf.
	TranslationUnit Rule = iota
	// ExternalDeclaration parses one top level declaration or directive.
	ExternalDeclaration
	// Statement parses one statement.
	Statement
	// Expression parses one expression, commas included.
	Expression
)

func (r Rule) String() string {
	switch r {
	case TranslationUnit:
		return "translation unit"
	case ExternalDeclaration:
		return "external declaration"
	case Statement:
		return "statement"
	case Expression:
		return "expression"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// Parse the provided input as a translation unit and return its tree.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Tree, error) {
	return ParseRule(ctx, input, TranslationUnit, options...)
}

// ParseRule parses the input starting from the given rule. The whole input
// must be consumed by the rule.
func ParseRule(ctx context.Context, input string, rule Rule, options ...Option) (*ast.Tree, error) {
	// Extract filename from options before lexing, so that lexer errors have
	// proper location context.
	var settings Parser
	for _, opt := range options {
		opt(&settings)
	}
	stream, err := lexer.Tokenize(input, settings.filename)
	p := New(stream, options...)
	if err != nil {
		lexErr, ok := err.(*lexer.Error)
		if !ok {
			return nil, err
		}
		p.tokenError(lexErr.Token, errors.E1002, "%s", lexErr.Err.Error())
		return nil, p.errors[0]
	}
	return p.Parse(ctx, rule)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in error locations.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithErrorListener switches the parser to collecting mode. Instead of
// stopping at the first syntax error, the parser skips to the next
// declaration and continues, calling fn for every error, up to MaxErrors.
// The parse still fails.
func WithErrorListener(fn func(*errors.Error)) Option {
	return func(p *Parser) {
		p.listener = fn
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// the token stream being parsed
	stream *token.Stream

	// the tree under construction
	tree *ast.Tree

	// indexes of the visible tokens of the stream
	visible []int

	// position of curToken within visible
	pos int

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token.
	curToken token.Token

	// peekToken holds the next visible token.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []*errors.Error

	// prefixParseFns holds a map of parsing methods for
	// prefix-based syntax.
	prefixParseFns map[token.Type]prefixParseFn

	// infixParseFns holds a map of parsing methods for
	// infix-based syntax.
	infixParseFns map[token.Type]infixParseFn

	// receives every syntax error in collecting mode
	listener func(*errors.Error)

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the given token stream.
func New(stream *token.Stream, options ...Option) *Parser {
	p := &Parser{
		stream:         stream,
		tree:           ast.New(stream),
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
		filename:       stream.File,
	}
	for _, opt := range options {
		opt(p)
	}
	for i, tok := range stream.Tokens {
		if !tok.Hidden() {
			p.visible = append(p.visible, i)
		}
	}
	p.pos = -1
	p.nextToken()

	p.registerPrefix(token.IDENT, p.parseReference)
	p.registerPrefix(token.TYPE_NAME, p.parseConstructor)
	p.registerPrefix(token.INT, p.parseLiteral)
	p.registerPrefix(token.UINT, p.parseLiteral)
	p.registerPrefix(token.FLOAT, p.parseLiteral)
	p.registerPrefix(token.BOOL, p.parseLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.LBRACE, p.parseInitializerList)
	for _, t := range []token.Type{token.MINUS, token.PLUS, token.BANG, token.TILDE, token.INC, token.DEC} {
		p.registerPrefix(t, p.parsePrefixExpr)
	}

	for t, prec := range precedences {
		switch prec {
		case ASSIGN:
			p.registerInfix(t, p.parseAssign)
		case POSTFIX, TERNARY, SEQUENCE:
		default:
			p.registerInfix(t, p.parseInfixExpr)
		}
	}
	p.registerInfix(token.COMMA, p.parseSequence)
	p.registerInfix(token.QUESTION, p.parseTernary)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.LBRACKET, p.parseIndex)
	p.registerInfix(token.PERIOD, p.parseMember)
	p.registerInfix(token.INC, p.parsePostfix)
	p.registerInfix(token.DEC, p.parsePostfix)
	return p
}

// tokenAt returns the visible token at position i, or the last token of the
// stream when i is past the end.
func (p *Parser) tokenAt(i int) token.Token {
	if i < 0 || len(p.visible) == 0 {
		return token.Token{Type: token.EOF, Index: -1}
	}
	if i >= len(p.visible) {
		i = len(p.visible) - 1
	}
	return p.stream.Tokens[p.visible[i]]
}

// nextToken moves to the next visible token, updating all of prevToken,
// curToken, and peekToken.
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	if p.pos < len(p.visible)-1 {
		p.pos++
	}
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
}

// peekAt returns the token n positions after curToken.
func (p *Parser) peekAt(n int) token.Token {
	return p.tokenAt(p.pos + n)
}

// Parse the stream starting from the given rule. With an error listener
// installed, the returned error is a SyntaxErrors when more than one error
// was found.
func (p *Parser) Parse(ctx context.Context, rule Rule) (*ast.Tree, error) {
	p.ctx = ctx
	var root ast.NodeID
	switch rule {
	case TranslationUnit:
		var err error
		if root, err = p.parseTranslationUnit(); err != nil {
			return nil, err
		}
	default:
		root = p.parseFragment(rule)
	}
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case len(p.errors) == 1:
		return nil, p.errors[0]
	case len(p.errors) > 1:
		return nil, SyntaxErrors(p.errors)
	}
	p.tree.SetRoot(root)
	return p.tree, nil
}

func (p *Parser) parseTranslationUnit() (ast.NodeID, error) {
	root := p.tree.AddNode(ast.TranslationUnit)
	for !p.curTokenIs(token.EOF) {
		if err := p.ctx.Err(); err != nil {
			return ast.NoNode, err
		}
		decl := p.parseExternalDeclaration()
		if decl == ast.NoNode {
			if p.listener == nil || p.tooManyErrors() {
				return root, nil
			}
			p.synchronize()
		} else {
			p.tree.AppendChild(root, decl)
		}
		p.nextToken()
	}
	p.tree.AppendChild(root, p.leaf(ast.EOF))
	return root, nil
}

func (p *Parser) parseFragment(rule Rule) ast.NodeID {
	var node ast.NodeID
	switch rule {
	case ExternalDeclaration:
		node = p.parseExternalDeclaration()
	case Statement:
		node = p.parseStatement()
	case Expression:
		node, _ = p.parseExpression(LOWEST)
	default:
		p.tokenError(p.curToken, errors.E4001, "unknown rule %s", rule)
		return ast.NoNode
	}
	if node == ast.NoNode {
		return ast.NoNode
	}
	if !p.peekTokenIs(token.EOF) {
		p.tokenError(p.peekToken, errors.E1009, "unexpected %s after %s",
			tokenDescription(p.peekToken), rule)
		return ast.NoNode
	}
	return node
}

// registerPrefix registers a function for handling a prefix-based expression.
func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers a function for handling an infix-based expression.
func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// addError records an error and reports it to the listener, if any.
func (p *Parser) addError(err *errors.Error) {
	p.errors = append(p.errors, err)
	if p.listener != nil {
		p.listener(err)
	}
}

// tooManyErrors returns true if error limit has been reached.
func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

// synchronize skips tokens until the end of the current declaration.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) {
		p.nextToken()
	}
}

func (p *Parser) location(t token.Token) errors.SourceLocation {
	return errors.SourceLocation{
		Filename: p.filename,
		Line:     t.StartPosition.LineNumber(),
		Column:   t.StartPosition.ColumnNumber(),
		Source:   p.stream.LineText(t.StartPosition),
	}
}

func (p *Parser) tokenError(t token.Token, code errors.ErrorCode, msg string, args ...any) {
	p.addError(errors.Syntaxf(p.location(t), code, msg, args...))
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	switch t.Type {
	case token.EOF:
		p.tokenError(t, errors.E1005, "unexpected end of file (expected expression)")
	case token.ILLEGAL:
		p.tokenError(t, errors.E1002, "illegal token %q", t.Literal)
	default:
		p.tokenError(t, errors.E1004, "invalid syntax (unexpected %s, expected expression)", tokenDescription(t))
	}
}

// peekError raises an error if the next token is not the expected type.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	code := errors.E1001
	if got.Type == token.EOF {
		code = errors.E1005
	}
	p.tokenError(got, code, "unexpected %s while parsing %s (expected %s)",
		tokenDescription(got), context, tokenTypeDescription(expected))
}

// enter increments the nesting depth, failing once the limit is exceeded.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.tokenError(p.curToken, errors.E1008, "maximum nesting depth exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// leaf adds a leaf of the given kind for the current token.
func (p *Parser) leaf(kind ast.Kind) ast.NodeID {
	return p.tree.AddLeaf(kind, 0, p.curToken.Index)
}

// terminal adds a Terminal leaf for the current token.
func (p *Parser) terminal() ast.NodeID {
	return p.leaf(ast.Terminal)
}

// curTokenIs returns true if the current token has the given type.
func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

// peekTokenIs returns true if the next token has the given type.
func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek validates if the next token is of the given type, and advances if
// it is. If it's a different type, then an error is stored.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(context, t, p.peekToken)
	return false
}

// peekPrecedence returns the precedence of the next token.
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// currentPrecedence returns the precedence of the current token.
func (p *Parser) currentPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}
