package parser

import (
	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/token"
)

// Expression parsing methods for the Parser.
// This file contains methods that parse expression constructs:
// - References, literals and constructors
// - Prefix, infix, assignment and ternary expressions
// - Grouped expressions and initializer lists
// - Calls, indexing, member access and postfix operators

// parseExpression parses an expression whose operators all bind tighter
// than precedence. On return curToken is the last token of the expression.
func (p *Parser) parseExpression(precedence int) (ast.NodeID, bool) {
	if !p.enter() {
		p.leave()
		return ast.NoNode, false
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return ast.NoNode, false
	}
	left, ok := prefix()
	if !ok {
		return ast.NoNode, false
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left, true
		}
		p.nextToken()
		if left, ok = infix(left); !ok {
			return ast.NoNode, false
		}
	}
	return left, true
}

func (p *Parser) parseReference() (ast.NodeID, bool) {
	return p.leaf(ast.Reference), true
}

func (p *Parser) parseLiteral() (ast.NodeID, bool) {
	return p.leaf(ast.Literal), true
}

// parseConstructor parses the type of a constructor call such as vec4(...)
// or float[2](...). The call itself is parsed as an infix expression.
func (p *Parser) parseConstructor() (ast.NodeID, bool) {
	spec := p.parseTypeSpecifier()
	if spec == ast.NoNode {
		return ast.NoNode, false
	}
	if !p.peekTokenIs(token.LPAREN) {
		p.peekError("constructor", token.LPAREN, p.peekToken)
		return ast.NoNode, false
	}
	return spec, true
}

func (p *Parser) parsePrefixExpr() (ast.NodeID, bool) {
	op := p.terminal()
	p.nextToken()
	right, ok := p.parseExpression(PREFIX)
	if !ok {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.UnaryExpression, op, right), true
}

func (p *Parser) parseInfixExpr(left ast.NodeID) (ast.NodeID, bool) {
	precedence := p.currentPrecedence()
	op := p.terminal()
	p.nextToken()
	right, ok := p.parseExpression(precedence)
	if !ok {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.BinaryExpression, left, op, right), true
}

// parseAssign parses an assignment. Assignment is right associative, so
// the right hand side may itself be an assignment.
func (p *Parser) parseAssign(left ast.NodeID) (ast.NodeID, bool) {
	if !p.tree.Kind(left).IsExpression() || p.tree.Kind(left) == ast.Literal {
		p.tokenError(p.curToken, errors.E1003, "invalid assignment target")
		return ast.NoNode, false
	}
	op := p.terminal()
	p.nextToken()
	right, ok := p.parseExpression(ASSIGN - 1)
	if !ok {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.AssignmentExpression, left, op, right), true
}

func (p *Parser) parseTernary(cond ast.NodeID) (ast.NodeID, bool) {
	question := p.terminal()
	p.nextToken()
	then, ok := p.parseExpression(LOWEST)
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("conditional expression", token.COLON) {
		return ast.NoNode, false
	}
	colon := p.terminal()
	p.nextToken()
	els, ok := p.parseExpression(ASSIGN - 1)
	if !ok {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.ConditionalExpression, cond, question, then, colon, els), true
}

func (p *Parser) parseSequence(left ast.NodeID) (ast.NodeID, bool) {
	comma := p.terminal()
	p.nextToken()
	right, ok := p.parseExpression(SEQUENCE)
	if !ok {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.SequenceExpression, left, comma, right), true
}

func (p *Parser) parseGroupedExpr() (ast.NodeID, bool) {
	lparen := p.terminal()
	p.nextToken()
	inner, ok := p.parseExpression(LOWEST)
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("parenthesized expression", token.RPAREN) {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.GroupExpression, lparen, inner, p.terminal()), true
}

// parseInitializerList parses a brace initializer. A trailing comma is
// allowed.
func (p *Parser) parseInitializerList() (ast.NodeID, bool) {
	items := []ast.NodeID{p.terminal()}
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		item, ok := p.parseExpression(SEQUENCE)
		if !ok {
			return ast.NoNode, false
		}
		items = append(items, item)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		items = append(items, p.terminal())
	}
	if !p.expectPeek("initializer list", token.RBRACE) {
		return ast.NoNode, false
	}
	items = append(items, p.terminal())
	return p.tree.AddNode(ast.InitializerList, items...), true
}

func (p *Parser) parseCall(callee ast.NodeID) (ast.NodeID, bool) {
	items := []ast.NodeID{callee, p.terminal()}
	// f(void) declares no arguments
	if p.peekToken.Literal == "void" && p.peekAt(2).Type == token.RPAREN {
		p.nextToken()
		items = append(items, p.terminal())
	}
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		arg, ok := p.parseExpression(SEQUENCE)
		if !ok {
			return ast.NoNode, false
		}
		items = append(items, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		items = append(items, p.terminal())
	}
	if !p.expectPeek("call arguments", token.RPAREN) {
		return ast.NoNode, false
	}
	items = append(items, p.terminal())
	return p.tree.AddNode(ast.CallExpression, items...), true
}

func (p *Parser) parseIndex(left ast.NodeID) (ast.NodeID, bool) {
	lbracket := p.terminal()
	p.nextToken()
	index, ok := p.parseExpression(LOWEST)
	if !ok {
		return ast.NoNode, false
	}
	if !p.expectPeek("index expression", token.RBRACKET) {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.IndexExpression, left, lbracket, index, p.terminal()), true
}

func (p *Parser) parseMember(left ast.NodeID) (ast.NodeID, bool) {
	period := p.terminal()
	if !p.expectPeek("member access", token.IDENT) {
		return ast.NoNode, false
	}
	return p.tree.AddNode(ast.MemberExpression, left, period, p.leaf(ast.Identifier)), true
}

func (p *Parser) parsePostfix(left ast.NodeID) (ast.NodeID, bool) {
	return p.tree.AddNode(ast.PostfixExpression, left, p.terminal()), true
}
