package parser

import (
	"github.com/cloudcmds/glslx/ast"
	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/token"
)

// Declaration and statement parsing methods for the Parser.
// This file contains methods that parse:
// - Directives and external declarations
// - Qualifiers, type specifiers, structs and interface blocks
// - Function prototypes and definitions
// - Statements and blocks

var directiveKinds = map[token.Type]ast.Kind{
	token.VERSION:   ast.VersionDirective,
	token.EXTENSION: ast.ExtensionDirective,
	token.PRAGMA:    ast.PragmaDirective,
	token.DIRECTIVE: ast.Directive,
}

func (p *Parser) parseExternalDeclaration() ast.NodeID {
	if kind, ok := directiveKinds[p.curToken.Type]; ok {
		return p.leaf(kind)
	}
	switch p.curToken.Type {
	case token.SEMICOLON:
		return p.tree.AddNode(ast.EmptyDeclaration, p.terminal())
	case token.PRECISION:
		return p.parsePrecision()
	}
	return p.parseDeclaration(true)
}

// parseDeclaration parses a declaration that starts at the current token.
// Function prototypes and definitions are only recognized when external is
// set.
func (p *Parser) parseDeclaration(external bool) ast.NodeID {
	quals := ast.NoNode
	if token.IsQualifier(p.curToken.Type) {
		if quals = p.parseQualifierList(); quals == ast.NoNode {
			return ast.NoNode
		}
		// layout(std140) uniform;
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			return p.tree.AddNode(ast.LayoutDefaults, quals, p.terminal())
		}
		// uniform Block { ... } instance;
		if p.peekTokenIs(token.IDENT) && p.peekAt(2).Type == token.LBRACE {
			p.nextToken()
			return p.parseInterfaceBlock(quals)
		}
		p.nextToken()
	}
	spec := p.parseTypeSpecifier()
	if spec == ast.NoNode {
		return ast.NoNode
	}
	fullType := p.tree.AddNode(ast.FullySpecifiedType, quals, spec)
	switch {
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken()
		return p.tree.AddNode(ast.Declaration, fullType, p.terminal())
	case external && p.peekTokenIs(token.IDENT) && p.peekAt(2).Type == token.LPAREN:
		return p.parseFunction(fullType)
	case !p.peekTokenIs(token.IDENT):
		p.peekError("declaration", token.SEMICOLON, p.peekToken)
		return ast.NoNode
	}
	return p.parseInitDeclaratorList(fullType)
}

func (p *Parser) parseInitDeclaratorList(fullType ast.NodeID) ast.NodeID {
	items := []ast.NodeID{fullType}
	for {
		if !p.expectPeek("declaration", token.IDENT) {
			return ast.NoNode
		}
		decl := p.parseDeclarator(true)
		if decl == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, decl)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		items = append(items, p.terminal())
	}
	if !p.expectPeek("declaration", token.SEMICOLON) {
		return ast.NoNode
	}
	items = append(items, p.terminal())
	return p.tree.AddNode(ast.Declaration, items...)
}

// parseDeclarator parses a declared name with an optional array specifier
// and, if allowed, an initializer.
func (p *Parser) parseDeclarator(initializer bool) ast.NodeID {
	items := []ast.NodeID{p.leaf(ast.Identifier)}
	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		arr := p.parseArraySpecifier()
		if arr == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, arr)
	}
	if initializer && p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		items = append(items, p.terminal())
		p.nextToken()
		init, ok := p.parseExpression(SEQUENCE)
		if !ok {
			return ast.NoNode
		}
		items = append(items, init)
	}
	return p.tree.AddNode(ast.Declarator, items...)
}

func (p *Parser) parsePrecision() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	p.nextToken()
	switch p.curToken.Type {
	case token.HIGHP, token.MEDIUMP, token.LOWP:
		items = append(items, p.terminal())
	default:
		p.tokenError(p.curToken, errors.E1001, "unexpected %s while parsing precision statement (expected precision qualifier)",
			tokenDescription(p.curToken))
		return ast.NoNode
	}
	p.nextToken()
	spec := p.parseTypeSpecifier()
	if spec == ast.NoNode {
		return ast.NoNode
	}
	if !p.expectPeek("precision statement", token.SEMICOLON) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.Declaration, append(items, spec, p.terminal())...)
}

func (p *Parser) parseQualifierList() ast.NodeID {
	var items []ast.NodeID
	for {
		if p.curTokenIs(token.LAYOUT) {
			layout := p.parseLayoutQualifier()
			if layout == ast.NoNode {
				return ast.NoNode
			}
			items = append(items, layout)
		} else {
			items = append(items, p.terminal())
		}
		if !token.IsQualifier(p.peekToken.Type) {
			break
		}
		p.nextToken()
	}
	return p.tree.AddNode(ast.QualifierList, items...)
}

func (p *Parser) parseLayoutQualifier() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	if !p.expectPeek("layout qualifier", token.LPAREN) {
		return ast.NoNode
	}
	items = append(items, p.terminal())
	for {
		p.nextToken()
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.SHARED) {
			p.tokenError(p.curToken, errors.E1006, "unexpected %s while parsing layout qualifier (expected identifier)",
				tokenDescription(p.curToken))
			return ast.NoNode
		}
		id := []ast.NodeID{p.leaf(ast.Identifier)}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			id = append(id, p.terminal())
			p.nextToken()
			value, ok := p.parseExpression(SEQUENCE)
			if !ok {
				return ast.NoNode
			}
			id = append(id, value)
		}
		items = append(items, p.tree.AddNode(ast.LayoutQualifierID, id...))
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		items = append(items, p.terminal())
	}
	if !p.expectPeek("layout qualifier", token.RPAREN) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.LayoutQualifier, append(items, p.terminal())...)
}

// parseTypeSpecifier parses a built-in type, a user type name or a struct,
// followed by an optional array specifier.
func (p *Parser) parseTypeSpecifier() ast.NodeID {
	var base ast.NodeID
	switch p.curToken.Type {
	case token.TYPE_NAME:
		base = p.terminal()
	case token.IDENT:
		base = p.leaf(ast.Identifier)
	case token.STRUCT:
		if base = p.parseStructSpecifier(); base == ast.NoNode {
			return ast.NoNode
		}
	case token.EOF:
		p.tokenError(p.curToken, errors.E1005, "unexpected end of file (expected type)")
		return ast.NoNode
	default:
		p.tokenError(p.curToken, errors.E1001, "unexpected %s (expected type)", tokenDescription(p.curToken))
		return ast.NoNode
	}
	arr := ast.NoNode
	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		if arr = p.parseArraySpecifier(); arr == ast.NoNode {
			return ast.NoNode
		}
	}
	return p.tree.AddNode(ast.TypeSpecifier, base, arr)
}

// parseArraySpecifier parses one or more bracket pairs, each with an
// optional size expression.
func (p *Parser) parseArraySpecifier() ast.NodeID {
	var items []ast.NodeID
	for {
		items = append(items, p.terminal())
		if !p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			size, ok := p.parseExpression(LOWEST)
			if !ok {
				return ast.NoNode
			}
			items = append(items, size)
		}
		if !p.expectPeek("array specifier", token.RBRACKET) {
			return ast.NoNode
		}
		items = append(items, p.terminal())
		if !p.peekTokenIs(token.LBRACKET) {
			break
		}
		p.nextToken()
	}
	return p.tree.AddNode(ast.ArraySpecifier, items...)
}

func (p *Parser) parseStructSpecifier() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		items = append(items, p.leaf(ast.Identifier))
	}
	if !p.expectPeek("struct", token.LBRACE) {
		return ast.NoNode
	}
	members := p.parseMembers("struct")
	if members == nil {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.StructSpecifier, append(items, members...)...)
}

func (p *Parser) parseInterfaceBlock(quals ast.NodeID) ast.NodeID {
	items := []ast.NodeID{quals, p.leaf(ast.Identifier)}
	p.nextToken()
	members := p.parseMembers("interface block")
	if members == nil {
		return ast.NoNode
	}
	items = append(items, members...)
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		instance := p.parseDeclarator(false)
		if instance == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, instance)
	}
	if !p.expectPeek("interface block", token.SEMICOLON) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.InterfaceBlock, append(items, p.terminal())...)
}

// parseMembers parses the braced member list of a struct or interface
// block, returning the braces and the members. It returns nil on error.
func (p *Parser) parseMembers(context string) []ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	for !p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.EOF) {
			p.peekError(context, token.RBRACE, p.peekToken)
			return nil
		}
		p.nextToken()
		member := p.parseStructMember()
		if member == ast.NoNode {
			return nil
		}
		items = append(items, member)
	}
	p.nextToken()
	return append(items, p.terminal())
}

func (p *Parser) parseStructMember() ast.NodeID {
	quals := ast.NoNode
	if token.IsQualifier(p.curToken.Type) {
		if quals = p.parseQualifierList(); quals == ast.NoNode {
			return ast.NoNode
		}
		p.nextToken()
	}
	spec := p.parseTypeSpecifier()
	if spec == ast.NoNode {
		return ast.NoNode
	}
	items := []ast.NodeID{p.tree.AddNode(ast.FullySpecifiedType, quals, spec)}
	for {
		if !p.expectPeek("member declaration", token.IDENT) {
			return ast.NoNode
		}
		decl := p.parseDeclarator(false)
		if decl == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, decl)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		items = append(items, p.terminal())
	}
	if !p.expectPeek("member declaration", token.SEMICOLON) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.StructMember, append(items, p.terminal())...)
}

func (p *Parser) parseFunction(fullType ast.NodeID) ast.NodeID {
	p.nextToken()
	name := p.leaf(ast.Identifier)
	p.nextToken()
	params := p.parseParameterList()
	if params == ast.NoNode {
		return ast.NoNode
	}
	switch {
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken()
		return p.tree.AddNode(ast.FunctionPrototype, fullType, name, params, p.terminal())
	case p.peekTokenIs(token.LBRACE):
		p.nextToken()
		body := p.parseCompoundStatement()
		if body == ast.NoNode {
			return ast.NoNode
		}
		return p.tree.AddNode(ast.FunctionDefinition, fullType, name, params, body)
	}
	p.peekError("function declaration", token.LBRACE, p.peekToken)
	return ast.NoNode
}

func (p *Parser) parseParameterList() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		param := p.parseParameter()
		if param == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		items = append(items, p.terminal())
	}
	if !p.expectPeek("parameter list", token.RPAREN) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.ParameterList, append(items, p.terminal())...)
}

func (p *Parser) parseParameter() ast.NodeID {
	quals := ast.NoNode
	if token.IsQualifier(p.curToken.Type) {
		if quals = p.parseQualifierList(); quals == ast.NoNode {
			return ast.NoNode
		}
		p.nextToken()
	}
	spec := p.parseTypeSpecifier()
	if spec == ast.NoNode {
		return ast.NoNode
	}
	items := []ast.NodeID{p.tree.AddNode(ast.FullySpecifiedType, quals, spec)}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		decl := p.parseDeclarator(false)
		if decl == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, decl)
	}
	return p.tree.AddNode(ast.Parameter, items...)
}

// isDeclarationStart reports whether the statement at the current token is
// a declaration rather than an expression statement.
func (p *Parser) isDeclarationStart() bool {
	switch {
	case token.IsQualifier(p.curToken.Type), p.curTokenIs(token.STRUCT):
		return true
	case p.curTokenIs(token.TYPE_NAME):
		return !p.peekTokenIs(token.LPAREN)
	case p.curTokenIs(token.IDENT):
		return p.peekTokenIs(token.IDENT)
	}
	return false
}

func (p *Parser) parseStatement() ast.NodeID {
	if p.ctx != nil && p.ctx.Err() != nil {
		return ast.NoNode
	}
	if !p.enter() {
		p.leave()
		return ast.NoNode
	}
	defer p.leave()

	if kind, ok := directiveKinds[p.curToken.Type]; ok {
		return p.leaf(kind)
	}
	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseCompoundStatement()
	case token.SEMICOLON:
		return p.tree.AddNode(ast.EmptyStatement, p.terminal())
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDo()
	case token.SWITCH:
		return p.parseSwitch()
	case token.CASE, token.DEFAULT:
		return p.parseCaseLabel()
	case token.BREAK, token.CONTINUE, token.DISCARD, token.RETURN:
		return p.parseJump()
	case token.PRECISION:
		return p.declarationStatement(p.parsePrecision())
	}
	if p.isDeclarationStart() {
		return p.declarationStatement(p.parseDeclaration(false))
	}
	return p.parseExpressionStatement()
}

func (p *Parser) declarationStatement(decl ast.NodeID) ast.NodeID {
	if decl == ast.NoNode {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.DeclarationStatement, decl)
}

func (p *Parser) parseExpressionStatement() ast.NodeID {
	expr, ok := p.parseExpression(LOWEST)
	if !ok {
		return ast.NoNode
	}
	if !p.expectPeek("statement", token.SEMICOLON) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.ExpressionStatement, expr, p.terminal())
}

func (p *Parser) parseCompoundStatement() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	for !p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.EOF) {
			p.peekError("block", token.RBRACE, p.peekToken)
			return ast.NoNode
		}
		p.nextToken()
		stmt := p.parseStatement()
		if stmt == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, stmt)
	}
	p.nextToken()
	return p.tree.AddNode(ast.CompoundStatement, append(items, p.terminal())...)
}

// parseCondition parses "( expression )" following a keyword and returns
// the three nodes.
func (p *Parser) parseCondition(context string) []ast.NodeID {
	if !p.expectPeek(context, token.LPAREN) {
		return nil
	}
	lparen := p.terminal()
	p.nextToken()
	cond, ok := p.parseExpression(LOWEST)
	if !ok {
		return nil
	}
	if !p.expectPeek(context, token.RPAREN) {
		return nil
	}
	return []ast.NodeID{lparen, cond, p.terminal()}
}

func (p *Parser) parseIf() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	cond := p.parseCondition("if statement")
	if cond == nil {
		return ast.NoNode
	}
	items = append(items, cond...)
	p.nextToken()
	body := p.parseStatement()
	if body == ast.NoNode {
		return ast.NoNode
	}
	items = append(items, body)
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		items = append(items, p.terminal())
		p.nextToken()
		els := p.parseStatement()
		if els == ast.NoNode {
			return ast.NoNode
		}
		items = append(items, els)
	}
	return p.tree.AddNode(ast.IfStatement, items...)
}

func (p *Parser) parseFor() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	if !p.expectPeek("for statement", token.LPAREN) {
		return ast.NoNode
	}
	items = append(items, p.terminal())
	p.nextToken()
	init := p.parseStatement()
	if init == ast.NoNode {
		return ast.NoNode
	}
	items = append(items, init)
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		cond, ok := p.parseExpression(LOWEST)
		if !ok {
			return ast.NoNode
		}
		items = append(items, cond)
	}
	if !p.expectPeek("for statement", token.SEMICOLON) {
		return ast.NoNode
	}
	items = append(items, p.terminal())
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		next, ok := p.parseExpression(LOWEST)
		if !ok {
			return ast.NoNode
		}
		items = append(items, next)
	}
	if !p.expectPeek("for statement", token.RPAREN) {
		return ast.NoNode
	}
	items = append(items, p.terminal())
	p.nextToken()
	body := p.parseStatement()
	if body == ast.NoNode {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.ForStatement, append(items, body)...)
}

func (p *Parser) parseWhile() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	cond := p.parseCondition("while statement")
	if cond == nil {
		return ast.NoNode
	}
	p.nextToken()
	body := p.parseStatement()
	if body == ast.NoNode {
		return ast.NoNode
	}
	items = append(append(items, cond...), body)
	return p.tree.AddNode(ast.WhileStatement, items...)
}

func (p *Parser) parseDo() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	p.nextToken()
	body := p.parseStatement()
	if body == ast.NoNode {
		return ast.NoNode
	}
	items = append(items, body)
	if !p.expectPeek("do statement", token.WHILE) {
		return ast.NoNode
	}
	items = append(items, p.terminal())
	cond := p.parseCondition("do statement")
	if cond == nil {
		return ast.NoNode
	}
	items = append(items, cond...)
	if !p.expectPeek("do statement", token.SEMICOLON) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.DoStatement, append(items, p.terminal())...)
}

func (p *Parser) parseSwitch() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	cond := p.parseCondition("switch statement")
	if cond == nil {
		return ast.NoNode
	}
	items = append(items, cond...)
	if !p.expectPeek("switch statement", token.LBRACE) {
		return ast.NoNode
	}
	body := p.parseCompoundStatement()
	if body == ast.NoNode {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.SwitchStatement, append(items, body)...)
}

func (p *Parser) parseCaseLabel() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	if p.curTokenIs(token.CASE) {
		p.nextToken()
		value, ok := p.parseExpression(LOWEST)
		if !ok {
			return ast.NoNode
		}
		items = append(items, value)
	}
	if !p.expectPeek("case label", token.COLON) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.CaseLabel, append(items, p.terminal())...)
}

func (p *Parser) parseJump() ast.NodeID {
	items := []ast.NodeID{p.terminal()}
	if p.curTokenIs(token.RETURN) && !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		value, ok := p.parseExpression(LOWEST)
		if !ok {
			return ast.NoNode
		}
		items = append(items, value)
	}
	if !p.expectPeek("jump statement", token.SEMICOLON) {
		return ast.NoNode
	}
	return p.tree.AddNode(ast.JumpStatement, append(items, p.terminal())...)
}
