// Package token defines the tokens produced when lexing shader source code.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int
	LineStart int
	Line      int
	Column    int
	File      string
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.LineNumber(), p.ColumnNumber())
	}
	return fmt.Sprintf("%d:%d", p.LineNumber(), p.ColumnNumber())
}

// Token represents one token lexed from the input source code. Index is the
// position of the token within its Stream.
type Token struct {
	Type          Type
	Literal       string
	Index         int
	StartPosition Position
	EndPosition   Position
}

// Hidden reports whether the token is whitespace or a comment. Hidden tokens
// are kept in the stream so that printing reproduces the input exactly, but
// the parser never sees them.
func (t Token) Hidden() bool {
	return t.Type == WHITESPACE || t.Type == COMMENT
}

// Token types
const (
	ILLEGAL    = "ILLEGAL"
	EOF        = "EOF"
	WHITESPACE = "WHITESPACE"
	COMMENT    = "COMMENT"

	// Preprocessor lines. The literal holds the whole line without the
	// terminating newline.
	VERSION   = "#version"
	EXTENSION = "#extension"
	PRAGMA    = "#pragma"
	DIRECTIVE = "#"

	IDENT     = "IDENT"
	TYPE_NAME = "TYPE_NAME"
	INT       = "INT"
	UINT      = "UINT"
	FLOAT     = "FLOAT"
	BOOL      = "BOOL"

	AND            = "&&"
	AND_ASSIGN     = "&="
	AMPERSAND      = "&"
	ASSIGN         = "="
	ASTERISK       = "*"
	BANG           = "!"
	CARET          = "^"
	COLON          = ":"
	COMMA          = ","
	DEC            = "--"
	EQ             = "=="
	GT             = ">"
	GT_EQUALS      = ">="
	INC            = "++"
	LBRACE         = "{"
	LBRACKET       = "["
	LPAREN         = "("
	LT             = "<"
	LT_EQUALS      = "<="
	MINUS          = "-"
	MINUS_ASSIGN   = "-="
	MOD            = "%"
	MOD_ASSIGN     = "%="
	MUL_ASSIGN     = "*="
	NOT_EQ         = "!="
	OR             = "||"
	OR_ASSIGN      = "|="
	PERIOD         = "."
	PIPE           = "|"
	PLUS           = "+"
	PLUS_ASSIGN    = "+="
	QUESTION       = "?"
	RBRACE         = "}"
	RBRACKET       = "]"
	RPAREN         = ")"
	SEMICOLON      = ";"
	SHL            = "<<"
	SHL_ASSIGN     = "<<="
	SHR            = ">>"
	SHR_ASSIGN     = ">>="
	SLASH          = "/"
	SLASH_ASSIGN   = "/="
	TILDE          = "~"
	XOR            = "^^"
	XOR_ASSIGN     = "^="
	ATTRIBUTE      = "ATTRIBUTE"
	BREAK          = "BREAK"
	BUFFER         = "BUFFER"
	CASE           = "CASE"
	CENTROID       = "CENTROID"
	COHERENT       = "COHERENT"
	CONST          = "CONST"
	CONTINUE       = "CONTINUE"
	DEFAULT        = "DEFAULT"
	DISCARD        = "DISCARD"
	DO             = "DO"
	ELSE           = "ELSE"
	FLAT           = "FLAT"
	FOR            = "FOR"
	HIGHP          = "HIGHP"
	IF             = "IF"
	IN             = "IN"
	INOUT          = "INOUT"
	INVARIANT      = "INVARIANT"
	LAYOUT         = "LAYOUT"
	LOWP           = "LOWP"
	MEDIUMP        = "MEDIUMP"
	NOPERSPECTIVE  = "NOPERSPECTIVE"
	OUT            = "OUT"
	PATCH          = "PATCH"
	PRECISE        = "PRECISE"
	PRECISION      = "PRECISION"
	READONLY       = "READONLY"
	RESTRICT       = "RESTRICT"
	RETURN         = "RETURN"
	SAMPLE         = "SAMPLE"
	SHARED         = "SHARED"
	SMOOTH         = "SMOOTH"
	STRUCT         = "STRUCT"
	SUBROUTINE     = "SUBROUTINE"
	SWITCH         = "SWITCH"
	UNIFORM        = "UNIFORM"
	VARYING        = "VARYING"
	VOLATILE       = "VOLATILE"
	WHILE          = "WHILE"
	WRITEONLY      = "WRITEONLY"
)

// Reserved keywords
var keywords = map[string]Type{
	"attribute":     ATTRIBUTE,
	"break":         BREAK,
	"buffer":        BUFFER,
	"case":          CASE,
	"centroid":      CENTROID,
	"coherent":      COHERENT,
	"const":         CONST,
	"continue":      CONTINUE,
	"default":       DEFAULT,
	"discard":       DISCARD,
	"do":            DO,
	"else":          ELSE,
	"false":         BOOL,
	"flat":          FLAT,
	"for":           FOR,
	"highp":         HIGHP,
	"if":            IF,
	"in":            IN,
	"inout":         INOUT,
	"invariant":     INVARIANT,
	"layout":        LAYOUT,
	"lowp":          LOWP,
	"mediump":       MEDIUMP,
	"noperspective": NOPERSPECTIVE,
	"out":           OUT,
	"patch":         PATCH,
	"precise":       PRECISE,
	"precision":     PRECISION,
	"readonly":      READONLY,
	"restrict":      RESTRICT,
	"return":        RETURN,
	"sample":        SAMPLE,
	"shared":        SHARED,
	"smooth":        SMOOTH,
	"struct":        STRUCT,
	"subroutine":    SUBROUTINE,
	"switch":        SWITCH,
	"true":          BOOL,
	"uniform":       UNIFORM,
	"varying":       VARYING,
	"volatile":      VOLATILE,
	"while":         WHILE,
	"writeonly":     WRITEONLY,
}

// qualifiers are the keywords that may appear in a type qualifier list.
var qualifiers = map[Type]bool{
	ATTRIBUTE:     true,
	BUFFER:        true,
	CENTROID:      true,
	COHERENT:      true,
	CONST:         true,
	FLAT:          true,
	HIGHP:         true,
	IN:            true,
	INOUT:         true,
	INVARIANT:     true,
	LAYOUT:        true,
	LOWP:          true,
	MEDIUMP:       true,
	NOPERSPECTIVE: true,
	OUT:           true,
	PATCH:         true,
	PRECISE:       true,
	READONLY:      true,
	RESTRICT:      true,
	SAMPLE:        true,
	SHARED:        true,
	SMOOTH:        true,
	SUBROUTINE:    true,
	UNIFORM:       true,
	VARYING:       true,
	VOLATILE:      true,
	WRITEONLY:     true,
}

// IsQualifier reports whether tokens of type t start or continue a type
// qualifier list.
func IsQualifier(t Type) bool {
	return qualifiers[t]
}

// IsDirective reports whether t is one of the preprocessor line types.
func IsDirective(t Type) bool {
	switch t {
	case VERSION, EXTENSION, PRAGMA, DIRECTIVE:
		return true
	}
	return false
}

// LookupIdentifier determines whether an identifier is a keyword, a built-in
// type name or a plain identifier.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	if IsBuiltinType(identifier) {
		return TYPE_NAME
	}
	return IDENT
}
