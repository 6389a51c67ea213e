package parser

import "github.com/cloudcmds/glslx/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	SEQUENCE    // ,
	ASSIGN      // = += -= ...
	TERNARY     // ? :
	LOGICAL_OR  // ||
	LOGICAL_XOR // ^^
	LOGICAL_AND // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALS      // == or !=
	LESSGREATER // > or <
	SHIFT       // << or >>
	SUM         // + or -
	PRODUCT     // * / %
	PREFIX      // -X or !X
	POSTFIX     // f(X), a[i], a.b, a++
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.COMMA:        SEQUENCE,
	token.ASSIGN:       ASSIGN,
	token.PLUS_ASSIGN:  ASSIGN,
	token.MINUS_ASSIGN: ASSIGN,
	token.MUL_ASSIGN:   ASSIGN,
	token.SLASH_ASSIGN: ASSIGN,
	token.MOD_ASSIGN:   ASSIGN,
	token.SHL_ASSIGN:   ASSIGN,
	token.SHR_ASSIGN:   ASSIGN,
	token.AND_ASSIGN:   ASSIGN,
	token.XOR_ASSIGN:   ASSIGN,
	token.OR_ASSIGN:    ASSIGN,
	token.QUESTION:     TERNARY,
	token.OR:           LOGICAL_OR,
	token.XOR:          LOGICAL_XOR,
	token.AND:          LOGICAL_AND,
	token.PIPE:         BIT_OR,
	token.CARET:        BIT_XOR,
	token.AMPERSAND:    BIT_AND,
	token.EQ:           EQUALS,
	token.NOT_EQ:       EQUALS,
	token.LT:           LESSGREATER,
	token.LT_EQUALS:    LESSGREATER,
	token.GT:           LESSGREATER,
	token.GT_EQUALS:    LESSGREATER,
	token.SHL:          SHIFT,
	token.SHR:          SHIFT,
	token.PLUS:         SUM,
	token.MINUS:        SUM,
	token.ASTERISK:     PRODUCT,
	token.SLASH:        PRODUCT,
	token.MOD:          PRODUCT,
	token.LPAREN:       POSTFIX,
	token.LBRACKET:     POSTFIX,
	token.PERIOD:       POSTFIX,
	token.INC:          POSTFIX,
	token.DEC:          POSTFIX,
}
