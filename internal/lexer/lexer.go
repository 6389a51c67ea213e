// Package lexer splits shader source code into tokens.
//
// Unlike most lexers, this one keeps whitespace and comments as tokens so
// that the printer can reproduce the input exactly. Preprocessor lines are
// returned as single tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudcmds/glslx/token"
)

// Lexer holds our object-state.
type Lexer struct {
	// The input string being lexed
	input string

	// Byte offset of the current character
	position int

	// Byte offset of the next character
	readPosition int

	// The current character
	ch rune

	// Size in bytes of the current character
	size int

	// Zero-indexed line number of the current character
	line int

	// Byte offset at which the current line starts
	lineStart int

	// True while only whitespace has been seen on the current line
	lineBegin bool

	// Index of the next token
	index int

	// The name of the file being lexed, if known
	file string
}

// State is a snapshot of the lexer position.
type State struct {
	position     int
	readPosition int
	ch           rune
	size         int
	line         int
	lineStart    int
	lineBegin    bool
	index        int
}

// New returns a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input, lineBegin: true}
	l.readChar()
	return l
}

// SetFilename sets the name of the file being lexed.
func (l *Lexer) SetFilename(file string) {
	l.file = file
}

// Filename returns the name of the file being lexed.
func (l *Lexer) Filename() string {
	return l.file
}

// SaveState returns the current lexer state.
func (l *Lexer) SaveState() State {
	return State{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		size:         l.size,
		line:         l.line,
		lineStart:    l.lineStart,
		lineBegin:    l.lineBegin,
		index:        l.index,
	}
}

// RestoreState resets the lexer to a saved state.
func (l *Lexer) RestoreState(s State) {
	l.position = s.position
	l.readPosition = s.readPosition
	l.ch = s.ch
	l.size = s.size
	l.line = s.line
	l.lineStart = s.lineStart
	l.lineBegin = s.lineBegin
	l.index = s.index
}

// Tokenize lexes the whole input into a stream. It stops at the first
// illegal character, returning the partial stream and the error.
func Tokenize(input, file string) (*token.Stream, error) {
	l := New(input)
	l.SetFilename(file)
	stream := &token.Stream{Source: input, File: file}
	for {
		tok, err := l.Next()
		if err != nil {
			return stream, &Error{Token: tok, Err: err}
		}
		stream.Tokens = append(stream.Tokens, tok)
		if tok.Type == token.EOF {
			return stream, nil
		}
	}
}

// Error is a lexing failure at a specific token.
type Error struct {
	Token token.Token
	Err   error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Next returns the next token, hidden tokens included.
func (l *Lexer) Next() (token.Token, error) {
	start := l.pos()
	var tok token.Token
	switch {
	case l.ch == 0 && l.position >= len(l.input):
		tok = l.newToken(token.EOF, "", start)
	case isWhitespace(l.ch):
		tok = l.readWhitespace(start)
	case l.ch == '#' && l.lineBegin:
		tok = l.readDirective(start)
	case l.ch == '/' && l.peekChar() == '/':
		tok = l.readLineComment(start)
	case l.ch == '/' && l.peekChar() == '*':
		var err error
		tok, err = l.readBlockComment(start)
		if err != nil {
			return tok, err
		}
	case isLetter(l.ch):
		ident := l.readIdentifier()
		tok = l.newToken(token.LookupIdentifier(ident), ident, start)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		var err error
		tok, err = l.readNumber(start)
		if err != nil {
			return tok, err
		}
	default:
		op, ok := l.readOperator()
		if !ok {
			ch := l.ch
			l.readChar()
			tok = l.newToken(token.ILLEGAL, string(ch), start)
			return tok, fmt.Errorf("unexpected character %q", ch)
		}
		tok = l.newToken(token.Type(op), op, start)
	}
	if tok.Type != token.WHITESPACE {
		l.lineBegin = false
	}
	if tok.Type != token.EOF {
		l.index++
	}
	return tok, nil
}

func (l *Lexer) newToken(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       literal,
		Index:         l.index,
		StartPosition: start,
		EndPosition:   l.endPos(),
	}
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.file,
	}
}

// endPos returns the position of the last character consumed.
func (l *Lexer) endPos() token.Position {
	p := l.pos()
	if p.Column > 0 {
		p.Column--
		p.Char--
	}
	return p
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.readPosition
		l.lineBegin = true
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.size = 0
	} else {
		l.ch, l.size = utf8.DecodeRuneInString(l.input[l.readPosition:])
	}
	l.position = l.readPosition
	l.readPosition += l.size
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) readWhitespace(start token.Position) token.Token {
	from := l.position
	for isWhitespace(l.ch) {
		l.readChar()
	}
	return l.newToken(token.WHITESPACE, l.input[from:l.position], start)
}

// readDirective consumes a preprocessor line up to, not including, its
// newline. Backslash-newline continuations are part of the line.
func (l *Lexer) readDirective(start token.Position) token.Token {
	from := l.position
	for l.position < len(l.input) && l.ch != '\n' {
		if l.ch == '\\' && (l.peekChar() == '\n' || l.peekChar() == '\r') {
			l.readChar()
			if l.ch == '\r' && l.peekChar() == '\n' {
				l.readChar()
			}
		}
		l.readChar()
	}
	literal := l.input[from:l.position]
	return l.newToken(directiveType(literal), literal, start)
}

func directiveType(line string) token.Type {
	name := strings.TrimLeft(line[1:], " \t")
	if end := strings.IndexAny(name, " \t\r\n"); end >= 0 {
		name = name[:end]
	}
	switch name {
	case "version":
		return token.VERSION
	case "extension":
		return token.EXTENSION
	case "pragma":
		return token.PRAGMA
	default:
		return token.DIRECTIVE
	}
}

func (l *Lexer) readLineComment(start token.Position) token.Token {
	from := l.position
	for l.ch != '\n' && l.position < len(l.input) {
		l.readChar()
	}
	return l.newToken(token.COMMENT, l.input[from:l.position], start)
}

func (l *Lexer) readBlockComment(start token.Position) (token.Token, error) {
	from := l.position
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		if l.position >= len(l.input) {
			tok := l.newToken(token.ILLEGAL, l.input[from:], start)
			return tok, fmt.Errorf("unterminated block comment")
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	return l.newToken(token.COMMENT, l.input[from:l.position], start), nil
}

func (l *Lexer) readIdentifier() string {
	from := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[from:l.position]
}

func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	from := l.position
	typ := token.Type(token.INT)
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		if !isHexDigit(l.ch) {
			return l.newToken(token.ILLEGAL, l.input[from:l.position], start),
				fmt.Errorf("invalid hexadecimal literal %q", l.input[from:l.position])
		}
		for isHexDigit(l.ch) {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' {
			typ = token.FLOAT
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			typ = token.FLOAT
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			if !isDigit(l.ch) {
				return l.newToken(token.ILLEGAL, l.input[from:l.position], start),
					fmt.Errorf("invalid exponent in %q", l.input[from:l.position])
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	switch {
	case typ == token.INT && (l.ch == 'u' || l.ch == 'U'):
		typ = token.UINT
		l.readChar()
	case l.ch == 'f' || l.ch == 'F':
		typ = token.FLOAT
		l.readChar()
	case (l.ch == 'l' && l.peekChar() == 'f') || (l.ch == 'L' && l.peekChar() == 'F'):
		typ = token.FLOAT
		l.readChar()
		l.readChar()
	}
	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return l.newToken(token.ILLEGAL, l.input[from:l.position], start),
			fmt.Errorf("invalid number literal %q", l.input[from:l.position])
	}
	return l.newToken(typ, l.input[from:l.position], start), nil
}

// operators is ordered longest first so that the first prefix match wins.
var operators = []string{
	"<<=", ">>=",
	"++", "--", "<=", ">=", "==", "!=", "&&", "||", "^^", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"(", ")", "[", "]", "{", "}", ".", ",", ";", ":", "?", "=",
	"+", "-", "*", "/", "%", "<", ">", "!", "~", "&", "|", "^",
}

func (l *Lexer) readOperator() (string, bool) {
	rest := l.input[l.position:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.readChar()
			}
			return op, true
		}
	}
	return "", false
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
