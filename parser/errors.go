package parser

import (
	"fmt"
	"strings"

	"github.com/cloudcmds/glslx/errors"
	"github.com/cloudcmds/glslx/token"
)

func tokenTypeDescription(t token.Type) string {
	switch t {
	case token.EOF:
		return "end of file"
	case token.IDENT:
		return "identifier"
	case token.TYPE_NAME:
		return "type name"
	case token.INT, token.UINT, token.FLOAT, token.BOOL:
		return "literal"
	}
	if s := string(t); strings.ToUpper(s) == s && s[0] >= 'A' && s[0] <= 'Z' {
		return fmt.Sprintf("%q", strings.ToLower(s))
	}
	return fmt.Sprintf("%q", string(t))
}

func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of file"
	default:
		if t.Literal == "" {
			return string(t.Type)
		}
		return fmt.Sprintf("%q", t.Literal)
	}
}

// SyntaxErrors is the error Parse returns when an error listener is
// installed and more than one syntax error was collected. The errors are in
// source order, the same order in which the listener saw them.
type SyntaxErrors []*errors.Error

func (e SyntaxErrors) Error() string {
	switch len(e) {
	case 0:
		return "no syntax errors"
	case 1:
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

// Unwrap exposes the collected errors to errors.Is and errors.As, and to
// errors.Formatter, which prints each of them.
func (e SyntaxErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// FriendlyErrorMessage formats every collected error with its source line.
func (e SyntaxErrors) FriendlyErrorMessage() string {
	return errors.NewFormatter(false).FormatError(e)
}
