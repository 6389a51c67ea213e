// Package errors defines the error types returned by the transformation
// engine, with error codes, source locations and display formatting.
package errors

import (
	"errors"
	"fmt"
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// FatalError is an interface for errors that may or may not be fatal.
type FatalError interface {
	Error() string
	IsFatal() bool
}

// Kind classifies an error by where it comes from.
type Kind int

const (
	// KindInternal is a violated engine invariant.
	KindInternal Kind = iota
	// KindSyntax is input the parser could not read.
	KindSyntax
	// KindRejection is input a phase deliberately refused.
	KindRejection
	// KindConfiguration is a defect in how transformations were set up.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindRejection:
		return "rejected"
	case KindConfiguration:
		return "configuration error"
	default:
		return "internal error"
	}
}

// Sentinels for use with errors.Is. Every *Error matches the sentinel of its
// kind.
var (
	ErrInternal      = errors.New("internal error")
	ErrSyntax        = errors.New("syntax error")
	ErrRejection     = errors.New("rejected")
	ErrConfiguration = errors.New("configuration error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindRejection:
		return ErrRejection
	case KindConfiguration:
		return ErrConfiguration
	default:
		return ErrInternal
	}
}

// Error is the error type returned by the engine.
type Error struct {
	Kind     Kind
	Code     ErrorCode
	Message  string
	Location SourceLocation
	Hint     string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, msg, e.Location)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsFatal reports whether the error is a defect or unreadable input rather
// than a deliberate rejection.
func (e *Error) IsFatal() bool {
	return e.Kind != KindRejection
}

// FriendlyErrorMessage returns the error formatted without color.
func (e *Error) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts the error to a FormattedError for display.
func (e *Error) ToFormatted() *FormattedError {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     e.Kind.String(),
		Message:  msg,
		Filename: e.Location.Filename,
		Line:     e.Location.Line,
		Column:   e.Location.Column,
		Hint:     e.Hint,
	}
	if e.Location.Source != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Location.Line, Text: e.Location.Source, IsMain: true},
		}
	}
	if e.Code != "" {
		fe.Note = e.Code.Description()
	}
	return fe
}

// New returns an error of the given kind.
func New(kind Kind, code ErrorCode, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Syntaxf returns a syntax error at the given location.
func Syntaxf(loc SourceLocation, code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Rejectionf returns a rejection at the given location.
func Rejectionf(loc SourceLocation, code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: KindRejection, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Configurationf returns a configuration error.
func Configurationf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Internalf returns an internal error.
func Internalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Code: E4001, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind that wraps err.
func Wrap(kind Kind, code ErrorCode, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, and false if
// there is none.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindInternal, false
}

// IsRejection reports whether err is, or wraps, a rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejection)
}
