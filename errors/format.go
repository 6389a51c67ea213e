package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors in a compiler-like style, optionally colored.
type Formatter struct {
	// UseColor enables ANSI color codes in output. Coloring is also subject
	// to color.NoColor.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = color.New(color.FgRed)
	colorErrorBold = color.New(color.FgHiRed, color.Bold)
	colorCode      = color.New(color.FgHiBlack)
	colorLocation  = color.New(color.FgCyan)
	colorGutter    = color.New(color.FgHiBlack)
	colorCaret     = color.New(color.FgHiRed)
	colorHint      = color.New(color.FgHiYellow)
	colorNote      = color.New(color.FgHiBlue)
)

// FormattedError represents an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "syntax error", "rejected", etc.
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int               // For multi-character underlines
	SourceLines []SourceLineEntry // Lines shown for context
	Hint        string            // "Did you mean?" suggestion
	Note        string            // Additional context
}

// SourceLineEntry represents a line of source code with its number.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool // True if this is the line with the error
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

// Format formats one error.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix formats the error with an optional prefix like "1/5",
// shown in brackets when the error has no code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	width := 2
	if err.Line >= 100 {
		width = len(fmt.Sprintf("%d", err.Line))
	}
	gutter := strings.Repeat(" ", width)

	// Header: "syntax error[E1001]: message"
	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold, label))
	switch {
	case err.Code != "":
		b.WriteString(f.paint(colorCode, "["+string(err.Code)+"]"))
	case prefix != "":
		b.WriteString(f.paint(colorCode, "["+prefix+"]"))
	}
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")

	// Location: "  --> file.glsl:10:5"
	if loc := location(err); loc != "" {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorLocation, "-->"))
		b.WriteString(" ")
		b.WriteString(f.paint(colorLocation, loc))
		b.WriteString("\n")
	}

	if len(err.SourceLines) > 0 {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorGutter, " |"))
		b.WriteString("\n")
		for _, line := range err.SourceLines {
			b.WriteString(f.paint(colorGutter, fmt.Sprintf("%*d | ", width, line.Number)))
			b.WriteString(line.Text)
			b.WriteString("\n")
			if line.IsMain && err.Column > 0 {
				carets := 1
				if err.EndColumn > err.Column {
					carets = err.EndColumn - err.Column + 1
				}
				b.WriteString(gutter)
				b.WriteString(f.paint(colorGutter, " | "))
				b.WriteString(strings.Repeat(" ", err.Column-1))
				b.WriteString(f.paint(colorCaret, strings.Repeat("^", carets)))
				b.WriteString("\n")
			}
		}
	}

	if err.Hint != "" {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorGutter, " = "))
		b.WriteString(f.paint(colorHint, "hint: "))
		b.WriteString(err.Hint)
		b.WriteString("\n")
	}
	if err.Note != "" {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorGutter, " = "))
		b.WriteString(f.paint(colorNote, "note: "))
		b.WriteString(err.Note)
		b.WriteString("\n")
	}
	return b.String()
}

func location(err *FormattedError) string {
	switch {
	case err.Filename != "" && err.Line > 0:
		return fmt.Sprintf("%s:%d:%d", err.Filename, err.Line, err.Column)
	case err.Filename != "":
		return err.Filename
	case err.Line > 0:
		return fmt.Sprintf("%d:%d", err.Line, err.Column)
	}
	return ""
}

// FormatMultiple formats multiple errors, numbering them when there is more
// than one.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}
	var b strings.Builder
	total := len(errs)
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, total)))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorErrorBold, fmt.Sprintf("found %d errors", total)))
	b.WriteString("\n")
	return b.String()
}

// FormatError formats any error. Errors that implement FormattableError use
// their own formatting, errors that wrap several errors are formatted one by
// one, and anything else is shown by its message.
func (f *Formatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	var errs []error
	switch multi := err.(type) {
	case interface{ Unwrap() []error }:
		errs = multi.Unwrap()
	case interface{ WrappedErrors() []error }:
		errs = multi.WrappedErrors()
	default:
		return f.Format(toFormatted(err))
	}
	formatted := make([]*FormattedError, 0, len(errs))
	for _, e := range errs {
		formatted = append(formatted, toFormatted(e))
	}
	return f.FormatMultiple(formatted)
}

func toFormatted(err error) *FormattedError {
	var fe FormattableError
	if errors.As(err, &fe) {
		return fe.ToFormatted()
	}
	return &FormattedError{Kind: "error", Message: err.Error()}
}
