package pipeline

import (
	"bytes"

	"github.com/cloudcmds/glslx/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
)

// location converts an HCL source range to a source location, taking the
// line text from src.
func location(r *hcl.Range, src []byte) errors.SourceLocation {
	if r == nil {
		return errors.SourceLocation{}
	}
	loc := errors.SourceLocation{
		Filename: r.Filename,
		Line:     r.Start.Line,
		Column:   r.Start.Column,
	}
	lines := bytes.Split(src, []byte("\n"))
	if r.Start.Line > 0 && r.Start.Line <= len(lines) {
		loc.Source = string(bytes.TrimRight(lines[r.Start.Line-1], "\r"))
	}
	return loc
}

// diagnosticsError converts the error diagnostics to configuration errors.
// It returns nil when there are none and combines several.
func diagnosticsError(diags hcl.Diagnostics, src []byte) error {
	var result *multierror.Error
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		err := errors.Configurationf(errors.E3005, "%s", msg)
		err.Location = location(d.Subject, src)
		result = multierror.Append(result, err)
	}
	if result == nil {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	return result
}
