package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Syntax errors
//   - E2xxx: Rejections
//   - E3xxx: Configuration errors
//   - E4xxx: Internal errors
type ErrorCode string

const (
	// Syntax errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1002 ErrorCode = "E1002" // Illegal character
	E1003 ErrorCode = "E1003" // Invalid syntax
	E1004 ErrorCode = "E1004" // Missing expression
	E1005 ErrorCode = "E1005" // Unexpected end of input
	E1006 ErrorCode = "E1006" // Expected identifier
	E1007 ErrorCode = "E1007" // Unclosed delimiter
	E1008 ErrorCode = "E1008" // Maximum nesting depth exceeded
	E1009 ErrorCode = "E1009" // Trailing input after fragment

	// Rejections (E2xxx)
	E2001 ErrorCode = "E2001" // Reserved identifier
	E2002 ErrorCode = "E2002" // Disallowed construct
	E2003 ErrorCode = "E2003" // Unsupported input

	// Configuration errors (E3xxx)
	E3001 ErrorCode = "E3001" // Invalid dependency edge
	E3002 ErrorCode = "E3002" // Dependency cycle
	E3003 ErrorCode = "E3003" // Graph setup failed
	E3004 ErrorCode = "E3004" // Unknown transformation
	E3005 ErrorCode = "E3005" // Invalid pipeline file
	E3006 ErrorCode = "E3006" // Invalid transformation

	// Internal errors (E4xxx)
	E4001 ErrorCode = "E4001" // Engine invariant violated
	E4002 ErrorCode = "E4002" // Invalid edit
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1002: "illegal character",
	E1003: "invalid syntax",
	E1004: "missing expression",
	E1005: "unexpected end of input",
	E1006: "expected identifier",
	E1007: "unclosed delimiter",
	E1008: "maximum nesting depth exceeded",
	E1009: "trailing input after fragment",

	E2001: "reserved identifier",
	E2002: "disallowed construct",
	E2003: "unsupported input",

	E3001: "invalid dependency edge",
	E3002: "dependency cycle",
	E3003: "graph setup failed",
	E3004: "unknown transformation",
	E3005: "invalid pipeline file",
	E3006: "invalid transformation",

	E4001: "engine invariant violated",
	E4002: "invalid edit",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "syntax"
	case '2':
		return "rejection"
	case '3':
		return "configuration"
	case '4':
		return "internal"
	default:
		return "unknown"
	}
}
