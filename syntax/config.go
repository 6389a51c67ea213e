// Package syntax restricts the constructs a shader may use.
//
// A Config selects what is rejected. NewValidator checks a tree against a
// Config, and NewPhase turns any set of validators into a transformation
// phase that rejects the job with every violation it finds.
package syntax

import "strings"

// Config selects the constructs a Validator rejects. The zero value allows
// everything.
type Config struct {
	// Preprocessor
	DisallowExtensions bool // #extension
	DisallowPragmas    bool // #pragma
	DisallowDirectives bool // #define, #ifdef and other directives

	// Declarations
	DisallowStructs         bool // struct specifiers
	DisallowInterfaceBlocks bool // uniform Block { ... } name;
	DisallowLayout          bool // layout(...) qualifiers

	// Control flow
	DisallowLoops   bool // for, while, do
	DisallowSwitch  bool // switch
	DisallowDiscard bool // discard

	// Names
	ReservedNames    []string // names that may not be declared or used
	ReservedPrefixes []string // prefixes no name may start with
}

// Presets for common use cases.
var (
	// Portable rejects constructs that tie a shader to a particular driver:
	// extensions and pragmas.
	Portable = Config{
		DisallowExtensions: true,
		DisallowPragmas:    true,
	}

	// StraightLine rejects loops, switch statements and discard, leaving
	// shaders whose cost does not depend on their input.
	StraightLine = Config{
		DisallowLoops:   true,
		DisallowSwitch:  true,
		DisallowDiscard: true,
	}

	// FullLanguage allows all features (zero value, default behavior).
	FullLanguage = Config{}
)

// Reserved reports whether name is one of the reserved names or starts with
// a reserved prefix.
func (c Config) Reserved(name string) bool {
	for _, r := range c.ReservedNames {
		if name == r {
			return true
		}
	}
	for _, p := range c.ReservedPrefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
