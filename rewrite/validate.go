package rewrite

import (
	"github.com/cloudcmds/glslx/syntax"
	"github.com/cloudcmds/glslx/transform"
)

// Validate returns a transformation that rejects input violating config.
func Validate(name string, config syntax.Config) *transform.Transformation {
	return syntax.NewTransformation(name, config)
}
