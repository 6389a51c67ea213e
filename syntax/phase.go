package syntax

import "github.com/cloudcmds/glslx/transform"

// NewPhase returns a phase that runs the validators over the tree before the
// walk of its level. When there are violations the job is rejected with all
// of them.
func NewPhase(name string, validators ...Validator) *transform.Phase {
	return transform.NewRunPhase(name, func(job *transform.Job) error {
		err := Check(job.Tree(), validators...)
		if err != nil {
			job.Logger().Debug().Err(err).Msg("tree failed validation")
		}
		return err
	})
}

// NewTransformation returns a transformation holding a single validation
// phase for config.
func NewTransformation(name string, config Config) *transform.Transformation {
	return transform.NewTransformation(name, NewPhase(name, NewValidator(config)))
}
