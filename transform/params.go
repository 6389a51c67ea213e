package transform

import "reflect"

// JobParameters are the inputs of one transform call that conditional
// transformations read while setting up their graphs. Plans built for fixed
// parameters are cached and reused for equal parameters; plans for
// parameters that are not fixed are rebuilt on every call.
type JobParameters interface {
	Fixed() bool
}

// Fixed wraps a comparable value as fixed job parameters. Two Fixed values
// select the same cached plan when their values are equal.
type Fixed[T comparable] struct {
	Value T
}

// Fixed always returns true.
func (Fixed[T]) Fixed() bool { return true }

// NonFixed parameters disable plan caching.
type NonFixed struct{}

// Fixed always returns false.
func (NonFixed) Fixed() bool { return false }

// ValueOf returns the value held by fixed parameters of type Fixed[T], and
// false if params holds something else.
func ValueOf[T comparable](params JobParameters) (T, bool) {
	f, ok := params.(Fixed[T])
	return f.Value, ok
}

// isFixed reports whether a plan built for params may be reused. Absent
// parameters count as fixed.
func isFixed(params JobParameters) bool {
	return params == nil || params.Fixed()
}

// isComparable reports whether params can be used as a map key without
// panicking. Fixed[any] holding a slice is fixed but not comparable.
func isComparable(params JobParameters) bool {
	if params == nil {
		return true
	}
	return reflect.ValueOf(params).Comparable()
}
