package population

import (
	"errors"
	"fmt"
)

// invalidParameterError reports a physical parameter outside its domain.
type invalidParameterError struct {
	name  string
	value float64
}

func (e invalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %g", e.name, e.value)
}

// ErrInvalidParameter constructs an invalidParameterError.
func ErrInvalidParameter(name string, value float64) error {
	return invalidParameterError{name: name, value: value}
}

// IsInvalidParameter reports whether err was caused by a bad physical parameter.
func IsInvalidParameter(err error) bool {
	var e invalidParameterError
	return errors.As(err, &e)
}

// lengthMismatchError signals coordinate arrays of different lengths.
type lengthMismatchError struct{ nx, ny int }

func (e lengthMismatchError) Error() string {
	return fmt.Sprintf("x coordinate list and y coordinate list must have the same length: %d != %d", e.nx, e.ny)
}

// IsLengthMismatch reports whether err indicates mismatched coordinate arrays.
func IsLengthMismatch(err error) bool {
	var e lengthMismatchError
	return errors.As(err, &e)
}
