package excitation

import (
	"errors"
	"fmt"
)

// invalidParameterError reports a generator or profile parameter outside its domain.
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

// IsInvalidParameter reports whether err was caused by a bad parameter.
func IsInvalidParameter(err error) bool {
	var e invalidParameterError
	return errors.As(err, &e)
}

// degenerateInputError signals inputs that cannot produce a meaningful event
// stream, such as an empty time window.
type degenerateInputError struct{ msg string }

func (e degenerateInputError) Error() string { return e.msg }

// ErrDegenerateInput constructs a degenerateInputError.
func ErrDegenerateInput(msg string) error { return degenerateInputError{msg: msg} }

// IsDegenerateInput reports whether err indicates degenerate generator input.
func IsDegenerateInput(err error) bool {
	var e degenerateInputError
	return errors.As(err, &e)
}

func checkWindow(startS, endS float64) error {
	if !(endS > startS) {
		return ErrDegenerateInput(fmt.Sprintf("source must generate excitations for some time period: start_s=%g end_s=%g", startS, endS))
	}
	return nil
}

func checkCount(n int) error {
	if n < 0 {
		return ErrInvalidParameter("n_excitations", float64(n))
	}
	return nil
}
