package experiment

import (
	"errors"
	"fmt"

	"excitond/internal/excitation"
	"excitond/internal/population"
)

// invalidStateError signals an operation attempted from the wrong lifecycle state.
type invalidStateError struct {
	op    string
	state State
}

func (e invalidStateError) Error() string {
	return fmt.Sprintf("cannot %s experiment in state %s", e.op, e.state)
}

// ErrInvalidState constructs an invalidStateError.
func ErrInvalidState(op string, state State) error { return invalidStateError{op: op, state: state} }

// IsInvalidState reports whether err indicates a bad state transition.
func IsInvalidState(err error) bool {
	var e invalidStateError
	return errors.As(err, &e)
}

// configError reports an experiment setting rejected at configure time.
type configError struct{ msg string }

func (e configError) Error() string { return e.msg }

// ErrConfig constructs a configError.
func ErrConfig(format string, args ...any) error {
	return configError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err was caused by invalid configuration,
// including bad generator or population parameters.
func IsConfigError(err error) bool {
	var e configError
	if errors.As(err, &e) {
		return true
	}
	return excitation.IsInvalidParameter(err) ||
		population.IsInvalidParameter(err) ||
		population.IsLengthMismatch(err)
}

// IsDegenerateInput reports whether err was caused by inputs that cannot
// produce excitations, such as an empty time window.
func IsDegenerateInput(err error) bool { return excitation.IsDegenerateInput(err) }
