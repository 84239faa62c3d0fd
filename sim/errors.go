package sim

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrUnknownScenario signals a scenario name with no preset.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrUnknownProtocol signals a protocol name that cannot be parsed.
	ErrUnknownProtocol = errors.New("unknown protocol")
	// ErrInvalidOption signals an option value outside its domain.
	ErrInvalidOption = errors.New("invalid option")
	// ErrTerminated signals a step attempted after the simulation reached a
	// terminal state.
	ErrTerminated = errors.New("simulation already terminated")
)

// PanicError wraps a panic recovered while stepping a simulation. Such panics
// are broken invariants, not attack outcomes.
type PanicError struct {
	Cause      any
	stackTrace string
}

func newPanicError(cause any) *PanicError {
	return &PanicError{
		Cause:      cause,
		stackTrace: string(debug.Stack()),
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("simulation panicked: %v\n%v", e.Cause, e.stackTrace)
}

func (e *PanicError) Recovered() any {
	return e.Cause
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
