package star

import (
	"errors"
	"fmt"
)

// Domain errors for the evolution engine.
var (
	// ErrUnknownPhase indicates a phase outside the closed enumeration.
	ErrUnknownPhase = errors.New("star: unknown phase")

	// ErrInvalidInitialCondition indicates a malformed or out-of-range
	// initial condition, detected before any state is produced.
	ErrInvalidInitialCondition = errors.New("star: invalid initial condition")

	// ErrInvalidStep indicates a protocol violation when advancing a state
	// (non-positive dt, or a terminal phase).
	ErrInvalidStep = errors.New("star: invalid integration step")

	// ErrNonPhysicalState indicates an evolution rule produced a negative or
	// non-finite physical quantity. This is a bug in the rule, never clamped.
	ErrNonPhysicalState = errors.New("star: non-physical state")

	// ErrRunnerTerminated indicates a step was requested from a runner that
	// already reached a terminal phase or exhausted its budget.
	ErrRunnerTerminated = errors.New("star: runner terminated")

	// ErrNotFound indicates a trajectory store lookup missed.
	ErrNotFound = errors.New("star: trajectory not found")
)

// Error wraps a domain error with the offending star and time-step index so
// batch reports can identify exactly where a run failed.
type Error struct {
	StarID  string
	Step    int
	State   *StateVector
	Wrapped error
}

func (e *Error) Error() string {
	if e.State != nil {
		return fmt.Sprintf("star %s step %d (age=%.4f phase=%s): %v",
			e.StarID, e.Step, e.State.Age, e.State.Phase, e.Wrapped)
	}
	return fmt.Sprintf("star %s step %d: %v", e.StarID, e.Step, e.Wrapped)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// WrapError attaches star and step context to err.
func WrapError(starID string, step int, state *StateVector, err error) error {
	if err == nil {
		return nil
	}
	return &Error{StarID: starID, Step: step, State: state, Wrapped: err}
}
