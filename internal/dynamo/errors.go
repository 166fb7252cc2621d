package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solve operations.
var (
	// ErrUnboundTerm indicates a solve with neither a bound nor a supplied term.
	ErrUnboundTerm = errors.New("dynamo: no term bound at construction or supplied at call time")

	// ErrInvalidStepSize indicates a missing or invalid initial step, or step bounds with min > max.
	ErrInvalidStepSize = errors.New("dynamo: invalid step size")

	// ErrNonConvergence indicates the step size controller could not get a step accepted.
	ErrNonConvergence = errors.New("dynamo: solver did not converge")

	// ErrInvalidProblem indicates an integration interval or evaluation grid that cannot be solved.
	ErrInvalidProblem = errors.New("dynamo: invalid problem")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrDimensionMismatch indicates mismatched batch or feature dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrShapeMismatch indicates a compiled program was called with a problem of another shape.
	ErrShapeMismatch = errors.New("dynamo: problem shape differs from compiled shape")
)

// Status is the termination state of one batch element.
type Status int

const (
	Success Status = iota
	Running
	ReachedMaxSteps
	ReachedDtMin
	TooManyRejections
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Running:
		return "running"
	case ReachedMaxSteps:
		return "reached max steps"
	case ReachedDtMin:
		return "reached minimum step size"
	case TooManyRejections:
		return "too many consecutive rejections"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// SolveError wraps a terminal solver failure with the batch element that caused it.
type SolveError struct {
	Status  Status
	Element int
	Step    int
	Time    float64
	Dt      float64
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("element %d, step %d (t=%.6g, dt=%.3g): %s: %v", e.Element, e.Step, e.Time, e.Dt, e.Status, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
