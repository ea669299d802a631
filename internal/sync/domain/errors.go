package domain

import (
	"errors"
	"fmt"
)

// UnexpectedShapeError reports that a decoded document did not contain a
// field the workflow depends on.
type UnexpectedShapeError struct {
	Source string
	Field  string
}

func (e *UnexpectedShapeError) Error() string {
	return fmt.Sprintf("unexpected shape in %s: missing %s", e.Source, e.Field)
}

// NewUnexpectedShapeError creates a new UnexpectedShapeError.
func NewUnexpectedShapeError(source, field string) *UnexpectedShapeError {
	return &UnexpectedShapeError{
		Source: source,
		Field:  field,
	}
}

// IsUnexpectedShape checks if an error is or wraps an UnexpectedShapeError.
func IsUnexpectedShape(err error) bool {
	var shapeErr *UnexpectedShapeError
	return errors.As(err, &shapeErr)
}

// PatternNotMatchedError reports that a descriptor rewrite found no pinned
// version element to replace.
type PatternNotMatchedError struct {
	Path     string
	Property string
}

func (e *PatternNotMatchedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("no <%s> element found", e.Property)
	}
	return fmt.Sprintf("no <%s> element found in %s", e.Property, e.Path)
}

// IsPatternNotMatched checks if an error is or wraps a PatternNotMatchedError.
func IsPatternNotMatched(err error) bool {
	var pnmErr *PatternNotMatchedError
	return errors.As(err, &pnmErr)
}

// Publish steps, in execution order.
const (
	StepConfigureIdentity = "configure-identity"
	StepCreateBranch      = "create-branch"
	StepRegenerate        = "regenerate"
	StepStage             = "stage"
	StepCommit            = "commit"
	StepPush              = "push"
)

// StepError attributes a branch publishing failure to a single step.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step name carried by err, or "" if err is not a
// StepError.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
