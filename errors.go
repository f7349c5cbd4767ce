package specrun

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code 2
// Examples include configuration errors, discovery failures, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// RunFailureError represents a run that completed with failing cases (exit code 1)
type RunFailureError struct {
	Message string
}

func (e *RunFailureError) Error() string {
	return fmt.Sprintf("run failure: %s", e.Message)
}

// NewRunFailureError creates a new RunFailureError
func NewRunFailureError(message string) *RunFailureError {
	return &RunFailureError{Message: message}
}

// IsRunFailureError checks if the error is or wraps a RunFailureError
func IsRunFailureError(err error) bool {
	var failErr *RunFailureError
	return err != nil && errors.As(err, &failErr)
}
