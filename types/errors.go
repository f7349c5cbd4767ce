package types

import (
	"errors"
	"fmt"
)

// DiscoveryError indicates a spec tree could not be built. Discovery is a
// collaborator concern; the error is surfaced unchanged apart from context.
type DiscoveryError struct {
	Spec string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery of spec %q failed: %v", e.Spec, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// IsDiscoveryError checks if the error is or wraps a DiscoveryError.
func IsDiscoveryError(err error) bool {
	var discErr *DiscoveryError
	return err != nil && errors.As(err, &discErr)
}

// LifecycleConsistencyError indicates a per-test rediscovery could not
// locate the case being executed: the tree drifted between discovery runs.
// It is fatal for that one case only.
type LifecycleConsistencyError struct {
	Spec string
	Case string
}

func (e *LifecycleConsistencyError) Error() string {
	return fmt.Sprintf("rediscovery of spec %q yielded no case named %q; the spec tree drifted between discoveries", e.Spec, e.Case)
}

// IsLifecycleConsistencyError checks if the error is or wraps a LifecycleConsistencyError.
func IsLifecycleConsistencyError(err error) bool {
	var lcErr *LifecycleConsistencyError
	return err != nil && errors.As(err, &lcErr)
}

// CaseFailureError carries a failure reported by the case runner, including
// recovered panics.
type CaseFailureError struct {
	Case     string
	Err      error
	Panicked bool
}

func (e *CaseFailureError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("case %q panicked: %v", e.Case, e.Err)
	}
	return fmt.Sprintf("case %q failed: %v", e.Case, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *CaseFailureError) Unwrap() error {
	return e.Err
}

// IsCaseFailure checks if the error is or wraps a CaseFailureError.
func IsCaseFailure(err error) bool {
	var caseErr *CaseFailureError
	return err != nil && errors.As(err, &caseErr)
}

// RunFatalError indicates a whole-run-fatal condition: the global setup or
// teardown hook failed, or the pool await bound was exceeded. It is the only
// error re-raised to the caller of Execute, after best-effort cleanup.
type RunFatalError struct {
	Stage string // "setup", "teardown" or "await"
	Err   error
}

func (e *RunFatalError) Error() string {
	return fmt.Sprintf("run %s failed: %v", e.Stage, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *RunFatalError) Unwrap() error {
	return e.Err
}

// IsRunFatal checks if the error is or wraps a RunFatalError.
func IsRunFatal(err error) bool {
	var fatalErr *RunFatalError
	return err != nil && errors.As(err, &fatalErr)
}
