package dccthread

import (
	"errors"
	"fmt"
)

// Sentinel fatal errors, matching the FATAL_* taxonomy of the original
// assignment. Use errors.Is against these to classify a failure.
var (
	// ErrReinit is returned when Init is called more than once.
	ErrReinit = errors.New("dccthread: scheduler already initialized")

	// ErrContext is returned when an execution context cannot be
	// constructed or switched into, including references to an
	// unknown or invalid thread handle.
	ErrContext = errors.New("dccthread: execution context failure")

	// ErrTimer is returned when the preemption timer cannot be armed
	// or disarmed.
	ErrTimer = errors.New("dccthread: preemption timer failure")

	// ErrAlloc is returned when a thread's stack arena cannot be
	// allocated.
	ErrAlloc = errors.New("dccthread: stack allocation failure")

	// ErrDeadlock is returned when the scheduler detects that no
	// thread can ever become RUNNING again.
	ErrDeadlock = errors.New("dccthread: deadlock detected")
)

// FatalError wraps one of the sentinel Err* values with a specific,
// human-readable detail and, where available, the underlying cause.
type FatalError struct {
	Sentinel error
	Detail   string
	Cause    error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Sentinel, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Sentinel, e.Detail)
}

// Unwrap lets errors.Is/errors.As see both the sentinel and the cause.
func (e *FatalError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Sentinel, e.Cause}
	}
	return []error{e.Sentinel}
}

// wrapFatal builds a FatalError around one of the sentinels above.
func wrapFatal(sentinel error, detail string, cause error) error {
	return &FatalError{Sentinel: sentinel, Detail: detail, Cause: cause}
}
