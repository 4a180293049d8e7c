package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for building and execution.
var (
	// ErrNoStages indicates Build() was called on an empty pipeline.
	ErrNoStages = errors.New("pipeline has no stages")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// StageError wraps an error with stage context.
// It provides information about which stage failed and what operation
// was attempted.
type StageError struct {
	// Stage is the name of the stage that failed.
	Stage string
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the stage.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from stage execution.
// It includes the stack trace for debugging.
type PanicError struct {
	// Stage is the name of the stage that panicked.
	Stage string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// CancellationError captures the state when execution was cancelled.
// It preserves the state at the point of cancellation for inspection.
type CancellationError struct {
	// Stage is the stage that was about to execute.
	Stage string
	// State is the state at cancellation (can type-assert to the actual type).
	State any
	// Cause is the underlying cancellation cause (context.Canceled or
	// context.DeadlineExceeded).
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before stage %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}
