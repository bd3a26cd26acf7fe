// Panic recovery utilities. Entry points that parse external input or run
// user-supplied stages use Recover to convert unexpected panics into
// structured errors instead of crashing the caller.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is the error produced from a recovered panic. It carries the
// original panic value and the stack captured at recovery time.
type PanicError struct {
	// PanicValue is the value passed to panic().
	PanicValue interface{}

	// StackTrace is the goroutine stack at the time of the panic.
	StackTrace string

	// Operation names the call site that recovered the panic.
	Operation string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil; a PanicError is the root of its chain.
func (e *PanicError) Unwrap() error {
	return nil
}

// String returns the error message followed by the captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError builds a PanicError for the given operation and panic value,
// capturing the current stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error on the named return value. Deferred
// at the top of a function:
//
//	func ReadCSV(path string) (ds *Dataset, err error) {
//	    defer errors.Recover(&err, "dataset.ReadCSV")
//	    ...
//	}
//
// When the function already carries an error the panic information wraps it,
// keeping the original reachable through the chain.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)

		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)",
				operation, r, *err)
		} else {
			*err = panicErr
		}
	}
}

// SafeExecute runs fn and converts any panic into a PanicError. Errors
// returned by fn pass through unchanged.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
