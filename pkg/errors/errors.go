// Package errors provides structured error handling for Quasar
package errors

import (
	"errors"
	"runtime"

	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotInitialized is returned when a loader operation runs
	// before Init has succeeded
	ErrorTypeNotInitialized ErrorType = "not_initialized"
	// ErrorTypeUnknownColumn is returned when a fill names a column the
	// source does not supply
	ErrorTypeUnknownColumn ErrorType = "unknown_column"
	// ErrorTypeUnsupportedBuffer is returned when a source buffer has no
	// representation the engine can ingest
	ErrorTypeUnsupportedBuffer ErrorType = "unsupported_buffer"
	// ErrorTypeInvalidLimit is returned when index synthesis is asked to
	// generate keys over a non-positive window
	ErrorTypeInvalidLimit ErrorType = "invalid_limit"
	// ErrorTypeMixedKinds is returned when a single source column carries
	// more than one element kind
	ErrorTypeMixedKinds ErrorType = "mixed_column_kinds"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents data processing errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// NotInitialized reports a loader operation attempted before Init.
func NotInitialized(op string) *Error {
	return &Error{
		Type:    ErrorTypeNotInitialized,
		Message: stringpool.Sprintf("%s called before loader initialization", op),
		Stack:   captureStack(2),
	}
}

// UnknownColumn reports a fill request naming a column the source lacks.
func UnknownColumn(name string) *Error {
	e := &Error{
		Type:    ErrorTypeUnknownColumn,
		Message: stringpool.Sprintf("source does not supply column %q", name),
		Stack:   captureStack(2),
	}
	return e.WithDetail("column", name)
}

// UnsupportedBuffer reports a source buffer kind the engine cannot ingest
// into the requested destination.
func UnsupportedBuffer(column, srcKind, destKind string) *Error {
	e := &Error{
		Type:    ErrorTypeUnsupportedBuffer,
		Message: stringpool.Sprintf("column %q: cannot fill %s destination from %s buffer", column, destKind, srcKind),
		Stack:   captureStack(2),
	}
	return e.WithDetail("column", column).WithDetail("source_kind", srcKind).WithDetail("dest_kind", destKind)
}

// InvalidLimit reports a non-positive window passed to index synthesis.
func InvalidLimit(limit int) *Error {
	e := &Error{
		Type:    ErrorTypeInvalidLimit,
		Message: stringpool.Sprintf("index generation requires a positive limit, got %d", limit),
		Stack:   captureStack(2),
	}
	return e.WithDetail("limit", limit)
}

// MixedKinds reports a source column whose elements are not all one kind.
func MixedKinds(column string) *Error {
	e := &Error{
		Type:    ErrorTypeMixedKinds,
		Message: stringpool.Sprintf("column %q mixes element kinds", column),
		Stack:   captureStack(2),
	}
	return e.WithDetail("column", column)
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
