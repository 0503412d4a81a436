// Package errors provides structured error types for keyplan.
//
// Every failure raised while preprocessing a config or laying out points
// carries a machine-readable [Code] and, where one exists, the breadcrumb
// path of the offending config field (for example
// "points.zones.matrix.columns.pinky.rows.home.shift").
//
// # Error Codes
//
// Codes follow the taxonomy of the layout engine:
//   - TYPE_MISMATCH, UNEXPECTED_KEY, INVALID_VALUE: schema violations
//   - UNKNOWN_REFERENCE, CIRCULAR_INHERITANCE: unresolvable references
//   - ARITY_MISMATCH, AMBIGUOUS_SPEC, INVALID_TEMPLATE: malformed constructs
//   - INVALID_EXPRESSION: unit/number evaluation failures
//   - DUPLICATE_POINT, NO_INTERSECTION: geometric failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownReference, "unknown point %q", ref).At(path)
//	if errors.Is(err, errors.ErrCodeUnknownReference) {
//	    // Handle missing anchor target
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Schema errors
	ErrCodeTypeMismatch  Code = "TYPE_MISMATCH"
	ErrCodeUnexpectedKey Code = "UNEXPECTED_KEY"
	ErrCodeInvalidValue  Code = "INVALID_VALUE"

	// Reference errors
	ErrCodeUnknownReference    Code = "UNKNOWN_REFERENCE"
	ErrCodeCircularInheritance Code = "CIRCULAR_INHERITANCE"

	// Construct errors
	ErrCodeArityMismatch   Code = "ARITY_MISMATCH"
	ErrCodeAmbiguousSpec   Code = "AMBIGUOUS_SPEC"
	ErrCodeInvalidTemplate Code = "INVALID_TEMPLATE"

	// Evaluation errors
	ErrCodeInvalidExpression Code = "INVALID_EXPRESSION"

	// Geometry errors
	ErrCodeDuplicatePoint Code = "DUPLICATE_POINT"
	ErrCodeNoIntersection Code = "NO_INTERSECTION"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, an optional config path and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Path    string // Breadcrumb of the offending config field (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// At returns a copy of e located at the given config path.
func (e *Error) At(path fmt.Stringer) *Error {
	c := *e
	c.Path = path.String()
	return &c
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetPath extracts the config path from an error, if available.
func GetPath(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Path
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the path and message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Path != "" {
			return e.Path + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
