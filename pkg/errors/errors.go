// Package errors provides structured error types for imagepuzzler.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the preview server, and the engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes fall into three groups:
//   - Contract violations raised by the geometry and reveal engine
//     (DEGENERATE_SELECTION, INVALID_SELECTION, INVALID_VARIANT)
//   - Load failures raised at the archive boundary
//     (MALFORMED_PROJECT, MISSING_RASTER)
//   - Generic input, lookup and internal failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDegenerateSelection, "selection %vx%v has no area", w, h)
//	if errors.Is(err, errors.ErrCodeDegenerateSelection) {
//	    // mark the question as failed
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedProject, origErr, "read project.json")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine contract violations
	ErrCodeDegenerateSelection Code = "DEGENERATE_SELECTION"
	ErrCodeInvalidSelection    Code = "INVALID_SELECTION"
	ErrCodeInvalidVariant      Code = "INVALID_VARIANT"

	// Load boundary errors
	ErrCodeMalformedProject Code = "MALFORMED_PROJECT"
	ErrCodeMissingRaster    Code = "MISSING_RASTER"

	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidName       Code = "INVALID_NAME"
	ErrCodeIncompleteProject Code = "INCOMPLETE_PROJECT"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err should be surfaced as a notice rather than
// aborting the surrounding operation. Only MISSING_RASTER qualifies: the item
// is skipped and the rest of the project still loads.
func Recoverable(err error) bool {
	return Is(err, ErrCodeMissingRaster)
}
