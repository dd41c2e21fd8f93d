// Package errors provides structured error types for the Flowmaid application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes map directly to the converter's failure taxonomy:
//   - CYCLIC_HIERARCHY: structural errors that always abort a page
//   - DANGLING_EDGE, UNSUPPORTED_ELEMENT, UNRECOGNIZED_STYLE, RESERVED_WORD:
//     recoverable per-element problems (skipped or substituted in relaxed mode)
//   - DECODE_FAILED, PARSE_FAILED: input acquisition failures
//   - INVALID_*: option/input validation failures
//
// # Usage
//
//	err := errors.NewWithSource(errors.ErrCodeDanglingEdge, id, "edge references unknown node")
//	if errors.Is(err, errors.ErrCodeDanglingEdge) {
//	    // Handle dangling edge
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParseFailed, origErr, "page %d", index)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors (never recovered)
	ErrCodeCyclicHierarchy Code = "CYCLIC_HIERARCHY"

	// Recoverable conversion errors (skipped or substituted in relaxed mode)
	ErrCodeDanglingEdge       Code = "DANGLING_EDGE"
	ErrCodeUnsupportedElement Code = "UNSUPPORTED_ELEMENT"
	ErrCodeReservedWord       Code = "RESERVED_WORD"
	ErrCodeUnrecognizedStyle  Code = "UNRECOGNIZED_STYLE"

	// Input acquisition errors
	ErrCodeDecodeFailed Code = "DECODE_FAILED"
	ErrCodeParseFailed  Code = "PARSE_FAILED"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidOption  Code = "INVALID_OPTION"
	ErrCodePageOutOfRange Code = "PAGE_OUT_OF_RANGE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, the offending source element,
// and an optional cause.
type Error struct {
	Code     Code   // Machine-readable error code
	Message  string // Human-readable message
	SourceID string // Offending source cell id, when known
	Cause    error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Cause != nil && e.SourceID != "":
		return fmt.Sprintf("%s [%s]: %s: %v", e.Code, e.SourceID, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	case e.SourceID != "":
		return fmt.Sprintf("%s [%s]: %s", e.Code, e.SourceID, e.Message)
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

// NewWithSource creates a new Error tied to an offending source cell.
func NewWithSource(code Code, sourceID, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		SourceID: sourceID,
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

// GetSourceID extracts the offending source cell id from an error, if available.
func GetSourceID(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.SourceID
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
