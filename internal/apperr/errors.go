// Package apperr defines the error taxonomy shared by the services and the
// HTTP and CLI boundaries.
package apperr

import (
	"errors"
	"fmt"
)

// Code categorizes an application error.
type Code string

const (
	// CodeBadRequest indicates malformed input or a request the current
	// state does not allow (bad verification token, unknown status).
	CodeBadRequest Code = "BAD_REQUEST"

	// CodeUnauthorized indicates missing or rejected credentials.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeNotFound indicates the record does not exist or is not visible
	// to the caller.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict indicates a uniqueness violation.
	CodeConflict Code = "CONFLICT"

	// CodeInternal indicates an unexpected failure.
	CodeInternal Code = "INTERNAL"
)

// Error is an application error carrying a code, a caller-facing message
// and an optional underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

func BadRequest(message string) *Error   { return New(CodeBadRequest, message) }
func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }
func NotFound(message string) *Error     { return New(CodeNotFound, message) }
func Conflict(message string) *Error     { return New(CodeConflict, message) }

// Internal wraps an unexpected failure. The message shown to callers is
// generic; the cause is kept for logs.
func Internal(cause error) *Error {
	return Wrap(CodeInternal, "internal server error", cause)
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-facing message for err. Errors outside the
// taxonomy get the generic internal message.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

// IsBadRequest returns true if err carries CodeBadRequest.
// Uses errors.As to handle wrapped errors.
func IsBadRequest(err error) bool { return is(err, CodeBadRequest) }

// IsUnauthorized returns true if err carries CodeUnauthorized.
func IsUnauthorized(err error) bool { return is(err, CodeUnauthorized) }

// IsNotFound returns true if err carries CodeNotFound.
func IsNotFound(err error) bool { return is(err, CodeNotFound) }

// IsConflict returns true if err carries CodeConflict.
func IsConflict(err error) bool { return is(err, CodeConflict) }

func is(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
