// Package domainerrors defines the error taxonomy shared by all domain
// services. Services attach a Code to every error they return so transport
// layers can map them to responses without inspecting message strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. Codes are stable API: they appear verbatim
// in HTTP error envelopes and in logs, so renaming one is a breaking change.
type Code string

const (
	// CodeBadRequest marks a structurally broken request (unparseable body,
	// missing required field). The caller can fix the request and resubmit.
	CodeBadRequest Code = "bad_request"

	// CodeValidation marks a well-formed request with invalid values
	// (coordinates out of range, malformed numbers).
	CodeValidation Code = "validation_error"

	// CodeInvalidInput marks invalid identifiers at trust boundaries
	// (empty, nil, or malformed UUIDs).
	CodeInvalidInput Code = "invalid_input"

	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a request that contradicts current state, such as a
	// session that belongs to a different event.
	CodeConflict Code = "conflict"

	// CodeConfiguration marks an operator fault: the system cannot serve the
	// request because required configuration is missing or degenerate (an
	// event without coordinates, a non-positive geofence radius). Never
	// surfaced to end users as their mistake.
	CodeConfiguration Code = "configuration_error"

	// CodeGeofenceViolation marks a check-in attempt from outside the
	// geofence. Carries distance/radius details for the client.
	CodeGeofenceViolation Code = "geofence_violation"

	// CodeUnauthorized marks missing or invalid authentication.
	CodeUnauthorized Code = "unauthorized"

	// CodeTimeout marks an operation that exceeded its deadline.
	CodeTimeout Code = "timeout"

	// CodeInternal marks unclassified infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is the concrete domain error. Details carries structured values the
// transport layer may expose alongside the message (e.g. distance_meters for
// geofence violations). Keep Details free of secrets and PII.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error while preserving
// the chain for errors.Is/errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetail returns the error with an extra structured detail attached.
// Returns the receiver for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HasCode reports whether any error in the chain is a domain error with the
// given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode used at call sites that read like
// dErrors.Is(err, dErrors.CodeBadRequest).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal
// for errors that never passed through a domain service.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf extracts structured details from an error chain, or nil.
func DetailsOf(err error) map[string]any {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
