// Package gwerr is the gateway's error taxonomy (spec §7): a fixed set
// of codes, each with a stable HTTP status, that every layer above
// Store uses instead of ad-hoc errors.
package gwerr

import (
	"errors"
	"fmt"
)

// Code is one of the fixed error kinds on the wire.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeBadRequest        Code = "BAD_REQUEST"
	CodeNotFound          Code = "NOT_FOUND"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeConflict          Code = "CONFLICT"
	CodePaymentRequired   Code = "PAYMENT_REQUIRED"
	CodeMethodNotAllowed  Code = "METHOD_NOT_ALLOWED"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeAuthRequired      Code = "AUTH_REQUIRED"
	CodeInvalidToken      Code = "INVALID_TOKEN"
)

// statusByCode is the fixed HTTP status for each code (spec §7).
var statusByCode = map[Code]int{
	CodeValidation:       422,
	CodeBadRequest:       400,
	CodeNotFound:         404,
	CodeUnauthorized:     401,
	CodeForbidden:        403,
	CodeConflict:         409,
	CodePaymentRequired:  402,
	CodeMethodNotAllowed: 405,
	CodeRateLimited:      429,
	CodeInternal:         500,
	CodeAuthRequired:     401,
	CodeInvalidToken:     401,
}

// Status returns the fixed HTTP status for a code.
func (c Code) Status() int { return statusByCode[c] }

// FieldError is one validation failure, as emitted by internal/validate.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the gateway's single error type. Every handler-facing
// failure is either already a *Error, or gets wrapped into one as
// CodeInternal before it reaches the envelope builder.
type Error struct {
	Code    Code
	Message string

	Fields         []FieldError // CodeValidation
	YourVersion    *int         // CodeConflict
	CurrentVersion *int         // CodeConflict
	Feature        string       // CodePaymentRequired
	RetryAfter     *int         // CodeRateLimited, seconds

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status reports the HTTP status this error maps to.
func (e *Error) Status() int { return e.Code.Status() }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func Validation(fields []FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

func Conflict(message string, yourVersion, currentVersion *int) *Error {
	return &Error{Code: CodeConflict, Message: message, YourVersion: yourVersion, CurrentVersion: currentVersion}
}

func Internal(cause error) *Error {
	return Wrap(CodeInternal, "internal error", cause)
}

// As extracts a *Error from err, wrapping it as CodeInternal if err is
// not already one (spec §7: "storage errors propagate upward and become
// INTERNAL_ERROR").
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return Internal(err)
}
