package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport. Controllers never pick HTTP
// statuses themselves; they resolve the code through MetadataFor.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodePrecondition  Code = "PRECONDITION_FAILED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata drives the wire rendering of a code. DetailsAllowed guards
// against leaking internals through the details field.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

const (
	detailed = true
	opaque   = false
)

var metadataByCode = map[Code]Metadata{
	CodeValidation:    meta(http.StatusBadRequest, false, "validation failed", detailed),
	CodeUnauthorized:  meta(http.StatusUnauthorized, false, "authentication required", opaque),
	CodeForbidden:     meta(http.StatusForbidden, false, "access denied", opaque),
	CodeNotFound:      meta(http.StatusNotFound, false, "resource not found", opaque),
	CodeConflict:      meta(http.StatusConflict, false, "conflict detected", detailed),
	CodeStateConflict: meta(http.StatusUnprocessableEntity, false, "state transition disallowed", detailed),
	CodeIdempotency:   meta(http.StatusConflict, false, "idempotency key reused", detailed),
	CodePrecondition:  meta(http.StatusPreconditionFailed, false, "operation not available", detailed),
	CodeInternal:      meta(http.StatusInternalServerError, true, "internal server error", opaque),
	CodeDependency:    meta(http.StatusServiceUnavailable, true, "dependency unavailable", detailed),
}

func meta(status int, retryable bool, publicMessage string, detailsAllowed bool) Metadata {
	return Metadata{
		HTTPStatus:     status,
		Retryable:      retryable,
		PublicMessage:  publicMessage,
		DetailsAllowed: detailsAllowed,
	}
}

// MetadataFor resolves a code's rendering, treating unknown codes as internal.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error is the service-wide error type. All methods tolerate a nil receiver
// so callers can chain without guarding.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts an *Error from err's chain, or returns nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
