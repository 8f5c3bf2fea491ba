// Package apperr defines the error taxonomy shared by the tracker core.
// Every fallible operation outside the validators signals failure through
// one of these kinds; callers map kinds to transport concerns (HTTP status,
// redirect vs. hard failure) without inspecting storage detail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindDatabase     Kind = "database"
)

// Error is a tagged application error. Field is set only for validation
// failures attributed to a single input field.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// StatusCode returns the HTTP-equivalent status for the kind.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "forbidden"
	}
	return &Error{Kind: KindForbidden, Message: message}
}

// Database wraps a storage-layer failure. The cause stays reachable through
// errors.Unwrap for logging, but the message deliberately hides engine detail.
func Database(cause error) *Error {
	return &Error{Kind: KindDatabase, Message: "database operation failed", cause: cause}
}

// KindOf extracts the kind from an error chain, or "" when the chain holds
// no tagged error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsForbidden(err error) bool    { return KindOf(err) == KindForbidden }

// StatusOf maps any error to an HTTP status, defaulting to 500 for
// untagged failures.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.StatusCode()
	}
	return http.StatusInternalServerError
}
