// apperrors/errors.go - Typed failures shared by the engines and the HTTP layer
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can map it to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is the single error type returned by core operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a referenced entity that does not exist.
func NotFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// Forbidden reports a permission predicate that evaluated false.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Validation reports rejected input. It is always recoverable.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports failed authentication (bad credentials, inactive account).
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure (storage, encoding).
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }
func IsForbidden(err error) bool  { return err != nil && KindOf(err) == KindForbidden }
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

func IsUnauthorized(err error) bool { return err != nil && KindOf(err) == KindUnauthorized }
