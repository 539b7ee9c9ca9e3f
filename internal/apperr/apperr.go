// Package apperr defines the application's error kinds.
//
// Errors carry a Kind; the HTTP layer maps kinds to status codes at the
// boundary so domain code never deals with transport details.
//
//	return apperr.Unauthorized("Could not validate credentials")
//	...
//	if apperr.KindOf(err) == apperr.KindUnauthorized { ... }
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindInvalidCredentials        Kind = "InvalidCredentials"
	KindInvalidToken              Kind = "InvalidToken"
	KindTokenExpired              Kind = "TokenExpired"
	KindUnauthorized              Kind = "Unauthorized"
	KindForbidden                 Kind = "Forbidden"
	KindOperationNotAllowed       Kind = "OperationNotAllowed"
	KindEntityNotFound            Kind = "EntityNotFound"
	KindEntityAlreadyExists       Kind = "EntityAlreadyExists"
	KindUniqueConstraintViolation Kind = "UniqueConstraintViolation"
	KindValidation                Kind = "Validation"
	KindInternal                  Kind = "Internal"
)

// Error is an application error with a kind, a client-facing message and
// optional structured detail.
type Error struct {
	Kind   Kind
	Msg    string
	Detail any
	Err    error // underlying cause, never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is works against
// the sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// WithDetail returns a copy of e carrying detail.
func (e *Error) WithDetail(detail any) *Error {
	clone := *e
	clone.Detail = detail
	return &clone
}

func InvalidCredentials(msg string) *Error  { return New(KindInvalidCredentials, msg) }
func Unauthorized(msg string) *Error        { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error           { return New(KindForbidden, msg) }
func OperationNotAllowed(msg string) *Error { return New(KindOperationNotAllowed, msg) }
func NotFound(msg string) *Error            { return New(KindEntityNotFound, msg) }
func AlreadyExists(msg string) *Error       { return New(KindEntityAlreadyExists, msg) }
func Validation(msg string) *Error          { return New(KindValidation, msg) }

// KindOf reports the kind of the first *Error in err's chain.
// Errors without one are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
