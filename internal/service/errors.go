// Package service implements the portal's domain operations on top of the
// repositories.  Errors returned from this package fall into the kinds
// below; handlers map them to HTTP status codes with errors.Is/As.
package service

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.  Msg is safe to show
// to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrNotFound     = errors.New("not found")
	ErrAuthMismatch = errors.New("credentials do not match")
	ErrInvalidToken = errors.New("invalid password reset token")
	ErrTokenExpired = errors.New("password reset token has expired")
	ErrStorage      = errors.New("storage failure")
)

// kindError carries a caller-facing message while still matching one of
// the sentinel kinds above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func withKind(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
