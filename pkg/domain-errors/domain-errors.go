// Package domainerrors carries transport-agnostic error codes from services
// to the HTTP layer.
package domainerrors

import (
	"errors"
	"fmt"

	"vaxtrack/pkg/platform/sentinel"
)

type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeTimeout      Code = "timeout"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal_error"

	// CodeInvalidState rejects a mutation the record's lifecycle forbids,
	// such as completing a dose twice.
	CodeInvalidState Code = "invalid_state"
)

// Error is a coded failure. Field names the offending request field for
// validation errors.
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so errors.Is(err, &Error{Code: CodeNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports a validation failure on field.
func Invalid(field, msg string) error {
	return &Error{Code: CodeValidation, Message: field + " " + msg, Field: field}
}

// Wrap attaches msg to err. An existing domain code or a store sentinel in
// the chain takes precedence over code.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	switch {
	case errors.As(err, &existing):
		code = existing.Code
	case errors.Is(err, sentinel.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, sentinel.ErrConflict):
		code = CodeConflict
	case errors.Is(err, sentinel.ErrInvalidState):
		code = CodeInvalidState
	case errors.Is(err, sentinel.ErrUnavailable):
		code = CodeUnavailable
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf returns CodeInternal for errors that never crossed a domain boundary.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
