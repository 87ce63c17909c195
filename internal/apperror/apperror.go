// Package apperror carries the error taxonomy shared by services and the
// HTTP responder: a code decides the status, the message is shown to users.
package apperror

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
)

type Error struct {
	code    Code
	message string
	field   string
}

func (e *Error) Error() string { return e.message }
func (e *Error) Code() Code     { return e.code }
func (e *Error) Field() string  { return e.field }

func New(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return New(CodeValidation, format, args...)
}

// FieldInvalid is a validation error pinned to one input field.
func FieldInvalid(field, message string) error {
	return &Error{code: CodeValidation, message: message, field: field}
}

func NotFound(format string, args ...any) error {
	return New(CodeNotFound, format, args...)
}

func Conflict(format string, args ...any) error {
	return New(CodeConflict, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return New(CodeUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) error {
	return New(CodeForbidden, format, args...)
}

// CodeOf extracts the code through any wrapping; "" means unclassified.
func CodeOf(err error) Code {
	var ce interface{ Code() Code }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// FieldOf returns the input field an error is pinned to, through any wrapping.
func FieldOf(err error) string {
	var fe interface{ Field() string }
	if errors.As(err, &fe) {
		return fe.Field()
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
