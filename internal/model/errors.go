package model

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrAuth               = errors.New("invalid credentials")
	ErrServiceUnavailable = errors.New("calendar service unavailable")
	ErrInternal           = errors.New("internal error")
)

// FieldError is a validation failure on a single input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
