package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates the request failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIDMismatch indicates the identifier in the path differs from the one in the body.
	ErrIDMismatch = errors.New("id in path does not match id in body")

	// ErrConcurrencyConflict indicates an update hit a row that changed underneath it
	// and the row is still present, so the conflict cannot be reported as not found.
	ErrConcurrencyConflict = errors.New("concurrent modification")
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field string
	Issue string
}

// ValidationError carries per-field details and matches ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a validation error for one field.
func NewValidationError(field, issue string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Issue: issue}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Issue)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
