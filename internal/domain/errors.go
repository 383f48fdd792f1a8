package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but is not visible in the requested scope.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, unknown category).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with a unique constraint,
// such as two notes racing for the same slug.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrProtected is returned when deleting a row that other rows still
// reference, such as a category with notes in it.
// Handlers should map this to HTTP 409.
var ErrProtected = errors.New("protected")

// ErrUnauthorized is returned by the auth service for bad credentials or
// an invalid token.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError carries per-field messages for a rejected form.
// It unwraps to ErrValidation so callers can keep using errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation error: invalid form"
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
