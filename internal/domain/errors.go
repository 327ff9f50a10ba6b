// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is usually wrapped by a *ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when the caller could not be authenticated.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrNotApproved is returned when valid credentials belong to an account
	// that an administrator has not approved yet.
	ErrNotApproved = fmt.Errorf("%w: account not approved", ErrUnauthorized)

	// ErrForbidden is returned when an authenticated caller acts on a
	// resource it does not own.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError describes a single invalid field.
// It matches ErrValidation under errors.Is, as well as Err when set.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}
