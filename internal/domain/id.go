package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ParseID parses value as a UUID, reporting failures as a ValidationError on field.
func ParseID(field, value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil, NewValidationError(field, "cannot be empty", ErrInvalidID)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, NewValidationError(field, "must be a valid UUID", ErrInvalidID)
	}
	return id, nil
}
