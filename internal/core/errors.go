package core

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned by Schema.Validate when a query names a sort
// key or flag the entity does not define.
var ErrUnknownField = errors.New("unknown field")

// ValidationError reports a rejected mutation input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a *ValidationError.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
