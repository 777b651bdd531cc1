package models

import "errors"

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound = errors.New("not found")

	ErrUnableToLogin   = errors.New("Unable to login")
	ErrUnauthenticated = errors.New("Please authenticate.")
	ErrForbiddenUpdate = errors.New("Attempted invalid update operation")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// ValidationError reports malformed or out-of-range input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
