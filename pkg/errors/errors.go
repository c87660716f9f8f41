package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorrupt indicates stored data could not be accepted as a profile
	ErrCorrupt = errors.New("corrupt stored data")
)

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// CorruptError creates a corrupt data error with context
func CorruptError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrCorrupt)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
