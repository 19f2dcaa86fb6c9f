package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that was rejected before touching the store
	ErrValidation = errors.New("validation failed")

	// ErrInvoiceNotFound is returned when a referenced invoice id does not exist
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrUnsupportedFormat is returned for an unknown export format
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ValidationError carries a human-readable message for a rejected field.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundError reports the id that could not be found
func NotFoundError(invoiceID int64) error {
	return fmt.Errorf("%w: %d", ErrInvoiceNotFound, invoiceID)
}
