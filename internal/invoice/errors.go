package invoice

import (
	"errors"
	"fmt"
)

// Common invoice loading errors
var (
	// ErrInvalidDateFormat is returned when an invoice date is absent or
	// does not parse as ISO 8601 (YYYY-MM-DD).
	ErrInvalidDateFormat = errors.New("invalid invoice date format")

	// ErrInvalidDocument is returned when an invoice file is not a valid
	// JSON document matching the invoice schema.
	ErrInvalidDocument = errors.New("invalid invoice document")

	// ErrNegativeAmount is returned when a line item carries a negative
	// amount.
	ErrNegativeAmount = errors.New("negative line item amount")

	// ErrNoItems is returned when an invoice carries no line items.
	ErrNoItems = errors.New("invoice has no line items")
)

// LoadError wraps errors with the file and operation they occurred in.
type LoadError struct {
	// Op is the operation that failed (e.g. "LoadFile", "LoadDir").
	Op string

	// File is the invoice file being processed.
	File string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("invoice: %s failed for %s: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *LoadError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
