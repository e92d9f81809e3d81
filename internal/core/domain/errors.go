// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every store implementation. Adapters wrap their
// backend-specific failures into these so handlers and the store router can
// classify them without knowing which backend produced them.
var (
	// ErrNotFound indicates the referenced transaction or inventory item
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates an identifier collision on insert.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrBackendUnavailable indicates the persistent backend could not be
	// reached. It is the only error that triggers store failover.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ValidationError describes malformed or out-of-range input. It is always
// detected before any store mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientStockError rejects a stock decrease that would drive
// current_stock negative. It identifies the shortfall so callers can report
// available vs. requested.
type InsufficientStockError struct {
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ItemName, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is (or wraps) an
// InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// IsBackendUnavailable reports whether err is (or wraps)
// ErrBackendUnavailable.
func IsBackendUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}
