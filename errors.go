package assets

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps one of them, test
// with errors.Is.
var (
	// ErrValidation is a bad user input, nothing has been changed.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when an ID is not (or no longer) known.
	ErrNotFound = errors.New("asset not found")
	// ErrUnknownCurrency is a warning: the source currency of a conversion is
	// missing from the rate table and has been read as the reference currency.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrInvalidCurrency is returned when the target currency of a conversion
	// is missing from the rate table.
	ErrInvalidCurrency = errors.New("invalid currency")
	// ErrRateFetchFailed is a warning: rates could not be fetched, the
	// fallback table is used instead.
	ErrRateFetchFailed = errors.New("exchange rate fetch failed")
	// ErrPersistence is returned when a store could not read or write.
	ErrPersistence = errors.New("persistence error")
	// ErrAtBoundary is returned when moving the first asset up or the last one
	// down. Nothing has been changed.
	ErrAtBoundary = errors.New("asset already at boundary")
)

// ValidationError reports the field of a Draft that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistenceError wraps err so that it matches ErrPersistence, unless it
// already carries ErrNotFound or ErrPersistence. It returns nil if err is nil.
func PersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
