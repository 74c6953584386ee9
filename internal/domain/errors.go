package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed search criteria.
	ErrValidation = errors.New("validation failed")
	// ErrGeocodingUnavailable signals a geocoder timeout or transport failure.
	ErrGeocodingUnavailable = errors.New("geocoding unavailable")
	// ErrAddressNotFound signals that the geocoder found no match for an address.
	ErrAddressNotFound = errors.New("address not found")
	// ErrStorage signals a failure of the underlying restaurant store.
	ErrStorage = errors.New("storage error")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps a store failure; it matches both ErrStorage and the cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError wraps err as a StorageError for op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
