// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when input or an entity fails validation.
	// Batch-level validation failures wrap it via ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrReferential is returned when a review references an item that does
	// not exist in the catalog.
	ErrReferential = errors.New("item not found in catalog")

	// ErrPersistence is returned when a storage operation for a single item
	// fails.
	ErrPersistence = errors.New("persistence failed")

	// ErrTotalFailure is returned when a well-formed batch commits no reviews.
	ErrTotalFailure = errors.New("no reviews committed")

	// ErrInvalidQuality is returned when a review quality is outside 0..5.
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")

	// ErrInvalidStatus is returned when a progress status is not recognised.
	ErrInvalidStatus = errors.New("invalid progress status")
)

// ValidationError describes a malformed batch. It is batch-fatal and is
// reported before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ReferentialError records a review whose item is absent from the catalog.
type ReferentialError struct {
	ItemID string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%v: %s", ErrReferential, e.ItemID)
}

// Unwrap allows errors.Is(err, ErrReferential).
func (e *ReferentialError) Unwrap() error {
	return ErrReferential
}

// PersistenceError records a storage failure while committing one item.
type PersistenceError struct {
	ItemID    string
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s for item %s: %v", ErrPersistence, e.Operation, e.ItemID, e.Err)
	}
	return fmt.Sprintf("%v: %s for item %s", ErrPersistence, e.Operation, e.ItemID)
}

// Is matches ErrPersistence in addition to the wrapped cause.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Unwrap returns the underlying storage error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ItemFailure pairs a submitted item with the reason it was not committed.
type ItemFailure struct {
	ItemID string
	Err    error
}

// TotalFailure is returned when every review in a well-formed batch failed.
type TotalFailure struct {
	Failures []ItemFailure
}

func (e *TotalFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: all %d reviews failed", ErrTotalFailure, len(e.Failures))
	for i, f := range e.Failures {
		if i == 3 {
			fmt.Fprintf(&b, "; and %d more", len(e.Failures)-3)
			break
		}
		fmt.Fprintf(&b, "; %s: %v", f.ItemID, f.Err)
	}
	return b.String()
}

// Unwrap allows errors.Is(err, ErrTotalFailure).
func (e *TotalFailure) Unwrap() error {
	return ErrTotalFailure
}
