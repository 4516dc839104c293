// Package apperror provides structured error handling for the reconciliation batch.
// All business errors must use AppError so callers can surface the offending
// identifier (movement id, group id, production order id) for operator diagnosis.
package apperror

import (
	"errors"
	"fmt"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors
	CodeValidation = "VALIDATION_ERROR"

	// Reconciliation rule violations. Every one of these aborts the whole
	// batch: skipping a movement would corrupt all subsequent running averages.
	CodeUnknownItem      = "UNKNOWN_ITEM"
	CodeDuplicateItem    = "DUPLICATE_ITEM"
	CodeIncompleteGroup  = "INCOMPLETE_GROUP"
	CodeAlreadyCorrected = "ALREADY_CORRECTED"
)

// AppError is the standard error type for the batch.
// It implements the error interface and provides structured details for logs.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (ids, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewUnknownItem creates an error for a ledger lookup of an item never seeded.
func NewUnknownItem(itemID int64) *AppError {
	return &AppError{
		Code:    CodeUnknownItem,
		Message: fmt.Sprintf("item %d not found in stock", itemID),
		Details: map[string]any{"item_id": itemID},
	}
}

// NewDuplicateItem creates an error for seeding an item already present.
func NewDuplicateItem(itemID int64) *AppError {
	return &AppError{
		Code:    CodeDuplicateItem,
		Message: fmt.Sprintf("item %d already exists in stock", itemID),
		Details: map[string]any{"item_id": itemID},
	}
}

// NewIncompleteGroup creates an error for a dismantling group or production
// order missing required input/output movements. kind is "dismantling" or
// "production_order".
func NewIncompleteGroup(kind string, groupID int64, message string) *AppError {
	return &AppError{
		Code:    CodeIncompleteGroup,
		Message: message,
		Details: map[string]any{"kind": kind, "group_id": groupID},
	}
}

// NewAlreadyCorrected creates an error for re-resolving an already-final movement.
func NewAlreadyCorrected(movementID int64) *AppError {
	return &AppError{
		Code:    CodeAlreadyCorrected,
		Message: fmt.Sprintf("movement %d already has the correct cost", movementID),
		Details: map[string]any{"movement_id": movementID},
	}
}

// NewDatabase creates a database error wrapping the driver failure.
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:    CodeDatabase,
		Message: "database error",
		Err:     err,
	}
}

// NewInternal creates an internal error (hides details from output).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode checks whether err carries the given error code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsUnknownItem checks if error is CodeUnknownItem
func IsUnknownItem(err error) bool { return HasCode(err, CodeUnknownItem) }

// IsIncompleteGroup checks if error is CodeIncompleteGroup
func IsIncompleteGroup(err error) bool { return HasCode(err, CodeIncompleteGroup) }
