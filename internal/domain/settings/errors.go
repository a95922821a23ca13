package settings

import (
	"errors"
	"fmt"
)

// Settings error types
var (
	ErrValidation        = errors.New("setting validation failed")
	ErrInvalidKeyPath    = errors.New("invalid setting key path")
	ErrStorage           = errors.New("settings storage failed")
	ErrBridgeUnavailable = errors.New("host settings bridge unavailable")
	ErrInvalidImport     = errors.New("invalid settings import")
	ErrUnknownSection    = errors.New("unknown settings section")
	ErrCompanyNotFound   = errors.New("company not found")
)

// ValidationError describes why a value was rejected for a key path.
type ValidationError struct {
	KeyPath string
	Value   any
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.KeyPath, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a new validation error
func NewValidationError(keyPath string, value any, reason string) *ValidationError {
	return &ValidationError{
		KeyPath: keyPath,
		Value:   value,
		Reason:  reason,
	}
}

// StorageError represents a failed read or write against a backend
type StorageError struct {
	Operation string
	KeyPath   string
	Err       error
}

func (e *StorageError) Error() string {
	if e.KeyPath != "" {
		return fmt.Sprintf("settings %s failed for %s: %v", e.Operation, e.KeyPath, e.Err)
	}
	return fmt.Sprintf("settings %s failed: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NewStorageError creates a new storage error
func NewStorageError(operation, keyPath string, err error) *StorageError {
	return &StorageError{
		Operation: operation,
		KeyPath:   keyPath,
		Err:       err,
	}
}
