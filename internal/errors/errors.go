// Package errors holds the error definitions shared by every wearsim stage.
//
// This file provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Process exit code mapping
// - Error wrapping utilities
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Process exit codes
// ============================================================================

const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitInvalidArgument = 2
	ExitIOFailure       = 3
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Argument / configuration errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidName     = errors.New("invalid name")

	// I/O errors. Exports are one-shot batch writes and are never retried.
	ErrIOFailure       = errors.New("i/o failure")
	ErrMalformedRecord = errors.New("malformed record")
	ErrWriterClosed    = errors.New("writer is closed")

	// Internal errors
	ErrInternal      = errors.New("internal error")
	ErrDatabase      = errors.New("database error")
	ErrServiceClosed = errors.New("service is closed")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// IsInvalidArgument returns true if err was caused by a bad caller-supplied value.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidName)
}

// IsIOFailure returns true if err came from reading or writing an artifact.
func IsIOFailure(err error) bool {
	return errors.Is(err, ErrIOFailure) ||
		errors.Is(err, ErrMalformedRecord) ||
		errors.Is(err, ErrWriterClosed)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsInvalidArgument(err):
		return ExitInvalidArgument
	case IsIOFailure(err):
		return ExitIOFailure
	default:
		return ExitFailure
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewInvalidArgument creates an invalid-argument error for a named parameter.
func NewInvalidArgument(field string, value interface{}, reason string) error {
	return fmt.Errorf("%s=%v: %s: %w", field, value, reason, ErrInvalidArgument)
}

// IOError records a failed read or write of an artifact.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

// Unwrap exposes both ErrIOFailure and the underlying cause.
func (e *IOError) Unwrap() []error {
	return []error{ErrIOFailure, e.Err}
}

// NewIOFailure wraps an I/O error with the operation and path that failed.
func NewIOFailure(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// NewDatabase wraps a DuckDB failure.
func NewDatabase(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDatabase, err)
}

// NewMalformedRecord reports an unparseable row in an input artifact.
func NewMalformedRecord(path string, line int, reason string) error {
	return fmt.Errorf("%s:%d: %s: %w", path, line, reason, ErrMalformedRecord)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
