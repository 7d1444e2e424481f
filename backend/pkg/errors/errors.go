package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeStore represents document-store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeExtraction represents extraction/LLM-related errors
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeCoref represents coreference-resolution errors
	ErrorTypeCoref ErrorType = "coref"
	// ErrorTypeValidation represents request/payload validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Store errors

// NewStoreError wraps a document-store failure. Store failures abort the
// whole turn; nothing downstream of a failed commit is reported as success.
func NewStoreError(message string, err error) *BaseError {
	return NewBaseError(ErrorTypeStore, message, err)
}

// Extraction errors

// NewExtractionError wraps an extraction-service failure. Callers are
// expected to degrade to an empty extraction rather than fail the turn.
func NewExtractionError(message string, err error) *BaseError {
	return NewBaseError(ErrorTypeExtraction, message, err)
}

// Coreference errors

// NewCorefError wraps a coreference-rewrite failure. Callers log it and keep
// the heuristic text; a rewrite failure never fails the turn.
func NewCorefError(message string, err error) *BaseError {
	return NewBaseError(ErrorTypeCoref, message, err)
}

// Config errors

// NewConfigError reports a missing or invalid configuration value
func NewConfigError(message string) *BaseError {
	return NewBaseError(ErrorTypeConfig, message, nil)
}

// Validation errors

// ErrMissingField is returned when a required request field is absent
type ErrMissingField struct {
	*BaseError
	Field string
}

func NewMissingField(field string) *ErrMissingField {
	return &ErrMissingField{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("missing required field: %s", field), nil),
		Field:     field,
	}
}
