package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes shared by all bounded contexts
const (
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeDuplicateEmail   = "DUPLICATE_EMAIL"
	CodeDuplicateCode    = "DUPLICATE_CODE"
	CodeInvalidState     = "INVALID_STATE"
)

// FieldError describes a problem with a single input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DomainError represents a domain-level error
type DomainError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// Is matches domain errors by code so that wrapped copies compare equal
// to the package sentinels.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_FAILED error with field details
func NewValidationError(details ...FieldError) *DomainError {
	return &DomainError{
		Code:    CodeValidationFailed,
		Message: "Invalid input data",
		Details: details,
	}
}

// Common domain errors
var (
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists  = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput   = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrDuplicateEmail = NewDomainError(CodeDuplicateEmail, "Email is already in use")
	ErrDuplicateCode  = NewDomainError(CodeDuplicateCode, "Position code already exists")
	ErrInvalidState   = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// FieldErrors accumulates field level validation problems
type FieldErrors []FieldError

// Add records a problem for a field
func (f *FieldErrors) Add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

// Err returns a validation error, or nil when nothing was recorded
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return NewValidationError(f...)
}

// IsNotFound reports whether err is or wraps a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}

// IsDomainError reports whether err is or wraps a *DomainError
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
