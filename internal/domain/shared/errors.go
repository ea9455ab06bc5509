// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid ID")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrLimitReached    = errors.New("limit reached")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a technical error raised with domain context
// (repository failures, translator outages, malformed commands).
type DomainError struct {
	Domain  string // e.g., "proposition", "supervision", "checklist"
	Op      string // Operation that failed, e.g., "Get", "Save"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// BUSINESS ERRORS
// ═══════════════════════════════════════════════════════════════════════════

// BusinessError is a violated business rule. Code is stable across releases
// and is what the boundary maps to a user-facing message.
type BusinessError struct {
	Code    string
	Message string
	Kind    error
}

// NewBusinessError declares a business error.
func NewBusinessError(code string, kind error, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message, Kind: kind}
}

// Error implements the error interface.
func (e *BusinessError) Error() string {
	return e.Code + ": " + e.Message
}

// Unwrap exposes the kind so errors.Is(err, ErrNotFound) works.
func (e *BusinessError) Unwrap() error {
	return e.Kind
}

// Is matches any business error carrying the same code.
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == e.Code
}

// Withf returns a copy of the error with a more specific message.
func (e *BusinessError) Withf(format string, args ...interface{}) *BusinessError {
	return &BusinessError{
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
		Kind:    e.Kind,
	}
}

// MultipleBusinessErrors carries every invariant failure of one operation.
type MultipleBusinessErrors struct {
	Errors []*BusinessError
}

// Error implements the error interface.
func (e *MultipleBusinessErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%d business rule(s) violated: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap lets errors.Is and errors.As look at every collected error.
func (e *MultipleBusinessErrors) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}

// Codes returns the status codes in collection order.
func (e *MultipleBusinessErrors) Codes() []string {
	codes := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		codes = append(codes, err.Code)
	}
	return codes
}

// BusinessErrors flattens err into the business errors it carries, if any.
func BusinessErrors(err error) []*BusinessError {
	var multi *MultipleBusinessErrors
	if errors.As(err, &multi) {
		return multi.Errors
	}
	var single *BusinessError
	if errors.As(err, &single) {
		return []*BusinessError{single}
	}
	return nil
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsBusiness reports whether err carries at least one business error.
func IsBusiness(err error) bool {
	return len(BusinessErrors(err)) > 0
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
