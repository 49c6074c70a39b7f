package shared

import "errors"

// Error codes shared across the storefront domains
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUpstream     = "UPSTREAM_ERROR"
)

// DomainError represents a domain-level error. Message is safe to show to shoppers.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError with the same code, so
// errors.Is(NewDomainError(CodeNotFound, "Coupon not found"), ErrNotFound) holds.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUnauthorized = NewDomainError(CodeUnauthorized, "Please log in to continue")
	ErrForbidden    = NewDomainError(CodeForbidden, "Access forbidden")
	ErrConflict     = NewDomainError(CodeConflict, "Request conflicts with the current state")
	ErrRateLimited  = NewDomainError(CodeRateLimited, "Too many requests. Please try again later")
	ErrUpstream     = NewDomainError(CodeUpstream, "The store service is unavailable")
)

// InvalidInput is shorthand for a validation failure with a shopper-facing message
func InvalidInput(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// NotFound is shorthand for a missing resource
func NotFound(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}
