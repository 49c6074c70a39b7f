package dto

import (
	"errors"
	"net/http"
	"time"

	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/backend"
	"github.com/ugmart/storefront/internal/infrastructure/payment"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
)

// Error codes. Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeConflict        = "ERR_CONFLICT"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeUpstream        = "ERR_UPSTREAM"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeUpstream:        http.StatusBadGateway,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps shared.DomainError codes to API codes
var domainCodes = map[string]string{
	shared.CodeNotFound:     ErrCodeNotFound,
	shared.CodeInvalidInput: ErrCodeInvalidInput,
	shared.CodeUnauthorized: ErrCodeUnauthorized,
	shared.CodeForbidden:    ErrCodeForbidden,
	shared.CodeConflict:     ErrCodeConflict,
	shared.CodeRateLimited:  ErrCodeRateLimited,
	shared.CodeUpstream:     ErrCodeUpstream,
}

// NormalizeErrorCode converts a domain code to the API format. Unknown
// codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	return code
}

// InternalErrorMessage is shown for errors the gateway does not recognise
const InternalErrorMessage = "internal server error"

// HTTPError is an error rendered for the browser
type HTTPError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
	// Internal is true when the cause is unknown and should be logged
	Internal bool
}

// paymentMessages words PayPal failures for shoppers
var paymentMessages = []struct {
	target  error
	code    string
	message string
}{
	{shared.ErrConflict, ErrCodeConflict, "This payment has already been processed"},
	{shared.ErrNotFound, ErrCodeNotFound, "Payment not found"},
	{shared.ErrInvalidInput, ErrCodeInvalidInput, "Payment could not be completed. Please try again."},
	{shared.ErrUpstream, ErrCodeUpstream, "Payment service is unavailable. Please try again."},
}

// FromError classifies err. Protection denials keep their status and
// Retry-After; backend failures keep the backend's wording, with 5xx
// reported as 502.
func FromError(err error) HTTPError {
	var denial *protection.Denial
	if errors.As(err, &denial) {
		return HTTPError{
			Status:     denial.Status,
			Code:       NormalizeErrorCode(denial.Code),
			Message:    denial.Message,
			RetryAfter: denial.RetryAfter,
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := NormalizeErrorCode(domainErr.Code)
		return HTTPError{Status: GetHTTPStatus(code), Code: code, Message: domainErr.Message}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		code := NormalizeErrorCode(apiErr.Code())
		status := apiErr.Status
		if status >= http.StatusInternalServerError || status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return HTTPError{Status: status, Code: code, Message: apiErr.Message}
	}

	var gwErr *payment.GatewayError
	if errors.As(err, &gwErr) {
		for _, m := range paymentMessages {
			if errors.Is(gwErr, m.target) {
				return HTTPError{Status: GetHTTPStatus(m.code), Code: m.code, Message: m.message}
			}
		}
		return HTTPError{Status: http.StatusBadGateway, Code: ErrCodeUpstream, Message: "Payment failed. Please try again."}
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return HTTPError{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    ErrCodeRequestTooLarge,
			Message: "Request body exceeds maximum allowed size",
		}
	}

	return HTTPError{
		Status:   http.StatusInternalServerError,
		Code:     ErrCodeInternal,
		Message:  InternalErrorMessage,
		Internal: true,
	}
}
