package backend

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// APIError is a failed backend call. Message is the backend's own wording
// and is safe to show to the shopper.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets callers test backend failures against the shared domain errors
func (e *APIError) Is(target error) bool {
	var de *shared.DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code()
}

// Code maps the HTTP status to a domain error code
func (e *APIError) Code() string {
	switch {
	case e.Status == http.StatusUnauthorized:
		return shared.CodeUnauthorized
	case e.Status == http.StatusForbidden:
		return shared.CodeForbidden
	case e.Status == http.StatusNotFound:
		return shared.CodeNotFound
	case e.Status == http.StatusConflict:
		return shared.CodeConflict
	case e.Status == http.StatusTooManyRequests:
		return shared.CodeRateLimited
	case e.Status >= 500 || e.Status < 400:
		return shared.CodeUpstream
	default:
		return shared.CodeInvalidInput
	}
}

func newAPIError(r *response) *APIError {
	return &APIError{
		Status:  r.status,
		Message: messageFrom(r.envelope(), http.StatusText(r.status)),
	}
}

// messageFrom picks error, else message, else fallback. The error field is
// either a string or an object with its own message.
func messageFrom(env envelope, fallback string) string {
	if isPresent(env.Error) {
		var s string
		if json.Unmarshal(env.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	if env.Message != "" {
		return env.Message
	}
	if fallback == "" {
		return "Request failed"
	}
	return fallback
}

// StatusOf returns the backend status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
