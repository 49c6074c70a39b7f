package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/backend"
	"github.com/ugmart/storefront/internal/infrastructure/payment"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeUpstream, http.StatusBadGateway},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestFromError(t *testing.T) {
	denial := &protection.Denial{
		DomainError: shared.NewDomainError(shared.CodeRateLimited, "Too many payment attempts. Please try again later."),
		Status:      http.StatusTooManyRequests,
		RetryAfter:  30 * time.Second,
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"domain invalid input", shared.InvalidInput("Cart is empty"), http.StatusBadRequest, ErrCodeInvalidInput, "Cart is empty"},
		{"wrapped domain", fmt.Errorf("checkout: %w", shared.NotFound("Coupon not found")), http.StatusNotFound, ErrCodeNotFound, "Coupon not found"},
		{"order failed after capture", shared.WrapDomainError(shared.CodeUpstream,
			"Payment successful but order creation failed. Please contact support.", errors.New("boom")),
			http.StatusBadGateway, ErrCodeUpstream, "Payment successful but order creation failed. Please contact support."},
		{"protection denial", denial, http.StatusTooManyRequests, ErrCodeRateLimited, "Too many payment attempts. Please try again later."},
		{"backend 4xx", &backend.APIError{Status: http.StatusBadRequest, Message: "Product out of stock"}, http.StatusBadRequest, ErrCodeInvalidInput, "Product out of stock"},
		{"backend 5xx", &backend.APIError{Status: http.StatusInternalServerError, Message: "Internal Server Error"}, http.StatusBadGateway, ErrCodeUpstream, "Internal Server Error"},
		{"paypal conflict", &payment.GatewayError{Status: http.StatusUnprocessableEntity, Issue: "ORDER_ALREADY_CAPTURED"}, http.StatusConflict, ErrCodeConflict, "This payment has already been processed"},
		{"paypal down", &payment.GatewayError{Status: http.StatusServiceUnavailable}, http.StatusBadGateway, ErrCodeUpstream, "Payment service is unavailable. Please try again."},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size"},
		{"unknown", errors.New("nil pointer somewhere"), http.StatusInternalServerError, ErrCodeInternal, InternalErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}

	assert.Equal(t, 30*time.Second, FromError(denial).RetryAfter)
	assert.True(t, FromError(errors.New("x")).Internal)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1}, 21, 2, 10)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	assert.Equal(t, 0, NewSuccessResponseWithMeta(nil, 5, 1, 0).Meta.TotalPages)
}
