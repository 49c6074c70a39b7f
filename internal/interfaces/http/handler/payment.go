package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	paymentapp "github.com/ugmart/storefront/internal/application/payment"
)

// LedgerService lists recorded PayPal payments
type LedgerService interface {
	List(ctx context.Context, status string, limit int) ([]paymentapp.PaymentResponse, error)
}

// PaymentHandler serves the admin view of the payment ledger
type PaymentHandler struct {
	BaseHandler
	service LedgerService
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(service LedgerService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// List handles GET /admin/payments?status=&limit=
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.service.List(c.Request.Context(), c.Query("status"), queryInt(c, "limit", 0))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
