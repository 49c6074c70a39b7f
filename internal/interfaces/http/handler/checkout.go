package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ugmart/storefront/internal/application/checkout"
	"github.com/ugmart/storefront/internal/interfaces/http/middleware"
)

// CheckoutService is the checkout use-case surface
type CheckoutService interface {
	Quote(ctx context.Context, couponCode string) (*checkout.QuoteResponse, error)
	CreatePayPalOrder(ctx context.Context, cmd checkout.CreateOrderCommand) (*checkout.CreateOrderResult, error)
	CapturePayPalOrder(ctx context.Context, cmd checkout.CaptureCommand) (*checkout.CaptureResult, error)
}

// CheckoutHandler serves pricing and the PayPal checkout
type CheckoutHandler struct {
	BaseHandler
	service CheckoutService
}

// NewCheckoutHandler creates a CheckoutHandler
func NewCheckoutHandler(service CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// CreatePayPalOrderRequest starts a payment. Email defaults to the token's
// email claim.
type CreatePayPalOrderRequest struct {
	Email      string `json:"email"`
	AddressID  string `json:"addressId"`
	CouponCode string `json:"couponCode"`
}

// CaptureRequest carries the checkout form again for payments the ledger
// did not record
type CaptureRequest struct {
	AddressID  string `json:"addressId"`
	CouponCode string `json:"couponCode"`
}

// Quote prices the cart with an optional ?coupon=
func (h *CheckoutHandler) Quote(c *gin.Context) {
	quote, err := h.service.Quote(c.Request.Context(), c.Query("coupon"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

func (h *CheckoutHandler) CreatePayPalOrder(c *gin.Context) {
	var req CreatePayPalOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	email := req.Email
	if email == "" {
		email = middleware.GetJWTEmail(c)
	}
	result, err := h.service.CreatePayPalOrder(c.Request.Context(), checkout.CreateOrderCommand{
		UserID:     currentUserID(c),
		Email:      email,
		AddressID:  req.AddressID,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *CheckoutHandler) CapturePayPalOrder(c *gin.Context) {
	var req CaptureRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.CapturePayPalOrder(c.Request.Context(), checkout.CaptureCommand{
		UserID:        currentUserID(c),
		PayPalOrderID: c.Param("id"),
		AddressID:     req.AddressID,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Order placed successfully", result)
}
