package checkout

import (
	"github.com/ugmart/storefront/internal/domain/promotion"
	"github.com/ugmart/storefront/internal/domain/trade"
)

// QuoteResponse is the checkout summary with the applied coupon, if any
type QuoteResponse struct {
	*trade.Quote
	Coupon *promotion.Application `json:"coupon,omitempty"`
	Items  int                    `json:"itemCount"`
}

// CreateOrderCommand starts a PayPal checkout
type CreateOrderCommand struct {
	UserID     string
	Email      string
	AddressID  string
	CouponCode string
}

// CreateOrderResult carries the PayPal order the browser approves
type CreateOrderResult struct {
	OrderID string       `json:"orderId"`
	Quote   *trade.Quote `json:"quote"`
}

// CaptureCommand finishes a PayPal checkout. AddressID and CouponCode are
// only used when the payment ledger has no entry for the order.
type CaptureCommand struct {
	UserID        string
	PayPalOrderID string
	AddressID     string
	CouponCode    string
}

// CaptureResult is the placed order
type CaptureResult struct {
	PayPalOrderID string       `json:"paypalOrderId"`
	Status        string       `json:"status"`
	Order         *trade.Order `json:"order"`
}
