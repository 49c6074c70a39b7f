package payment

import (
	"context"
	"encoding/json"

	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

// OrderLine is an item shown on the PayPal approval page
type OrderLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CreateOrderRequest asks the provider for a new PayPal order
type CreateOrderRequest struct {
	Items []OrderLine
	Total valueobject.Money
}

// Capture is the provider's answer to a capture call
type Capture struct {
	OrderID string
	Status  string
	Raw     json.RawMessage
}

// Gateway creates and captures PayPal orders, either through the store
// backend or directly against the PayPal REST API.
type Gateway interface {
	// CreateOrder returns the PayPal order id
	CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error)

	// CaptureOrder captures an approved order
	CaptureOrder(ctx context.Context, paypalOrderID string) (*Capture, error)
}
