package trade

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// OrderStatus is the fulfilment state an admin moves an order through
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// AllOrderStatuses lists the statuses in fulfilment order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var statusTitle = cases.Title(language.BritishEnglish)

// ParseOrderStatus accepts a status in any letter case
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllOrderStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", shared.InvalidInput("Invalid order status: " + s)
}

// Label is the display form, e.g. "Shipped"
func (s OrderStatus) Label() string {
	return statusTitle.String(strings.ToLower(string(s)))
}

// PaymentMethodPayPal is the only checkout payment method
const PaymentMethodPayPal = "PAYPAL"

// OrderItem is a priced line frozen into an order
type OrderItem struct {
	ID        string  `json:"id,omitempty"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
	Quantity  int     `json:"quantity"`
}

// Order mirrors the backend order record. Address and user are passed
// through as the backend renders them.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	AddressID     string          `json:"addressId"`
	CouponID      *string         `json:"couponId"`
	TotalAmount   float64         `json:"totalAmount"`
	PaymentID     string          `json:"paymentId,omitempty"`
	Items         []OrderItem     `json:"items"`
	PaymentStatus string          `json:"paymentStatus,omitempty"`
	Address       json.RawMessage `json:"address,omitempty"`
	User          json.RawMessage `json:"user,omitempty"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NewOrder is the command sent to the backend once PayPal captured payment
type NewOrder struct {
	AddressID     string      `json:"addressId"`
	CouponID      *string     `json:"couponId"`
	Items         []OrderItem `json:"items"`
	TransactionID string      `json:"transactionId"`
	PaymentMethod string      `json:"paymentMethod"`
	TotalAmount   float64     `json:"totalAmount"`
}

// Validate checks the command before it leaves the gateway
func (n NewOrder) Validate() error {
	switch {
	case n.AddressID == "":
		return shared.InvalidInput("Please select a delivery address")
	case len(n.Items) == 0:
		return shared.InvalidInput("Cart is empty")
	case n.TransactionID == "":
		return shared.InvalidInput("Missing payment transaction")
	case n.TotalAmount <= 0:
		return shared.InvalidInput("Invalid total amount")
	}
	return nil
}

// FormatDate renders a date the way the order pages show it: "2 Jan 2006"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}
