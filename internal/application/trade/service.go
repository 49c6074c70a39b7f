package trade

import (
	"context"

	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/trade"
)

// OrderResponse is an order with its display fields
type OrderResponse struct {
	trade.Order
	CreatedAtLabel string `json:"createdAtLabel"`
	StatusLabel    string `json:"statusLabel"`
}

// ToOrderResponse adds the display fields
func ToOrderResponse(o trade.Order) OrderResponse {
	return OrderResponse{
		Order:          o,
		CreatedAtLabel: trade.FormatDate(o.CreatedAt),
		StatusLabel:    o.Status.Label(),
	}
}

// ToOrderResponses converts a list, never returning nil
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}

// OrderService handles order history and admin fulfilment
type OrderService struct {
	orders trade.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orders trade.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// ListMine returns the orders of the user in ctx
func (s *OrderService) ListMine(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orders.ListMine(ctx)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// ListAll returns every order
func (s *OrderService) ListAll(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id string) (*OrderResponse, error) {
	if id == "" {
		return nil, shared.InvalidInput("Order id is required")
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(*o)
	return &resp, nil
}

// UpdateStatus moves an order to status, given in any letter case
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*OrderResponse, error) {
	if id == "" {
		return nil, shared.InvalidInput("Order id is required")
	}
	parsed, err := trade.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(*o)
	return &resp, nil
}
