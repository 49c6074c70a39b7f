package trade

import "context"

// OrderRepository is the order side of the store backend
type OrderRepository interface {
	// Create places an order after payment
	Create(ctx context.Context, order NewOrder) (*Order, error)

	// UpdateStatus moves an order to a new status
	UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)

	// ListAll returns every order (admin)
	ListAll(ctx context.Context) ([]Order, error)

	// ListMine returns the orders of the user carried in ctx
	ListMine(ctx context.Context) ([]Order, error)

	// Get returns a single order
	Get(ctx context.Context, id string) (*Order, error)
}
