package cart

import "context"

// Repository is the backend cart of the user carried in ctx
type Repository interface {
	// Fetch returns the current cart lines
	Fetch(ctx context.Context) ([]Item, error)

	// Add adds a product and returns the resulting line
	Add(ctx context.Context, cmd AddItem) (*Item, error)

	// Remove decrements or deletes a line. A nil item means the line is gone.
	Remove(ctx context.Context, id string) (*Item, error)

	// UpdateQuantity sets a line quantity
	UpdateQuantity(ctx context.Context, id string, quantity int) error

	// Clear empties the cart
	Clear(ctx context.Context) error
}
