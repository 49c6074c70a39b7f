package payment

import "context"

// Repository persists the payment ledger
type Repository interface {
	// Save inserts or updates a payment
	Save(ctx context.Context, p *Payment) error

	// FindByPayPalOrderID returns the payment for a PayPal order
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (*Payment, error)

	// UpdateStatus changes only the status columns of a payment
	UpdateStatus(ctx context.Context, p *Payment) error

	// ListByStatus returns payments newest first; an empty status lists all
	ListByStatus(ctx context.Context, status Status, limit int) ([]Payment, error)
}
