package promotion

import "context"

// Repository is the coupon side of the store backend
type Repository interface {
	// Available returns the coupons shoppers may apply
	Available(ctx context.Context) ([]Coupon, error)

	// Create adds a coupon
	Create(ctx context.Context, draft Draft) (*Coupon, error)

	// Delete removes a coupon
	Delete(ctx context.Context, id string) error
}
