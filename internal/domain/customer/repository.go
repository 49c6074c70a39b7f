package customer

import "context"

// AddressRepository is the address book of the user carried in ctx
type AddressRepository interface {
	// List returns all saved addresses
	List(ctx context.Context) ([]Address, error)

	// Create saves a new address
	Create(ctx context.Context, draft AddressDraft) (*Address, error)

	// Update replaces an address
	Update(ctx context.Context, id string, draft AddressDraft) (*Address, error)

	// Delete removes an address
	Delete(ctx context.Context, id string) error
}
