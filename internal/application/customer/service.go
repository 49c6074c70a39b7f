package customer

import (
	"context"

	"github.com/ugmart/storefront/internal/domain/customer"
	"github.com/ugmart/storefront/internal/domain/shared"
)

// AddressService manages the address book of the user in ctx
type AddressService struct {
	repo customer.AddressRepository
}

// NewAddressService creates a new AddressService
func NewAddressService(repo customer.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// List returns the saved addresses, never nil
func (s *AddressService) List(ctx context.Context) ([]customer.Address, error) {
	addresses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if addresses == nil {
		addresses = []customer.Address{}
	}
	return addresses, nil
}

// Default returns the address preselected at checkout, or nil
func (s *AddressService) Default(ctx context.Context) (*customer.Address, error) {
	addresses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return customer.DefaultAddress(addresses), nil
}

// Create saves a new address
func (s *AddressService) Create(ctx context.Context, draft customer.AddressDraft) (*customer.Address, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, draft)
}

// Update replaces an address
func (s *AddressService) Update(ctx context.Context, id string, draft customer.AddressDraft) (*customer.Address, error) {
	if id == "" {
		return nil, shared.InvalidInput("Address id is required")
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, draft)
}

// Delete removes an address
func (s *AddressService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return shared.InvalidInput("Address id is required")
	}
	return s.repo.Delete(ctx, id)
}
