package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ugmart/storefront/internal/domain/customer"
)

// AddressClient implements customer.AddressRepository
type AddressClient struct {
	c *Client
}

// NewAddressClient creates an address client
func NewAddressClient(c *Client) *AddressClient {
	return &AddressClient{c: c}
}

var _ customer.AddressRepository = (*AddressClient)(nil)

func (a *AddressClient) List(ctx context.Context) ([]customer.Address, error) {
	resp, err := a.c.doJSON(ctx, http.MethodGet, "/address/fetchAllAddresses", nil)
	if err != nil {
		return nil, err
	}
	if err := resp.requireSuccess("Failed to fetch addresses"); err != nil {
		return nil, err
	}
	var addresses []customer.Address
	if _, err := resp.field("addresses", &addresses); err != nil {
		return nil, err
	}
	if addresses == nil {
		addresses = []customer.Address{}
	}
	return addresses, nil
}

func (a *AddressClient) Create(ctx context.Context, d customer.AddressDraft) (*customer.Address, error) {
	resp, err := a.c.doJSON(ctx, http.MethodPost, "/address/createAddress", d)
	if err != nil {
		return nil, err
	}
	if err := resp.requireSuccess("Failed to create address"); err != nil {
		return nil, err
	}
	var addr customer.Address
	ok, err := resp.field("address", &addr)
	if err != nil {
		return nil, err
	}
	if ok {
		return &addr, nil
	}
	var list []customer.Address
	if _, err := resp.field("addresses", &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, &APIError{Status: resp.status, Message: "Failed to create address"}
	}
	return &list[0], nil
}

func (a *AddressClient) Update(ctx context.Context, id string, d customer.AddressDraft) (*customer.Address, error) {
	resp, err := a.c.doJSON(ctx, http.MethodPut, "/address/updateAddress/"+url.PathEscape(id), d)
	if err != nil {
		return nil, err
	}
	if err := resp.requireSuccess("Failed to update address"); err != nil {
		return nil, err
	}
	var addr customer.Address
	ok, err := resp.field("address", &addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &APIError{Status: resp.status, Message: "Failed to update address"}
	}
	return &addr, nil
}

func (a *AddressClient) Delete(ctx context.Context, id string) error {
	resp, err := a.c.doJSON(ctx, http.MethodDelete, "/address/deleteAddress/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return resp.requireSuccess("Failed to delete address")
}
