package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ugmart/storefront/internal/domain/cart"
)

// CartClient implements cart.Repository
type CartClient struct {
	c *Client
}

// NewCartClient creates a cart client
func NewCartClient(c *Client) *CartClient {
	return &CartClient{c: c}
}

var _ cart.Repository = (*CartClient)(nil)

func (cc *CartClient) Fetch(ctx context.Context) ([]cart.Item, error) {
	resp, err := cc.c.doJSON(ctx, http.MethodGet, "/cart/cart", nil)
	if err != nil {
		return nil, err
	}
	var items []cart.Item
	if _, err := resp.field("data", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []cart.Item{}
	}
	return items, nil
}

type addToCartRequest struct {
	ProductID string `json:"productID"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

func (cc *CartClient) Add(ctx context.Context, cmd cart.AddItem) (*cart.Item, error) {
	req := addToCartRequest{ProductID: cmd.ProductID, Quantity: cmd.Quantity}
	if cmd.Color != nil {
		req.Color = *cmd.Color
	}
	if cmd.Size != nil {
		req.Size = *cmd.Size
	}
	resp, err := cc.c.doJSON(ctx, http.MethodPost, "/cart/addToCart", req)
	if err != nil {
		return nil, err
	}
	if err := resp.requireSuccess("Failed to add item to cart"); err != nil {
		return nil, err
	}
	var item cart.Item
	ok, err := resp.field("data", &item)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &APIError{Status: resp.status, Message: "Failed to add item to cart"}
	}
	return &item, nil
}

func (cc *CartClient) Remove(ctx context.Context, id string) (*cart.Item, error) {
	resp, err := cc.c.doJSON(ctx, http.MethodDelete, "/cart/removecartItem/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var item cart.Item
	ok, err := resp.field("data", &item)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (cc *CartClient) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	_, err := cc.c.doJSON(ctx, http.MethodPost, "/cart/updatecart/"+url.PathEscape(id), map[string]int{"quantity": quantity})
	return err
}

func (cc *CartClient) Clear(ctx context.Context) error {
	_, err := cc.c.doJSON(ctx, http.MethodDelete, "/cart/clear", nil)
	return err
}
