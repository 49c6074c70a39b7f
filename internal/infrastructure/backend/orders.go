package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ugmart/storefront/internal/domain/trade"
)

// OrderClient implements trade.OrderRepository
type OrderClient struct {
	c *Client
}

// NewOrderClient creates an order client
func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{c: c}
}

var _ trade.OrderRepository = (*OrderClient)(nil)

func (o *OrderClient) Create(ctx context.Context, order trade.NewOrder) (*trade.Order, error) {
	resp, err := o.c.doJSON(ctx, http.MethodPost, "/orders/create-order", order)
	if err != nil {
		return nil, err
	}
	if err := resp.requireSuccess("Failed to create order"); err != nil {
		return nil, err
	}
	var created trade.Order
	if _, err := resp.field("data", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (o *OrderClient) UpdateStatus(ctx context.Context, id string, status trade.OrderStatus) (*trade.Order, error) {
	resp, err := o.c.doJSON(ctx, http.MethodPut, "/orders/updateorderStatus/"+url.PathEscape(id),
		map[string]trade.OrderStatus{"status": status})
	if err != nil {
		return nil, err
	}
	var updated trade.Order
	if err := resp.dataOrBody(&updated); err != nil {
		return nil, err
	}
	if updated.ID == "" {
		updated.ID = id
		updated.Status = status
	}
	return &updated, nil
}

func (o *OrderClient) ListAll(ctx context.Context) ([]trade.Order, error) {
	return o.list(ctx, "/orders/getOrderAdmin")
}

func (o *OrderClient) ListMine(ctx context.Context) ([]trade.Order, error) {
	return o.list(ctx, "/orders/getorderByUser")
}

// list accepts data, a bare array, or nothing
func (o *OrderClient) list(ctx context.Context, path string) ([]trade.Order, error) {
	resp, err := o.c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var orders []trade.Order
	env := resp.envelope()
	switch {
	case isPresent(env.Data):
		if err := json.Unmarshal(env.Data, &orders); err != nil {
			return nil, err
		}
	case len(resp.body) > 0 && resp.body[0] == '[':
		if err := resp.decode(&orders); err != nil {
			return nil, err
		}
	}
	if orders == nil {
		orders = []trade.Order{}
	}
	return orders, nil
}

func (o *OrderClient) Get(ctx context.Context, id string) (*trade.Order, error) {
	resp, err := o.c.doJSON(ctx, http.MethodGet, "/orders/getorder/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var order trade.Order
	if err := resp.dataOrBody(&order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, &APIError{Status: http.StatusNotFound, Message: "Order not found"}
	}
	return &order, nil
}
