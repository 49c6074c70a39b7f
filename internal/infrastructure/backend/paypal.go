package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ugmart/storefront/internal/domain/payment"
)

// PayPalClient implements payment.Gateway through the backend's PayPal
// endpoints, which hold the merchant credentials
type PayPalClient struct {
	c *Client
}

// NewPayPalClient creates a backend-mediated PayPal gateway
func NewPayPalClient(c *Client) *PayPalClient {
	return &PayPalClient{c: c}
}

var _ payment.Gateway = (*PayPalClient)(nil)

type createPayPalOrderRequest struct {
	Items []payment.OrderLine `json:"items"`
	Total string              `json:"total"`
}

func (p *PayPalClient) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (string, error) {
	resp, err := p.c.doJSON(ctx, http.MethodPost, "/orders/createPaypalOrder", createPayPalOrderRequest{
		Items: req.Items,
		Total: req.Total.StringFixed(2),
	})
	if err != nil {
		return "", err
	}
	if err := resp.requireSuccess("Failed to create PayPal order"); err != nil {
		return "", err
	}
	var orderID string
	if ok, err := resp.field("data", &orderID); err != nil {
		return "", err
	} else if !ok || orderID == "" {
		return "", &APIError{Status: resp.status, Message: "Failed to create PayPal order"}
	}
	return orderID, nil
}

func (p *PayPalClient) CaptureOrder(ctx context.Context, paypalOrderID string) (*payment.Capture, error) {
	resp, err := p.c.doJSON(ctx, http.MethodPost, "/orders/capturePaypalOrder", map[string]string{"orderId": paypalOrderID})
	if err != nil {
		return nil, err
	}
	if err := resp.requireSuccess("Failed to capture PayPal payment"); err != nil {
		return nil, err
	}
	env := resp.envelope()
	capture := &payment.Capture{OrderID: paypalOrderID, Raw: env.Data}
	var detail struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if isPresent(env.Data) && json.Unmarshal(env.Data, &detail) == nil {
		capture.Status = detail.Status
		if detail.ID != "" && detail.ID != paypalOrderID {
			return nil, fmt.Errorf("backend: capture returned order %s, expected %s", detail.ID, paypalOrderID)
		}
	}
	if capture.Status == "" {
		capture.Status = "COMPLETED"
	}
	return capture, nil
}
