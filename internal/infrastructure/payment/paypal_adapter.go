// Package payment talks to the PayPal REST API directly, for deployments
// where the gateway holds the merchant credentials instead of the backend.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/shared"
)

// PayPalAdapter implements payment.Gateway against /v2/checkout/orders
type PayPalAdapter struct {
	config     *PayPalConfig
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// AdapterOption configures a PayPalAdapter
type AdapterOption func(*PayPalAdapter)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) AdapterOption {
	return func(a *PayPalAdapter) {
		a.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) AdapterOption {
	return func(a *PayPalAdapter) {
		a.logger = l
	}
}

// NewPayPalAdapter validates the configuration and creates the adapter
func NewPayPalAdapter(config *PayPalConfig, opts ...AdapterOption) (*PayPalAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	a := &PayPalAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

var _ payment.Gateway = (*PayPalAdapter)(nil)

// CreateOrder creates a CAPTURE-intent order for the USD total
func (a *PayPalAdapter) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (string, error) {
	if !req.Total.IsPositive() {
		return "", shared.InvalidInput("Invalid total amount")
	}
	units := 0
	for _, it := range req.Items {
		units += it.Quantity
	}
	body := paypalCreateOrder{
		Intent: "CAPTURE",
		PurchaseUnits: []paypalPurchaseUnit{{
			Description: fmt.Sprintf("%s order (%d items)", a.config.BrandName, units),
			Amount: paypalAmount{
				CurrencyCode: string(req.Total.Currency()),
				Value:        req.Total.StringFixed(2),
			},
		}},
		ApplicationContext: paypalApplicationContext{
			BrandName:          a.config.BrandName,
			ShippingPreference: "NO_SHIPPING",
			UserAction:         "PAY_NOW",
		},
	}

	var order paypalOrder
	if err := a.doRequest(ctx, http.MethodPost, "/v2/checkout/orders", uuid.NewString(), body, &order); err != nil {
		return "", err
	}
	if order.ID == "" {
		return "", fmt.Errorf("%w: paypal returned no order id", shared.ErrUpstream)
	}
	a.logger.Info("PayPal order created",
		zap.String("paypal_order_id", order.ID),
		zap.String("status", order.Status),
		zap.String("amount", req.Total.String()),
	)
	return order.ID, nil
}

// CaptureOrder captures an approved order. The request id is derived from
// the order so a retried capture is deduplicated by PayPal.
func (a *PayPalAdapter) CaptureOrder(ctx context.Context, paypalOrderID string) (*payment.Capture, error) {
	if paypalOrderID == "" {
		return nil, shared.InvalidInput("PayPal order id is required")
	}
	var raw json.RawMessage
	path := "/v2/checkout/orders/" + url.PathEscape(paypalOrderID) + "/capture"
	if err := a.doRequest(ctx, http.MethodPost, path, "capture-"+paypalOrderID, struct{}{}, &raw); err != nil {
		return nil, err
	}
	var order paypalOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("paypal: failed to parse capture: %w", err)
	}
	if order.Status != "COMPLETED" {
		return nil, &GatewayError{
			Status:  http.StatusUnprocessableEntity,
			Name:    "CAPTURE_NOT_COMPLETED",
			Issue:   order.Status,
			Message: "capture status is " + order.Status,
		}
	}
	return &payment.Capture{OrderID: order.ID, Status: order.Status, Raw: raw}, nil
}

// token returns a cached OAuth access token, refreshing it a minute early
func (a *PayPalAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && a.now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.APIBaseURL()+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("paypal: failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, status, err := a.send(req)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", newGatewayError(status, body)
	}
	var tok paypalToken
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", fmt.Errorf("%w: paypal token response is invalid", shared.ErrUpstream)
	}
	a.accessToken = tok.AccessToken
	a.tokenExpiry = a.now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return a.accessToken, nil
}

func (a *PayPalAdapter) invalidateToken() {
	a.mu.Lock()
	a.accessToken = ""
	a.mu.Unlock()
}

// doRequest performs an authenticated JSON call
func (a *PayPalAdapter) doRequest(ctx context.Context, method, path, requestID string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("paypal: failed to encode request: %w", err)
	}
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("paypal: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	body, status, err := a.send(req)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		a.invalidateToken()
	}
	if status >= 400 {
		ge := newGatewayError(status, body)
		a.logger.Warn("PayPal request failed",
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("issue", ge.Issue),
			zap.String("debug_id", ge.DebugID),
		)
		return ge
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("paypal: failed to parse response: %w", err)
	}
	return nil
}

func (a *PayPalAdapter) send(req *http.Request) ([]byte, int, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: paypal: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("paypal: failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
