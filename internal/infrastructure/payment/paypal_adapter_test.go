package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

func TestPayPalConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *PayPalConfig
		wantErr error
		wantURL string
	}{
		{
			name:    "sandbox default",
			config:  &PayPalConfig{ClientID: "id", ClientSecret: "secret"},
			wantURL: paypalSandboxBaseURL,
		},
		{
			name:    "live",
			config:  &PayPalConfig{ClientID: "id", ClientSecret: "secret", Environment: "LIVE"},
			wantURL: paypalLiveBaseURL,
		},
		{
			name:    "override",
			config:  &PayPalConfig{ClientID: "id", ClientSecret: "secret", BaseURL: "http://localhost:9000/"},
			wantURL: "http://localhost:9000",
		},
		{
			name:    "missing client id",
			config:  &PayPalConfig{ClientSecret: "secret"},
			wantErr: ErrPayPalMissingClientID,
		},
		{
			name:    "missing client secret",
			config:  &PayPalConfig{ClientID: "id"},
			wantErr: ErrPayPalMissingClientSecret,
		},
		{
			name:    "bad environment",
			config:  &PayPalConfig{ClientID: "id", ClientSecret: "secret", Environment: "staging"},
			wantErr: ErrPayPalInvalidEnvironment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, tt.config.APIBaseURL())
			assert.Equal(t, 30*time.Second, tt.config.Timeout)
		})
	}
}

type fakePayPal struct {
	tokenCalls   atomic.Int32
	createBodies []paypalCreateOrder
	requestIDs   []string
	captureReply func(w http.ResponseWriter)
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Client Authentication failed"}`))
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"A21","token_type":"Bearer","expires_in":32400}`))
	})
	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A21", r.Header.Get("Authorization"))
		f.requestIDs = append(f.requestIDs, r.Header.Get("PayPal-Request-Id"))
		var body paypalCreateOrder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.createBodies = append(f.createBodies, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"5O190127TN364715T","status":"CREATED"}`))
	})
	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		f.requestIDs = append(f.requestIDs, r.Header.Get("PayPal-Request-Id"))
		if f.captureReply != nil {
			f.captureReply(w)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + r.PathValue("id") + `","status":"COMPLETED"}`))
	})
	return mux
}

func newTestPayPalAdapter(t *testing.T, f *fakePayPal, secret string) *PayPalAdapter {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	a, err := NewPayPalAdapter(&PayPalConfig{ClientID: "client", ClientSecret: secret, BaseURL: srv.URL})
	require.NoError(t, err)
	return a
}

func usd(t *testing.T, v string) valueobject.Money {
	m, err := valueobject.NewMoneyFromString(v, valueobject.USD)
	require.NoError(t, err)
	return m
}

func TestPayPalAdapter_CreateOrder(t *testing.T) {
	f := &fakePayPal{}
	a := newTestPayPalAdapter(t, f, "secret")

	id, err := a.CreateOrder(context.Background(), payment.CreateOrderRequest{
		Items: []payment.OrderLine{
			{ProductID: "p1", Name: "Kitenge Dress", Price: 45000, Quantity: 2},
			{ProductID: "p2", Name: "Sandals", Price: 30000, Quantity: 1},
		},
		Total: usd(t, "33.333"),
	})
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", id)

	require.Len(t, f.createBodies, 1)
	body := f.createBodies[0]
	assert.Equal(t, "CAPTURE", body.Intent)
	require.Len(t, body.PurchaseUnits, 1)
	assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)
	assert.Equal(t, "33.33", body.PurchaseUnits[0].Amount.Value)
	assert.Equal(t, "UG Mart order (3 items)", body.PurchaseUnits[0].Description)
	assert.NotEmpty(t, f.requestIDs[0])

	// token is cached
	_, err = a.CreateOrder(context.Background(), payment.CreateOrderRequest{Total: usd(t, "1")})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
	assert.NotEqual(t, f.requestIDs[0], f.requestIDs[1])
}

func TestPayPalAdapter_CreateOrderRejectsZeroTotal(t *testing.T) {
	a := newTestPayPalAdapter(t, &fakePayPal{}, "secret")
	_, err := a.CreateOrder(context.Background(), payment.CreateOrderRequest{Total: valueobject.Zero(valueobject.USD)})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPayPalAdapter_TokenRefresh(t *testing.T) {
	f := &fakePayPal{}
	a := newTestPayPalAdapter(t, f, "secret")
	now := time.Now()
	a.now = func() time.Time { return now }

	_, err := a.CreateOrder(context.Background(), payment.CreateOrderRequest{Total: usd(t, "5")})
	require.NoError(t, err)

	now = now.Add(9 * time.Hour)
	_, err = a.CreateOrder(context.Background(), payment.CreateOrderRequest{Total: usd(t, "5")})
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestPayPalAdapter_BadCredentials(t *testing.T) {
	a := newTestPayPalAdapter(t, &fakePayPal{}, "wrong")
	_, err := a.CreateOrder(context.Background(), payment.CreateOrderRequest{Total: usd(t, "5")})

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusUnauthorized, ge.Status)
	assert.Equal(t, "invalid_client", ge.Name)
	assert.ErrorIs(t, err, shared.ErrUpstream)
}

func TestPayPalAdapter_CaptureOrder(t *testing.T) {
	f := &fakePayPal{}
	a := newTestPayPalAdapter(t, f, "secret")

	c, err := a.CaptureOrder(context.Background(), "5O190127TN364715T")
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", c.OrderID)
	assert.Equal(t, "COMPLETED", c.Status)
	assert.JSONEq(t, `{"id":"5O190127TN364715T","status":"COMPLETED"}`, string(c.Raw))
	assert.Equal(t, "capture-5O190127TN364715T", f.requestIDs[0])

	_, err = a.CaptureOrder(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPayPalAdapter_CaptureErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		issue   string
	}{
		{
			name:    "already captured",
			status:  http.StatusUnprocessableEntity,
			body:    `{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed","debug_id":"f00","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`,
			wantErr: shared.ErrConflict,
			issue:   "ORDER_ALREADY_CAPTURED",
		},
		{
			name:    "not approved",
			status:  http.StatusUnprocessableEntity,
			body:    `{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}`,
			wantErr: shared.ErrInvalidInput,
			issue:   "ORDER_NOT_APPROVED",
		},
		{
			name:    "unknown order",
			status:  http.StatusNotFound,
			body:    `{"name":"RESOURCE_NOT_FOUND"}`,
			wantErr: shared.ErrNotFound,
		},
		{
			name:    "provider outage",
			status:  http.StatusServiceUnavailable,
			body:    `<html>down</html>`,
			wantErr: shared.ErrUpstream,
		},
		{
			name:    "pending capture",
			status:  http.StatusCreated,
			body:    `{"id":"X","status":"PAYER_ACTION_REQUIRED"}`,
			wantErr: shared.ErrInvalidInput,
			issue:   "PAYER_ACTION_REQUIRED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakePayPal{captureReply: func(w http.ResponseWriter) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}}
			a := newTestPayPalAdapter(t, f, "secret")

			_, err := a.CaptureOrder(context.Background(), "X")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var ge *GatewayError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.issue, ge.Issue)
		})
	}
}

func TestPayPalAdapter_Unreachable(t *testing.T) {
	a, err := NewPayPalAdapter(&PayPalConfig{ClientID: "c", ClientSecret: "s", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, err = a.CaptureOrder(context.Background(), "X")
	assert.ErrorIs(t, err, shared.ErrUpstream)
}
