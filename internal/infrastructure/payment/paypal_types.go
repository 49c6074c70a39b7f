package payment

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ugmart/storefront/internal/domain/shared"
)

type paypalToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id,omitempty"`
	Description string       `json:"description,omitempty"`
	Amount      paypalAmount `json:"amount"`
}

type paypalApplicationContext struct {
	BrandName          string `json:"brand_name,omitempty"`
	ShippingPreference string `json:"shipping_preference,omitempty"`
	UserAction         string `json:"user_action,omitempty"`
}

type paypalCreateOrder struct {
	Intent             string                   `json:"intent"`
	PurchaseUnits      []paypalPurchaseUnit     `json:"purchase_units"`
	ApplicationContext paypalApplicationContext `json:"application_context"`
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paypalErrorBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
	// OAuth failures use a different shape
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// GatewayError is a non-2xx answer from the PayPal REST API
type GatewayError struct {
	Status  int
	Name    string
	Issue   string
	Message string
	DebugID string
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("paypal: %d %s", e.Status, e.Name)
	if e.Issue != "" {
		msg += " (" + e.Issue + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is maps PayPal failures onto domain errors
func (e *GatewayError) Is(target error) bool {
	switch target {
	case shared.ErrUpstream:
		return e.Status >= http.StatusInternalServerError || e.Status == http.StatusUnauthorized
	case shared.ErrConflict:
		return e.Issue == "ORDER_ALREADY_CAPTURED" || e.Issue == "DUPLICATE_INVOICE_ID"
	case shared.ErrInvalidInput:
		return e.Status == http.StatusUnprocessableEntity || e.Status == http.StatusBadRequest
	case shared.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

func newGatewayError(status int, body []byte) *GatewayError {
	ge := &GatewayError{Status: status, Name: http.StatusText(status)}
	var eb paypalErrorBody
	if json.Unmarshal(body, &eb) != nil {
		return ge
	}
	if eb.Name != "" {
		ge.Name = eb.Name
	} else if eb.Error != "" {
		ge.Name = eb.Error
	}
	ge.Message = eb.Message
	if ge.Message == "" {
		ge.Message = eb.ErrorDescription
	}
	ge.DebugID = eb.DebugID
	if len(eb.Details) > 0 {
		ge.Issue = eb.Details[0].Issue
	}
	return ge
}
