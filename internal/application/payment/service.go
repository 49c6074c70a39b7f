package payment

import (
	"context"
	"time"

	"github.com/ugmart/storefront/internal/domain/payment"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// PaymentResponse is a ledger entry as shown on the admin dashboard
type PaymentResponse struct {
	ID             string    `json:"id"`
	PayPalOrderID  string    `json:"paypalOrderId"`
	UserID         string    `json:"userId"`
	AddressID      string    `json:"addressId"`
	CouponID       *string   `json:"couponId,omitempty"`
	AmountUGX      string    `json:"amountUgx"`
	AmountUSD      string    `json:"amountUsd"`
	Status         string    `json:"status"`
	BackendOrderID string    `json:"backendOrderId,omitempty"`
	FailureReason  string    `json:"failureReason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ToPaymentResponse converts a ledger entry
func ToPaymentResponse(p payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID.String(),
		PayPalOrderID:  p.PayPalOrderID,
		UserID:         p.UserID,
		AddressID:      p.AddressID,
		CouponID:       p.CouponID,
		AmountUGX:      p.AmountUGX.StringFixed(0),
		AmountUSD:      p.AmountUSD.StringFixed(2),
		Status:         string(p.Status),
		BackendOrderID: p.BackendOrderID,
		FailureReason:  p.FailureReason,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// LedgerService exposes the payment ledger to admins
type LedgerService struct {
	repo payment.Repository
}

// NewLedgerService creates a LedgerService
func NewLedgerService(repo payment.Repository) *LedgerService {
	return &LedgerService{repo: repo}
}

// List returns entries newest first, optionally filtered by status. limit
// defaults to 50 and is capped at 200.
func (s *LedgerService) List(ctx context.Context, status string, limit int) ([]PaymentResponse, error) {
	var filter payment.Status
	if status != "" {
		parsed, err := payment.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	entries, err := s.repo.ListByStatus(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, 0, len(entries))
	for _, p := range entries {
		out = append(out, ToPaymentResponse(p))
	}
	return out, nil
}
