package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

// Status is where a PayPal payment stands in the checkout flow
type Status string

const (
	StatusCreated       Status = "CREATED"
	StatusCaptured      Status = "CAPTURED"
	StatusCompleted     Status = "COMPLETED"
	StatusOrderFailed   Status = "ORDER_FAILED"
	StatusCaptureFailed Status = "CAPTURE_FAILED"
)

var validStatuses = map[Status]bool{
	StatusCreated:       true,
	StatusCaptured:      true,
	StatusCompleted:     true,
	StatusOrderFailed:   true,
	StatusCaptureFailed: true,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// ParseStatus validates a status filter
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", shared.InvalidInput("Invalid payment status: " + s)
	}
	return status, nil
}

// ErrInvalidTransition is returned when a payment cannot move to the requested status
var ErrInvalidTransition = errors.New("payment: invalid status transition")

// Payment is the gateway's ledger entry for one PayPal order
type Payment struct {
	ID             uuid.UUID
	PayPalOrderID  string
	UserID         string
	AddressID      string
	CouponID       *string
	AmountUGX      valueobject.Money
	AmountUSD      valueobject.Money
	Status         Status
	BackendOrderID string
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPayment records a freshly created PayPal order
func NewPayment(paypalOrderID, userID, addressID string, couponID *string, ugx, usd valueobject.Money) (*Payment, error) {
	if paypalOrderID == "" {
		return nil, shared.InvalidInput("PayPal order id is required")
	}
	if userID == "" {
		return nil, shared.InvalidInput("User is required")
	}
	now := time.Now()
	return &Payment{
		ID:            uuid.New(),
		PayPalOrderID: paypalOrderID,
		UserID:        userID,
		AddressID:     addressID,
		CouponID:      couponID,
		AmountUGX:     ugx,
		AmountUSD:     usd,
		Status:        StatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MarkCaptured records a successful capture
func (p *Payment) MarkCaptured() error {
	if p.Status != StatusCreated && p.Status != StatusCaptureFailed {
		return ErrInvalidTransition
	}
	p.Status = StatusCaptured
	p.FailureReason = ""
	p.touch()
	return nil
}

// MarkCaptureFailed records a capture the provider refused
func (p *Payment) MarkCaptureFailed(reason string) error {
	if p.Status != StatusCreated && p.Status != StatusCaptureFailed {
		return ErrInvalidTransition
	}
	p.Status = StatusCaptureFailed
	p.FailureReason = reason
	p.touch()
	return nil
}

// MarkCompleted links the captured payment to the backend order
func (p *Payment) MarkCompleted(backendOrderID string) error {
	if p.Status != StatusCaptured && p.Status != StatusOrderFailed {
		return ErrInvalidTransition
	}
	p.Status = StatusCompleted
	p.BackendOrderID = backendOrderID
	p.FailureReason = ""
	p.touch()
	return nil
}

// MarkOrderFailed records money taken without an order, which support must resolve
func (p *Payment) MarkOrderFailed(reason string) error {
	if p.Status != StatusCaptured {
		return ErrInvalidTransition
	}
	p.Status = StatusOrderFailed
	p.FailureReason = reason
	p.touch()
	return nil
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now()
}
