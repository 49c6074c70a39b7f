package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

// PaymentModel is the ledger row for one PayPal order
type PaymentModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	PayPalOrderID  string          `gorm:"column:paypal_order_id;type:varchar(64);not null;uniqueIndex"`
	UserID         string          `gorm:"type:varchar(64);not null;index"`
	AddressID      string          `gorm:"type:varchar(64)"`
	CouponID       *string         `gorm:"type:varchar(64)"`
	AmountUGX      decimal.Decimal `gorm:"column:amount_ugx;type:decimal(18,2);not null;default:0"`
	AmountUSD      decimal.Decimal `gorm:"column:amount_usd;type:decimal(18,2);not null;default:0"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	BackendOrderID string          `gorm:"type:varchar(64)"`
	FailureReason  string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the row to a payment.Payment
func (m *PaymentModel) ToDomain() *payment.Payment {
	currency := valueobject.Currency(m.Currency)
	if currency == "" {
		currency = valueobject.USD
	}
	usd, _ := valueobject.NewMoney(m.AmountUSD, currency)
	return &payment.Payment{
		ID:             m.ID,
		PayPalOrderID:  m.PayPalOrderID,
		UserID:         m.UserID,
		AddressID:      m.AddressID,
		CouponID:       m.CouponID,
		AmountUGX:      valueobject.UGXFromDecimal(m.AmountUGX),
		AmountUSD:      usd,
		Status:         payment.Status(m.Status),
		BackendOrderID: m.BackendOrderID,
		FailureReason:  m.FailureReason,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// PaymentModelFromDomain converts a payment.Payment to its row
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	currency := string(p.AmountUSD.Currency())
	if currency == "" {
		currency = string(valueobject.USD)
	}
	return &PaymentModel{
		ID:             p.ID,
		PayPalOrderID:  p.PayPalOrderID,
		UserID:         p.UserID,
		AddressID:      p.AddressID,
		CouponID:       p.CouponID,
		AmountUGX:      p.AmountUGX.Amount(),
		AmountUSD:      p.AmountUSD.Amount(),
		Currency:       currency,
		Status:         string(p.Status),
		BackendOrderID: p.BackendOrderID,
		FailureReason:  p.FailureReason,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
