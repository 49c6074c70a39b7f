package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/persistence/models"
)

const maxPaymentPage = 200

// GormPaymentRepository implements payment.Repository with GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates the ledger repository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save upserts on the primary key
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	m := models.PaymentModelFromDomain(p)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("save payment %s: %w", p.PayPalOrderID, err)
	}
	return nil
}

func (r *GormPaymentRepository) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (*payment.Payment, error) {
	var m models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("paypal_order_id = ?", paypalOrderID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NotFound("Payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", paypalOrderID, err)
	}
	return m.ToDomain(), nil
}

// UpdateStatus writes the status columns only
func (r *GormPaymentRepository) UpdateStatus(ctx context.Context, p *payment.Payment) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"status":           string(p.Status),
			"backend_order_id": p.BackendOrderID,
			"failure_reason":   p.FailureReason,
			"updated_at":       p.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update payment %s: %w", p.PayPalOrderID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Payment not found")
	}
	return nil
}

func (r *GormPaymentRepository) ListByStatus(ctx context.Context, status payment.Status, limit int) ([]payment.Payment, error) {
	if limit <= 0 || limit > maxPaymentPage {
		limit = maxPaymentPage
	}
	q := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}

	var rows []models.PaymentModel
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]payment.Payment, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
