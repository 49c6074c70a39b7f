package promotion

import (
	"context"
	"time"

	"github.com/ugmart/storefront/internal/domain/promotion"
	"github.com/ugmart/storefront/internal/domain/shared"
)

// Service handles coupon administration and checkout coupon application
type Service struct {
	repo promotion.Repository
	now  func() time.Time
}

// NewService creates a new promotion Service
func NewService(repo promotion.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the available coupons
func (s *Service) List(ctx context.Context) ([]promotion.Coupon, error) {
	coupons, err := s.repo.Available(ctx)
	if err != nil {
		return nil, err
	}
	if coupons == nil {
		coupons = []promotion.Coupon{}
	}
	return coupons, nil
}

// Create adds a coupon
func (s *Service) Create(ctx context.Context, draft promotion.Draft) (*promotion.Coupon, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, draft)
}

// Delete removes a coupon
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return shared.InvalidInput("Coupon id is required")
	}
	return s.repo.Delete(ctx, id)
}

// Apply validates a shopper-entered code against the available coupons
func (s *Service) Apply(ctx context.Context, code string) (*promotion.Application, error) {
	if promotion.NormalizeCode(code) == "" {
		return nil, shared.InvalidInput("Please enter a coupon code")
	}
	coupons, err := s.repo.Available(ctx)
	if err != nil {
		return nil, err
	}
	return promotion.Evaluate(coupons, code, s.now())
}
