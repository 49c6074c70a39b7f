package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/promotion"
	"github.com/ugmart/storefront/internal/domain/shared"
)

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Available(ctx context.Context) ([]promotion.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Create(ctx context.Context, draft promotion.Draft) (*promotion.Coupon, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Apply(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	coupons := []promotion.Coupon{
		{ID: "1", Code: "SAVE10", Percentage: decimal.NewFromInt(10), EndDate: now.AddDate(0, 1, 0)},
		{ID: "2", Code: "USEDUP", Percentage: decimal.NewFromInt(5), UsageLimit: 3, UsageCount: 3, EndDate: now.AddDate(0, 1, 0)},
		{ID: "3", Code: "OLD", Percentage: decimal.NewFromInt(20), EndDate: now.AddDate(0, 0, -1)},
	}

	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantErr string
	}{
		{"applied", " save10 ", "Coupon SAVE10 applied! 10% off", ""},
		{"empty", "   ", "", "Please enter a coupon code"},
		{"unknown", "NOPE", "", "Invalid discount coupon"},
		{"usage limit", "usedup", "", "Coupon usage limit reached!"},
		{"expired", "old", "", "Discount coupon has expired!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCouponRepository)
			repo.On("Available", mock.Anything).Return(coupons, nil).Maybe()
			svc := NewService(repo)
			svc.now = func() time.Time { return now }

			app, err := svc.Apply(context.Background(), tt.code)
			if tt.wantErr != "" {
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsg, app.Message)
			assert.True(t, app.Percentage.Equal(decimal.NewFromInt(10)))
		})
	}
}

func TestService_Create(t *testing.T) {
	repo := new(MockCouponRepository)
	svc := NewService(repo)
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	draft := promotion.Draft{Code: "eid-25", Percentage: decimal.NewFromInt(25), StartDate: start, EndDate: start.AddDate(0, 1, 0)}
	repo.On("Create", ctx, mock.MatchedBy(func(d promotion.Draft) bool { return d.Code == "EID-25" })).
		Return(&promotion.Coupon{ID: "c1", Code: "EID-25"}, nil)

	c, err := svc.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "EID-25", c.Code)

	_, err = svc.Create(ctx, promotion.Draft{Code: "X"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestService_ListAndDelete(t *testing.T) {
	repo := new(MockCouponRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("Available", ctx).Return(nil, nil)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)

	assert.ErrorIs(t, svc.Delete(ctx, ""), shared.ErrInvalidInput)
	repo.On("Delete", ctx, "c1").Return(nil)
	assert.NoError(t, svc.Delete(ctx, "c1"))
}
