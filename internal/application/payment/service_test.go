package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) FindByPayPalOrderID(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) ListByStatus(ctx context.Context, status payment.Status, limit int) ([]payment.Payment, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

func TestLedgerService_List(t *testing.T) {
	ctx := context.Background()
	usd, err := valueobject.NewMoneyFromString("12.50", valueobject.USD)
	require.NoError(t, err)

	entry := payment.Payment{
		ID:            uuid.New(),
		PayPalOrderID: "PAYPAL-1",
		UserID:        "u-1",
		AmountUGX:     valueobject.UGXFromFloat(45000),
		AmountUSD:     usd,
		Status:        payment.StatusOrderFailed,
		FailureReason: "backend down",
	}

	repo := new(MockPaymentRepository)
	repo.On("ListByStatus", ctx, payment.StatusOrderFailed, 200).Return([]payment.Payment{entry}, nil)
	repo.On("ListByStatus", ctx, payment.Status(""), 50).Return(nil, nil)

	svc := NewLedgerService(repo)

	got, err := svc.List(ctx, "ORDER_FAILED", 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PAYPAL-1", got[0].PayPalOrderID)
	assert.Equal(t, "45000", got[0].AmountUGX)
	assert.Equal(t, "12.50", got[0].AmountUSD)
	assert.Equal(t, "ORDER_FAILED", got[0].Status)

	all, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	_, err = svc.List(ctx, "REFUNDED", 10)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	repo.AssertExpectations(t)
}
