package checkout

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ugmart/storefront/internal/domain/cart"
	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/promotion"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
	"github.com/ugmart/storefront/internal/domain/trade"
	"github.com/ugmart/storefront/internal/infrastructure/cache"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
	"github.com/ugmart/storefront/internal/infrastructure/telemetry"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Fetch(ctx context.Context) ([]cart.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockCartRepository) Add(ctx context.Context, cmd cart.AddItem) (*cart.Item, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartRepository) Remove(ctx context.Context, id string) (*cart.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

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
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order trade.NewOrder) (*trade.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status trade.OrderStatus) (*trade.Order, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]trade.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) ListMine(ctx context.Context) ([]trade.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Get(ctx context.Context, id string) (*trade.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*trade.Order), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CaptureOrder(ctx context.Context, id string) (*payment.Capture, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Capture), args.Error(1)
}

// memoryLedger keeps payments in a map and records the status history
type memoryLedger struct {
	entries map[string]*payment.Payment
	history []payment.Status
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{entries: make(map[string]*payment.Payment)}
}

func (l *memoryLedger) Save(_ context.Context, p *payment.Payment) error {
	cp := *p
	l.entries[p.PayPalOrderID] = &cp
	l.history = append(l.history, p.Status)
	return nil
}

func (l *memoryLedger) FindByPayPalOrderID(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := l.entries[id]
	if !ok {
		return nil, shared.NotFound("Payment not found")
	}
	cp := *p
	return &cp, nil
}

func (l *memoryLedger) UpdateStatus(ctx context.Context, p *payment.Payment) error {
	return l.Save(ctx, p)
}

func (l *memoryLedger) ListByStatus(context.Context, payment.Status, int) ([]payment.Payment, error) {
	return nil, nil
}

type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Enforce(ctx context.Context, name protection.PolicyName, subject protection.Subject) error {
	return m.Called(ctx, name, subject).Error(0)
}

type captureCounter struct {
	orders  int
	results []string
}

func (c *captureCounter) RecordPayPalOrder(context.Context, string) { c.orders++ }

func (c *captureCounter) RecordCapture(_ context.Context, result string, _ float64) {
	c.results = append(c.results, result)
}

var (
	testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rate    = decimal.NewFromInt(3600)
)

func cartItems() []cart.Item {
	return []cart.Item{
		{ID: "l1", ProductID: "p1", Name: "Kitenge Dress", Price: 18000, Quantity: 1},
		{ID: "l2", ProductID: "p2", Name: "Sandals", Price: 9000, Quantity: 2},
	}
}

func availableCoupons() []promotion.Coupon {
	return []promotion.Coupon{{ID: "c10", Code: "SAVE10", Percentage: decimal.NewFromInt(10), EndDate: testNow.AddDate(0, 1, 0)}}
}

type fixture struct {
	carts   *MockCartRepository
	coupons *MockCouponRepository
	orders  *MockOrderRepository
	gateway *MockGateway
	ledger  *memoryLedger
	claims  *cache.InMemoryIdempotencyStore
	guard   *MockGuard
	metrics *captureCounter
	logs    *observer.ObservedLogs
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	f := &fixture{
		carts:   new(MockCartRepository),
		coupons: new(MockCouponRepository),
		orders:  new(MockOrderRepository),
		gateway: new(MockGateway),
		ledger:  newMemoryLedger(),
		claims:  cache.NewInMemoryIdempotencyStore(),
		guard:   new(MockGuard),
		metrics: &captureCounter{},
		logs:    logs,
	}
	t.Cleanup(func() { _ = f.claims.Close() })
	f.svc = NewService(f.carts, f.coupons, f.orders, f.gateway, rate,
		WithLedger(f.ledger),
		WithIdempotency(f.claims, time.Hour),
		WithGuard(f.guard),
		WithMetrics(f.metrics, "paypal"),
		WithLogger(zap.New(core)),
	)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestWithIdempotency_ClaimTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"default", 0, 10 * time.Minute},
		{"negative falls back", -time.Second, DefaultCaptureClaimTTL},
		{"explicit", time.Hour, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cache.NewInMemoryIdempotencyStore()
			t.Cleanup(func() { _ = store.Close() })
			svc := NewService(nil, nil, nil, nil, rate, WithIdempotency(store, tt.ttl))
			assert.Equal(t, tt.want, svc.claimTTL)
		})
	}
}

func TestService_Quote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.On("Fetch", ctx).Return(cartItems(), nil)
	f.coupons.On("Available", ctx).Return(availableCoupons(), nil)

	q, err := f.svc.Quote(ctx, "save10")
	require.NoError(t, err)
	assert.True(t, q.Subtotal.Equals(valueobject.UGXFromFloat(36000)))
	assert.True(t, q.Discount.Equals(valueobject.UGXFromFloat(3600)))
	assert.True(t, q.Total.Equals(valueobject.UGXFromFloat(32400)))
	assert.Equal(t, "9.00", q.TotalUSD.StringFixed(2))
	assert.Equal(t, 3, q.Items)
	require.NotNil(t, q.Coupon)
	assert.Equal(t, "c10", q.Coupon.Coupon.ID)

	plain, err := f.svc.Quote(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, plain.Coupon)
	assert.True(t, plain.Total.Equals(valueobject.UGXFromFloat(36000)))
}

func TestService_Quote_EmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.On("Fetch", ctx).Return([]cart.Item{}, nil)

	_, err := f.svc.Quote(ctx, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.EqualError(t, err, "Cart is empty")
}

func TestService_CreatePayPalOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	subject := protection.Subject{UserID: "u1", Email: "amina@example.ug"}
	f.guard.On("Enforce", mock.Anything, protection.PolicyPayment, subject).Return(nil)
	f.carts.On("Fetch", mock.Anything).Return(cartItems(), nil)
	f.coupons.On("Available", mock.Anything).Return(availableCoupons(), nil)
	f.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req payment.CreateOrderRequest) bool {
		return len(req.Items) == 2 && req.Total.Currency() == valueobject.USD && req.Total.StringFixed(2) == "9.00"
	})).Return("PP-1", nil)

	res, err := f.svc.CreatePayPalOrder(ctx, CreateOrderCommand{
		UserID: "u1", Email: "amina@example.ug", AddressID: "a1", CouponCode: "SAVE10",
	})
	require.NoError(t, err)
	assert.Equal(t, "PP-1", res.OrderID)
	assert.Equal(t, 1, f.metrics.orders)

	entry, err := f.ledger.FindByPayPalOrderID(ctx, "PP-1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCreated, entry.Status)
	assert.Equal(t, "a1", entry.AddressID)
	require.NotNil(t, entry.CouponID)
	assert.Equal(t, "c10", *entry.CouponID)
	assert.True(t, entry.AmountUGX.Equals(valueobject.UGXFromFloat(32400)))
}

func TestService_CreatePayPalOrder_Rejections(t *testing.T) {
	denied := &protection.Denial{
		DomainError: shared.NewDomainError(shared.CodeRateLimited, "Too many payment attempts. Please try again later."),
		Status:      http.StatusTooManyRequests,
	}

	tests := []struct {
		name    string
		cmd     CreateOrderCommand
		guard   error
		items   []cart.Item
		wantErr string
	}{
		{"bad email", CreateOrderCommand{UserID: "u1", Email: "amina@", AddressID: "a1"}, nil, nil, msgInvalidEmail},
		{"no address", CreateOrderCommand{UserID: "u1", Email: "amina@example.ug"}, nil, nil, "Please select a delivery address"},
		{"protection", CreateOrderCommand{UserID: "u1", Email: "amina@example.ug", AddressID: "a1"}, denied, nil, "Too many payment attempts. Please try again later."},
		{"empty cart", CreateOrderCommand{UserID: "u1", Email: "amina@example.ug", AddressID: "a1"}, nil, []cart.Item{}, "Cart is empty"},
		{"zero total", CreateOrderCommand{UserID: "u1", Email: "amina@example.ug", AddressID: "a1"}, nil,
			[]cart.Item{{ID: "l1", ProductID: "p1", Price: 0, Quantity: 1}}, "Invalid total amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.guard.On("Enforce", mock.Anything, protection.PolicyPayment, mock.Anything).Return(tt.guard).Maybe()
			f.carts.On("Fetch", mock.Anything).Return(tt.items, nil).Maybe()

			_, err := f.svc.CreatePayPalOrder(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
			assert.Empty(t, f.ledger.entries)
		})
	}
}

func seedLedger(t *testing.T, f *fixture) {
	t.Helper()
	couponID := "c10"
	usd, err := valueobject.NewMoneyFromString("9.00", valueobject.USD)
	require.NoError(t, err)
	entry, err := payment.NewPayment("PP-1", "u1", "a1", &couponID, valueobject.UGXFromFloat(32400), usd)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Save(context.Background(), entry))
	f.ledger.history = nil
}

func TestService_CapturePayPalOrder(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)
	ctx := context.Background()

	f.gateway.On("CaptureOrder", mock.Anything, "PP-1").Return(&payment.Capture{OrderID: "PP-1", Status: "COMPLETED"}, nil).Once()
	f.carts.On("Fetch", mock.Anything).Return(cartItems(), nil)
	f.carts.On("Clear", mock.Anything).Return(nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o trade.NewOrder) bool {
		return o.AddressID == "a1" && o.TransactionID == "PP-1" && o.PaymentMethod == trade.PaymentMethodPayPal &&
			o.TotalAmount == 32400 && o.CouponID != nil && *o.CouponID == "c10" && len(o.Items) == 2
	})).Return(&trade.Order{ID: "o1", TotalAmount: 32400}, nil)

	res, err := f.svc.CapturePayPalOrder(ctx, CaptureCommand{UserID: "u1", PayPalOrderID: "PP-1"})
	require.NoError(t, err)
	assert.Equal(t, "o1", res.Order.ID)
	assert.Equal(t, "COMPLETED", res.Status)
	assert.Equal(t, []payment.Status{payment.StatusCaptured, payment.StatusCompleted}, f.ledger.history)
	assert.Equal(t, "o1", f.ledger.entries["PP-1"].BackendOrderID)
	assert.Equal(t, []string{telemetry.CaptureSucceeded}, f.metrics.results)
	f.carts.AssertCalled(t, "Clear", mock.Anything)

	// a second capture of the same order is refused while the claim holds
	_, err = f.svc.CapturePayPalOrder(ctx, CaptureCommand{UserID: "u1", PayPalOrderID: "PP-1"})
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.EqualError(t, err, msgCaptureRunning)
	f.gateway.AssertNumberOfCalls(t, "CaptureOrder", 1)
}

func TestService_CapturePayPalOrder_CaptureFailureReleasesClaim(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)
	ctx := context.Background()

	refused := shared.WrapDomainError(shared.CodeInvalidInput, "Payment was declined", errors.New("INSTRUMENT_DECLINED"))
	f.gateway.On("CaptureOrder", mock.Anything, "PP-1").Return(nil, refused).Once()

	_, err := f.svc.CapturePayPalOrder(ctx, CaptureCommand{UserID: "u1", PayPalOrderID: "PP-1"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, []payment.Status{payment.StatusCaptureFailed}, f.ledger.history)

	held, err := f.claims.IsProcessed(ctx, "capture:PP-1")
	require.NoError(t, err)
	assert.False(t, held)
	assert.Equal(t, []string{telemetry.CaptureFailed}, f.metrics.results)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_CapturePayPalOrder_OrderFailure(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)
	ctx := context.Background()

	f.gateway.On("CaptureOrder", mock.Anything, "PP-1").Return(&payment.Capture{OrderID: "PP-1", Status: "COMPLETED"}, nil)
	f.carts.On("Fetch", mock.Anything).Return(cartItems(), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil, shared.ErrUpstream)

	_, err := f.svc.CapturePayPalOrder(ctx, CaptureCommand{UserID: "u1", PayPalOrderID: "PP-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUpstream)
	assert.Equal(t, msgOrderFailed, err.Error())
	assert.Equal(t, []payment.Status{payment.StatusCaptured, payment.StatusOrderFailed}, f.ledger.history)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything)
	assert.Equal(t, 1, f.logs.FilterMessage("Order creation failed after PayPal capture").Len())
}

func TestService_CapturePayPalOrder_WithoutLedgerEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.gateway.On("CaptureOrder", mock.Anything, "PP-9").Return(&payment.Capture{OrderID: "PP-9", Status: "COMPLETED"}, nil)
	f.carts.On("Fetch", mock.Anything).Return(cartItems(), nil)
	f.carts.On("Clear", mock.Anything).Return(errors.New("backend down"))
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o trade.NewOrder) bool {
		return o.AddressID == "a2" && o.TotalAmount == 36000 && o.CouponID == nil
	})).Return(&trade.Order{ID: "o9", TotalAmount: 36000}, nil)

	res, err := f.svc.CapturePayPalOrder(ctx, CaptureCommand{UserID: "u1", PayPalOrderID: "PP-9", AddressID: "a2"})
	require.NoError(t, err)
	assert.Equal(t, "o9", res.Order.ID)
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to clear cart after order").Len())
}

func TestService_CapturePayPalOrder_OtherUsersPayment(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)

	_, err := f.svc.CapturePayPalOrder(context.Background(), CaptureCommand{UserID: "intruder", PayPalOrderID: "PP-1"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	f.gateway.AssertNotCalled(t, "CaptureOrder", mock.Anything, mock.Anything)

	held, _ := f.claims.IsProcessed(context.Background(), "capture:PP-1")
	assert.False(t, held)
}
