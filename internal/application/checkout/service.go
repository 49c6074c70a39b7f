package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/cart"
	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/promotion"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/trade"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
	"github.com/ugmart/storefront/internal/infrastructure/telemetry"
)

// DefaultCaptureClaimTTL is how long a capture key stays claimed. A capture
// that outlives it can be retried.
const DefaultCaptureClaimTTL = 10 * time.Minute

const (
	msgInvalidEmail   = "Invalid email address. Please use a valid email."
	msgCaptureRunning = "payment capture already in progress"
	msgOrderFailed    = "Payment successful but order creation failed. Please contact support."
)

// Guard evaluates abuse protection for an action
type Guard interface {
	Enforce(ctx context.Context, name protection.PolicyName, subject protection.Subject) error
}

// Metrics records checkout business metrics
type Metrics interface {
	RecordPayPalOrder(ctx context.Context, provider string)
	RecordCapture(ctx context.Context, result string, amountUGX float64)
}

// Service prices carts and runs the PayPal checkout
type Service struct {
	carts     cart.Repository
	coupons   promotion.Repository
	orders    trade.OrderRepository
	gateway   payment.Gateway
	ugxPerUSD decimal.Decimal

	ledger   payment.Repository
	claims   shared.IdempotencyStore
	claimTTL time.Duration
	guard    Guard
	metrics  Metrics
	provider string
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures the Service
type Option func(*Service)

// WithLedger records every PayPal order in the payment ledger
func WithLedger(repo payment.Repository) Option {
	return func(s *Service) {
		s.ledger = repo
	}
}

// WithIdempotency claims capture keys so an order is captured once
func WithIdempotency(store shared.IdempotencyStore, ttl time.Duration) Option {
	return func(s *Service) {
		s.claims = store
		if ttl > 0 {
			s.claimTTL = ttl
		}
	}
}

// WithGuard enables payment protection
func WithGuard(g Guard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

// WithMetrics records checkout metrics; provider labels the PayPal orders
func WithMetrics(m Metrics, provider string) Option {
	return func(s *Service) {
		s.metrics = m
		s.provider = provider
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a checkout Service. ugxPerUSD converts the shilling
// total into the dollar amount charged through PayPal.
func NewService(carts cart.Repository, coupons promotion.Repository, orders trade.OrderRepository, gateway payment.Gateway, ugxPerUSD decimal.Decimal, opts ...Option) *Service {
	s := &Service{
		carts:     carts,
		coupons:   coupons,
		orders:    orders,
		gateway:   gateway,
		ugxPerUSD: ugxPerUSD,
		claimTTL:  DefaultCaptureClaimTTL,
		provider:  "backend",
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote prices the cart of the user in ctx, applying couponCode when set
func (s *Service) Quote(ctx context.Context, couponCode string) (*QuoteResponse, error) {
	c, err := s.fetchCart(ctx)
	if err != nil {
		return nil, err
	}
	app, err := s.applyCoupon(ctx, couponCode)
	if err != nil {
		return nil, err
	}
	quote, err := trade.Price(c, percentOf(app), s.ugxPerUSD)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{Quote: quote, Coupon: app, Items: c.ItemCount()}, nil
}

// CreatePayPalOrder validates the shopper, re-prices the cart and opens a
// PayPal order for the dollar total
func (s *Service) CreatePayPalOrder(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "create_paypal_order")
	var err error
	defer func() { telemetry.End(span, err) }()

	if !shared.ValidEmail(cmd.Email) {
		err = shared.InvalidInput(msgInvalidEmail)
		return nil, err
	}
	if cmd.AddressID == "" {
		err = shared.InvalidInput("Please select a delivery address")
		return nil, err
	}
	if s.guard != nil {
		if err = s.guard.Enforce(ctx, protection.PolicyPayment, protection.Subject{UserID: cmd.UserID, Email: cmd.Email}); err != nil {
			return nil, err
		}
	}

	c, err := s.fetchCart(ctx)
	if err != nil {
		return nil, err
	}
	app, err := s.applyCoupon(ctx, cmd.CouponCode)
	if err != nil {
		return nil, err
	}
	quote, err := trade.Price(c, percentOf(app), s.ugxPerUSD)
	if err != nil {
		return nil, err
	}
	if !quote.Total.IsPositive() || !quote.TotalUSD.IsPositive() {
		err = shared.InvalidInput("Invalid total amount")
		return nil, err
	}

	orderID, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		Items: orderLines(c),
		Total: quote.TotalUSD,
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordPayPalOrder(ctx, s.provider)
	}

	if s.ledger != nil {
		entry, lerr := payment.NewPayment(orderID, cmd.UserID, cmd.AddressID, couponIDOf(app), quote.Total, quote.TotalUSD)
		if lerr == nil {
			lerr = s.ledger.Save(ctx, entry)
		}
		if lerr != nil {
			s.logger.Error("Failed to record PayPal order in ledger",
				zap.String("paypal_order_id", orderID), zap.Error(lerr))
		}
	}

	s.logger.Info("PayPal order created",
		zap.String("paypal_order_id", orderID),
		zap.String("user_id", cmd.UserID),
		zap.String("total_ugx", quote.Total.StringFixed(0)),
		zap.String("total_usd", quote.TotalUSD.StringFixed(2)))
	return &CreateOrderResult{OrderID: orderID, Quote: quote}, nil
}

// CapturePayPalOrder captures an approved PayPal order and places the
// backend order. Money taken without an order is reported as an upstream
// failure and left in the ledger as ORDER_FAILED.
func (s *Service) CapturePayPalOrder(ctx context.Context, cmd CaptureCommand) (*CaptureResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "capture_paypal_order")
	var err error
	defer func() { telemetry.End(span, err) }()

	if cmd.PayPalOrderID == "" {
		err = shared.InvalidInput("PayPal order id is required")
		return nil, err
	}
	log := s.logger.With(zap.String("paypal_order_id", cmd.PayPalOrderID), zap.String("user_id", cmd.UserID))

	key := "capture:" + cmd.PayPalOrderID
	if s.claims != nil {
		claimed, cerr := s.claims.MarkProcessed(ctx, key, s.claimTTL)
		if cerr != nil {
			err = shared.WrapDomainError(shared.CodeUpstream, shared.ErrUpstream.Message, cerr)
			return nil, err
		}
		if !claimed {
			s.recordCapture(ctx, telemetry.CaptureDuplicate, 0)
			err = shared.NewDomainError(shared.CodeConflict, msgCaptureRunning)
			return nil, err
		}
	}

	entry, err := s.ledgerEntry(ctx, cmd)
	if err != nil {
		s.release(ctx, key, log)
		return nil, err
	}

	capture, err := s.gateway.CaptureOrder(ctx, cmd.PayPalOrderID)
	if err != nil {
		log.Warn("PayPal capture failed", zap.Error(err))
		s.release(ctx, key, log)
		if entry != nil && entry.MarkCaptureFailed(err.Error()) == nil {
			s.updateLedger(ctx, entry, log)
		}
		s.recordCapture(ctx, telemetry.CaptureFailed, 0)
		return nil, err
	}
	if entry != nil && entry.MarkCaptured() == nil {
		s.updateLedger(ctx, entry, log)
	}

	order, err := s.placeOrder(ctx, cmd, entry)
	if err != nil {
		log.Error("Order creation failed after PayPal capture", zap.Error(err))
		if entry != nil && entry.MarkOrderFailed(err.Error()) == nil {
			s.updateLedger(ctx, entry, log)
		}
		s.recordCapture(ctx, telemetry.CaptureFailed, 0)
		err = shared.WrapDomainError(shared.CodeUpstream, msgOrderFailed, err)
		return nil, err
	}
	if entry != nil && entry.MarkCompleted(order.ID) == nil {
		s.updateLedger(ctx, entry, log)
	}
	s.recordCapture(ctx, telemetry.CaptureSucceeded, order.TotalAmount)

	if cerr := s.carts.Clear(ctx); cerr != nil {
		log.Warn("Failed to clear cart after order", zap.Error(cerr))
	}

	log.Info("PayPal order captured", zap.String("order_id", order.ID))
	return &CaptureResult{PayPalOrderID: cmd.PayPalOrderID, Status: capture.Status, Order: order}, nil
}

// ledgerEntry loads the ledger entry of the order. A missing entry is
// tolerated; an entry of another user is not.
func (s *Service) ledgerEntry(ctx context.Context, cmd CaptureCommand) (*payment.Payment, error) {
	if s.ledger == nil {
		return nil, nil
	}
	entry, err := s.ledger.FindByPayPalOrderID(ctx, cmd.PayPalOrderID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if cmd.UserID != "" && entry.UserID != cmd.UserID {
		return nil, shared.NewDomainError(shared.CodeForbidden, "This payment belongs to another account")
	}
	return entry, nil
}

// placeOrder freezes the cart into a backend order. Address, coupon and
// total come from the ledger when it has the order.
func (s *Service) placeOrder(ctx context.Context, cmd CaptureCommand, entry *payment.Payment) (*trade.Order, error) {
	c, err := s.fetchCart(ctx)
	if err != nil {
		return nil, err
	}

	order := trade.NewOrder{
		AddressID:     cmd.AddressID,
		Items:         trade.ItemsFromCart(c),
		TransactionID: cmd.PayPalOrderID,
		PaymentMethod: trade.PaymentMethodPayPal,
	}
	if entry != nil {
		order.AddressID = entry.AddressID
		order.CouponID = entry.CouponID
		order.TotalAmount = entry.AmountUGX.Float64()
	} else {
		app, err := s.applyCoupon(ctx, cmd.CouponCode)
		if err != nil {
			return nil, err
		}
		quote, err := trade.Price(c, percentOf(app), s.ugxPerUSD)
		if err != nil {
			return nil, err
		}
		order.CouponID = couponIDOf(app)
		order.TotalAmount = quote.Total.Float64()
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return s.orders.Create(ctx, order)
}

func (s *Service) fetchCart(ctx context.Context) (*cart.Cart, error) {
	items, err := s.carts.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c := cart.New(items)
	if c.IsEmpty() {
		return nil, shared.InvalidInput("Cart is empty")
	}
	return c, nil
}

func (s *Service) applyCoupon(ctx context.Context, code string) (*promotion.Application, error) {
	if promotion.NormalizeCode(code) == "" {
		return nil, nil
	}
	available, err := s.coupons.Available(ctx)
	if err != nil {
		return nil, fmt.Errorf("load coupons: %w", err)
	}
	return promotion.Evaluate(available, code, s.now())
}

func (s *Service) release(ctx context.Context, key string, log *zap.Logger) {
	if s.claims == nil {
		return
	}
	if err := s.claims.Release(context.WithoutCancel(ctx), key); err != nil {
		log.Warn("Failed to release capture claim", zap.Error(err))
	}
}

func (s *Service) updateLedger(ctx context.Context, entry *payment.Payment, log *zap.Logger) {
	if err := s.ledger.UpdateStatus(context.WithoutCancel(ctx), entry); err != nil {
		log.Error("Failed to update payment ledger", zap.String("status", string(entry.Status)), zap.Error(err))
	}
}

func (s *Service) recordCapture(ctx context.Context, result string, amountUGX float64) {
	if s.metrics != nil {
		s.metrics.RecordCapture(ctx, result, amountUGX)
	}
}

func percentOf(app *promotion.Application) decimal.Decimal {
	if app == nil {
		return decimal.Zero
	}
	return app.Percentage
}

func couponIDOf(app *promotion.Application) *string {
	if app == nil || app.Coupon.ID == "" {
		return nil
	}
	id := app.Coupon.ID
	return &id
}

func orderLines(c *cart.Cart) []payment.OrderLine {
	lines := make([]payment.OrderLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, payment.OrderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return lines
}
