package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Capture results
const (
	CaptureSucceeded = "success"
	CaptureFailed    = "failed"
	CaptureDuplicate = "duplicate"
)

// CheckoutMetrics counts the money path of the storefront
type CheckoutMetrics struct {
	logger *zap.Logger

	paypalOrders        *Counter
	captures            *Counter
	amountUGX           *Histogram
	cartSyncs           *Counter
	protectionDecisions *Counter
}

// NewCheckoutMetrics registers the checkout instruments on meter
func NewCheckoutMetrics(meter metric.Meter, logger *zap.Logger) (*CheckoutMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &CheckoutMetrics{logger: logger}

	var err error
	if m.paypalOrders, err = NewCounter(meter, "checkout_paypal_orders_total",
		"PayPal orders created", "{orders}"); err != nil {
		return nil, err
	}
	if m.captures, err = NewCounter(meter, "checkout_captures_total",
		"PayPal capture attempts by result", "{captures}"); err != nil {
		return nil, err
	}
	if m.amountUGX, err = NewHistogram(meter, "checkout_amount_ugx",
		"Captured order totals in shillings", "UGX", UGXAmountBuckets...); err != nil {
		return nil, err
	}
	if m.cartSyncs, err = NewCounter(meter, "cart_sync_total",
		"Debounced cart flushes to the backend", "{syncs}"); err != nil {
		return nil, err
	}
	if m.protectionDecisions, err = NewCounter(meter, "protection_decisions_total",
		"Protection decisions by policy and outcome", "{decisions}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordPayPalOrder counts a created PayPal order
func (m *CheckoutMetrics) RecordPayPalOrder(ctx context.Context, provider string) {
	m.paypalOrders.Inc(ctx, AttrProvider.String(provider))
}

// RecordCapture counts a capture; successful ones also record the amount
func (m *CheckoutMetrics) RecordCapture(ctx context.Context, result string, amountUGX float64) {
	m.captures.Inc(ctx, AttrResult.String(result))
	if result == CaptureSucceeded && amountUGX > 0 {
		m.amountUGX.Record(ctx, amountUGX)
	}
}

// RecordCartSync counts a cart flush and whether it failed
func (m *CheckoutMetrics) RecordCartSync(ctx context.Context, err error) {
	result := CaptureSucceeded
	if err != nil {
		result = CaptureFailed
	}
	m.cartSyncs.Inc(ctx, AttrResult.String(result))
}

// RecordProtectionDecision counts an evaluated protection policy
func (m *CheckoutMetrics) RecordProtectionDecision(ctx context.Context, policy, conclusion, reason string) {
	m.protectionDecisions.Inc(ctx,
		AttrRuleSet.String(policy),
		AttrConclusion.String(conclusion),
		AttrReason.String(reason),
	)
}
