package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMeter(t *testing.T) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp.Meter("test"), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumBy returns the counter value for data points carrying key=value
func sumBy(t *testing.T, m metricdata.Metrics, key attribute.Key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), Config{}, 0, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCheckoutMetrics(t *testing.T) {
	meter, reader := newTestMeter(t)
	m, err := NewCheckoutMetrics(meter, nil)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPayPalOrder(ctx, "backend")
	m.RecordPayPalOrder(ctx, "backend")
	m.RecordCapture(ctx, CaptureSucceeded, 150000)
	m.RecordCapture(ctx, CaptureFailed, 99000)
	m.RecordCapture(ctx, CaptureDuplicate, 0)
	m.RecordCartSync(ctx, nil)
	m.RecordCartSync(ctx, errors.New("backend down"))
	m.RecordProtectionDecision(ctx, "payment", "DENY", "RATE_LIMIT")

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumBy(t, got["checkout_paypal_orders_total"], AttrProvider, "backend"))
	assert.Equal(t, int64(1), sumBy(t, got["checkout_captures_total"], AttrResult, CaptureSucceeded))
	assert.Equal(t, int64(1), sumBy(t, got["checkout_captures_total"], AttrResult, CaptureFailed))
	assert.Equal(t, int64(1), sumBy(t, got["checkout_captures_total"], AttrResult, CaptureDuplicate))
	assert.Equal(t, int64(1), sumBy(t, got["cart_sync_total"], AttrResult, CaptureFailed))
	assert.Equal(t, int64(1), sumBy(t, got["protection_decisions_total"], AttrReason, "RATE_LIMIT"))

	hist, ok := got["checkout_amount_ugx"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	// only the successful capture is recorded
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, 150000.0, hist.DataPoints[0].Sum)
}

func TestNewCheckoutMetrics_NilMeter(t *testing.T) {
	_, err := NewCheckoutMetrics(nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
	_, err = NewHTTPMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestHTTPMetrics(t *testing.T) {
	meter, reader := newTestMeter(t)
	m, err := NewHTTPMetrics(meter)
	require.NoError(t, err)

	m.Record(context.Background(), "GET", "/bff/v1/products/:id", 200, 30*time.Millisecond)
	m.Record(context.Background(), "GET", "/bff/v1/products/:id", 404, 10*time.Millisecond)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumBy(t, got["http_server_requests_total"], AttrHTTPRoute, "/bff/v1/products/:id"))
	assert.Equal(t, int64(1), sumBy(t, got["http_server_requests_total"], AttrHTTPStatusCode, "404"))

	hist, ok := got["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}
