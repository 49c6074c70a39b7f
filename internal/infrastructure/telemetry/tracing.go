package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// TracerName names spans started by application services
const TracerName = "ugmart-storefront"

// StartSpan starts an internal span. Callers must End it.
//
//	ctx, span := telemetry.StartSpan(ctx, "checkout.capture",
//	    attribute.String("paypal.order_id", id))
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartServiceSpan names the span service.method
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, method), attrs...)
}

// RecordError marks the span failed. Expected shopper errors such as
// invalid input or a missing record are recorded as events only.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code != shared.CodeUpstream {
		span.SetAttributes(attribute.String("error.code", de.Code))
		return
	}
	span.SetStatus(codes.Error, err.Error())
}

// End records err, if any, and ends the span. Use it with a named error:
//
//	defer func() { telemetry.End(span, err) }()
func End(span trace.Span, err error) {
	RecordError(span, err)
	span.End()
}

// GetTraceID returns the current trace id or ""
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
