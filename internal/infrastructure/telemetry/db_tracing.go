package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures ledger query spans
type DBTracingConfig struct {
	Enabled         bool
	DBName          string
	SlowQueryThresh time.Duration
	// WithVariables includes bind values in spans; off outside development
	WithVariables bool
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm and tags slow statements on their span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		markSlowQuery(tx, cfg.SlowQueryThresh)
	}

	cb := db.Callback()
	regs := []error{
		cb.Create().Before("gorm:create").Register("storefront:timing_create", before),
		cb.Query().Before("gorm:query").Register("storefront:timing_query", before),
		cb.Update().Before("gorm:update").Register("storefront:timing_update", before),
		cb.Delete().Before("gorm:delete").Register("storefront:timing_delete", before),
		cb.Row().Before("gorm:row").Register("storefront:timing_row", before),
		cb.Raw().Before("gorm:raw").Register("storefront:timing_raw", before),
		cb.Create().After("gorm:create").Register("storefront:slow_create", after),
		cb.Query().After("gorm:query").Register("storefront:slow_query", after),
		cb.Update().After("gorm:update").Register("storefront:slow_update", after),
		cb.Delete().After("gorm:delete").Register("storefront:slow_delete", after),
		cb.Row().After("gorm:row").Register("storefront:slow_row", after),
		cb.Raw().After("gorm:raw").Register("storefront:slow_raw", after),
	}
	if err := errors.Join(regs...); err != nil {
		return err
	}

	logger.Info("Ledger query tracing enabled", zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

func markSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
