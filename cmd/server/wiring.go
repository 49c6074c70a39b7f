package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/backend"
	"github.com/ugmart/storefront/internal/infrastructure/config"
	paymentinfra "github.com/ugmart/storefront/internal/infrastructure/payment"
	"github.com/ugmart/storefront/internal/infrastructure/migration"
	"github.com/ugmart/storefront/internal/infrastructure/persistence"
	"github.com/ugmart/storefront/internal/infrastructure/persistence/models"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
	"github.com/ugmart/storefront/migrations"
)

// paymentGateway picks who talks to PayPal. "backend" goes through the
// store backend's /paypal endpoints, "direct" calls the PayPal REST API.
func paymentGateway(cfg config.PayPalConfig, client *backend.Client, log *zap.Logger) (payment.Gateway, string, error) {
	switch cfg.Provider {
	case "", "backend":
		return backend.NewPayPalClient(client), "backend", nil
	case "direct":
		adapter, err := paymentinfra.NewPayPalAdapter(&paymentinfra.PayPalConfig{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Environment:  cfg.Environment,
		}, paymentinfra.WithLogger(log))
		if err != nil {
			return nil, "", err
		}
		return adapter, "direct", nil
	default:
		return nil, "", fmt.Errorf("unknown paypal provider %q", cfg.Provider)
	}
}

// migrateLedger applies the embedded SQL migrations on postgres. SQLite
// ledgers are created from the model instead.
func migrateLedger(db *persistence.Database, driver string, log *zap.Logger) error {
	if driver == "sqlite" {
		return db.DB.AutoMigrate(&models.PaymentModel{})
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.Source{FS: migrations.FS}, log)
	if err != nil {
		return err
	}
	// Close would also close sqlDB, which the ledger keeps using
	return m.Up()
}

// conclusion labels a decision for the protection metrics
func conclusion(d protection.Decision) string {
	switch {
	case d.Allowed:
		return "ALLOW"
	case d.DryRun:
		return "DRY_RUN"
	default:
		return "DENY"
	}
}

// disabledLedger answers the admin payments page when no database is configured
type disabledLedger struct{}

func (disabledLedger) Save(context.Context, *payment.Payment) error { return nil }

func (disabledLedger) FindByPayPalOrderID(context.Context, string) (*payment.Payment, error) {
	return nil, shared.NotFound("Payment not found")
}

func (disabledLedger) UpdateStatus(context.Context, *payment.Payment) error { return nil }

func (disabledLedger) ListByStatus(context.Context, payment.Status, int) ([]payment.Payment, error) {
	return []payment.Payment{}, nil
}

var _ payment.Repository = disabledLedger{}
