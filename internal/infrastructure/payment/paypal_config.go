package payment

import (
	"errors"
	"strings"
	"time"
)

const (
	paypalSandboxBaseURL = "https://api-m.sandbox.paypal.com"
	paypalLiveBaseURL    = "https://api-m.paypal.com"
)

// PayPalConfig holds REST API credentials for the direct provider
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	// Environment is sandbox or live
	Environment string
	// BaseURL overrides the environment URL
	BaseURL   string
	BrandName string
	Timeout   time.Duration
}

// Configuration errors
var (
	ErrPayPalMissingClientID     = errors.New("paypal: missing client ID")
	ErrPayPalMissingClientSecret = errors.New("paypal: missing client secret")
	ErrPayPalInvalidEnvironment  = errors.New("paypal: environment must be sandbox or live")
)

// Validate checks the credentials and fills defaults
func (c *PayPalConfig) Validate() error {
	if c.ClientID == "" {
		return ErrPayPalMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrPayPalMissingClientSecret
	}
	switch strings.ToLower(c.Environment) {
	case "", "sandbox":
		c.Environment = "sandbox"
	case "live", "production":
		c.Environment = "live"
	default:
		return ErrPayPalInvalidEnvironment
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.BrandName == "" {
		c.BrandName = "UG Mart"
	}
	return nil
}

// APIBaseURL returns the REST root for the environment
func (c *PayPalConfig) APIBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Environment == "live" {
		return paypalLiveBaseURL
	}
	return paypalSandboxBaseURL
}
