// Package protection evaluates bot, abuse and rate-limit rules for sensitive
// storefront actions such as signup, product creation and payment.
package protection

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Reason names the rule family that denied a request
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonShield     Reason = "SHIELD"
	ReasonBot        Reason = "BOT"
	ReasonEmail      Reason = "EMAIL"
	ReasonRateLimit  Reason = "RATE_LIMIT"
	ReasonHosting    Reason = "HOSTING"
	ReasonSpoofedBot Reason = "SPOOFED_BOT"
)

// Decision is the outcome of evaluating a rule or an engine
type Decision struct {
	Allowed bool
	Reason  Reason
	// Kind refines the reason, e.g. the bot category or the email problem
	Kind       string
	Rule       string
	RetryAfter time.Duration
	// DryRun is set when a denial was logged but not enforced
	DryRun bool
}

// Allow is the neutral decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a denial
func Deny(reason Reason, kind string) Decision {
	return Decision{Reason: reason, Kind: kind}
}

// IsDenied reports an enforced denial
func (d Decision) IsDenied() bool {
	return !d.Allowed
}

// Request is what the rules look at
type Request struct {
	IP        string
	UserAgent string
	Method    string
	Path      string
	RawQuery  string
	Header    http.Header
	UserID    string
	Email     string
	// Requested is the number of limiter tokens this request costs
	Requested int
}

// Rule is one protection check
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, req *Request) (Decision, error)
}

// Engine runs rules in order; the first denial wins
type Engine struct {
	rules  []Rule
	dryRun bool
	logger *zap.Logger
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithDryRun logs denials without enforcing them
func WithDryRun(dryRun bool) EngineOption {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithEngineLogger sets the logger
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine over rules
func NewEngine(rules []Rule, opts ...EngineOption) *Engine {
	e := &Engine{rules: rules, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every rule until one denies. A rule that errors is skipped
// so an unreachable resolver or store never blocks shoppers.
func (e *Engine) Evaluate(ctx context.Context, req *Request) Decision {
	if req.Requested < 1 {
		req.Requested = 1
	}
	for _, rule := range e.rules {
		d, err := rule.Evaluate(ctx, req)
		if err != nil {
			e.logger.Warn("protection rule failed",
				zap.String("rule", rule.Name()),
				zap.Error(err),
			)
			continue
		}
		if d.Allowed {
			continue
		}
		d.Rule = rule.Name()
		fields := []zap.Field{
			zap.String("rule", d.Rule),
			zap.String("reason", string(d.Reason)),
			zap.String("kind", d.Kind),
			zap.String("ip", req.IP),
			zap.String("path", req.Path),
		}
		if e.dryRun {
			e.logger.Info("protection denial (dry run)", fields...)
			d.Allowed = true
			d.DryRun = true
			return d
		}
		e.logger.Warn("protection denial", fields...)
		return d
	}
	return Allow()
}
