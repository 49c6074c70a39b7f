package protection

import (
	"context"
	"fmt"
	"time"
)

// Algorithm selects how a limiter counts requests
type Algorithm string

const (
	TokenBucket   Algorithm = "token_bucket"
	FixedWindow   Algorithm = "fixed_window"
	SlidingWindow Algorithm = "sliding_window"
)

// LimitResult is the outcome of one limiter check
type LimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// LimitStore keeps limiter state. Each method checks and records a request
// atomically for its algorithm.
type LimitStore interface {
	TakeTokens(ctx context.Context, key string, capacity, refill int, interval time.Duration, requested int, now time.Time) (LimitResult, error)
	CountFixed(ctx context.Context, key string, max int, window time.Duration, requested int, now time.Time) (LimitResult, error)
	CountSliding(ctx context.Context, key string, max int, window time.Duration, requested int, now time.Time) (LimitResult, error)
}

// LimitConfig describes a limiter. Token buckets use Capacity, Refill and
// Interval; windows use Max and Window.
type LimitConfig struct {
	Name      string
	Algorithm Algorithm
	Capacity  int
	Refill    int
	Interval  time.Duration
	Max       int
	Window    time.Duration
}

// Validate checks the parameters for the algorithm
func (c LimitConfig) Validate() error {
	switch c.Algorithm {
	case TokenBucket:
		if c.Capacity < 1 || c.Refill < 1 || c.Interval <= 0 {
			return fmt.Errorf("protection: token bucket %q needs capacity, refill and interval", c.Name)
		}
	case FixedWindow, SlidingWindow:
		if c.Max < 1 || c.Window <= 0 {
			return fmt.Errorf("protection: window limiter %q needs max and window", c.Name)
		}
	default:
		return fmt.Errorf("protection: unknown limiter algorithm %q", c.Algorithm)
	}
	return nil
}

// Limit is the request ceiling reported in rate-limit headers
func (c LimitConfig) Limit() int {
	if c.Algorithm == TokenBucket {
		return c.Capacity
	}
	return c.Max
}

// Limiter applies a LimitConfig against a store
type Limiter struct {
	cfg   LimitConfig
	store LimitStore
	now   func() time.Time
}

// NewLimiter creates a limiter
func NewLimiter(cfg LimitConfig, store LimitStore) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{cfg: cfg, store: store, now: time.Now}, nil
}

// Config returns the limiter parameters
func (l *Limiter) Config() LimitConfig {
	return l.cfg
}

// Allow checks and records a request costing requested units for key
func (l *Limiter) Allow(ctx context.Context, key string, requested int) (LimitResult, error) {
	if requested < 1 {
		requested = 1
	}
	k := "ratelimit:" + l.cfg.Name + ":" + key
	now := l.now()
	switch l.cfg.Algorithm {
	case TokenBucket:
		return l.store.TakeTokens(ctx, k, l.cfg.Capacity, l.cfg.Refill, l.cfg.Interval, requested, now)
	case FixedWindow:
		return l.store.CountFixed(ctx, k, l.cfg.Max, l.cfg.Window, requested, now)
	default:
		return l.store.CountSliding(ctx, k, l.cfg.Max, l.cfg.Window, requested, now)
	}
}

// Characteristic picks the limiter key from a request
type Characteristic string

const (
	ByIP    Characteristic = "ip"
	ByUser  Characteristic = "user"
	ByEmail Characteristic = "email"
)

func (c Characteristic) key(req *Request) string {
	switch c {
	case ByUser:
		if req.UserID != "" {
			return "user:" + req.UserID
		}
	case ByEmail:
		if req.Email != "" {
			return "email:" + req.Email
		}
	}
	return "ip:" + req.IP
}

// RateLimitRule denies requests over a limiter's budget
type RateLimitRule struct {
	limiter *Limiter
	by      Characteristic
}

// NewRateLimitRule keys limiter by the characteristic, falling back to the IP
func NewRateLimitRule(limiter *Limiter, by Characteristic) *RateLimitRule {
	return &RateLimitRule{limiter: limiter, by: by}
}

func (r *RateLimitRule) Name() string { return "rate_limit:" + r.limiter.cfg.Name }

func (r *RateLimitRule) Evaluate(ctx context.Context, req *Request) (Decision, error) {
	res, err := r.limiter.Allow(ctx, r.by.key(req), req.Requested)
	if err != nil {
		return Decision{}, err
	}
	if res.Allowed {
		return Allow(), nil
	}
	d := Deny(ReasonRateLimit, string(r.limiter.cfg.Algorithm))
	d.RetryAfter = res.RetryAfter
	return d, nil
}
