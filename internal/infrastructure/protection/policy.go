package protection

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// PolicyName identifies a protected action
type PolicyName string

const (
	PolicySignup        PolicyName = "signup"
	PolicyLogin         PolicyName = "login"
	PolicyProductCreate PolicyName = "product_create"
	PolicyPayment       PolicyName = "payment"
)

// Denial is a protection refusal rendered for the shopper
type Denial struct {
	*shared.DomainError
	Status     int
	Decision   Decision
	RetryAfter time.Duration
}

// Unwrap exposes the domain error for errors.Is/As
func (d *Denial) Unwrap() error {
	return d.DomainError
}

func denial(status int, code, message string, dec Decision) *Denial {
	return &Denial{
		DomainError: shared.NewDomainError(code, message),
		Status:      status,
		Decision:    dec,
		RetryAfter:  dec.RetryAfter,
	}
}

// Policy is an engine plus the wording of its denials
type Policy struct {
	Name    PolicyName
	Engine  *Engine
	Explain func(Decision) *Denial
}

// Settings configures the standard policies
type Settings struct {
	Enabled           bool
	DryRun            bool
	HostingCIDRs      []string
	DisposableDomains []string
	VerifyMX          bool
	VerifyBots        bool
}

// DecisionHook observes every evaluated decision, e.g. for metrics
type DecisionHook func(ctx context.Context, policy PolicyName, d Decision)

// Service enforces named policies
type Service struct {
	enabled  bool
	policies map[PolicyName]*Policy
	hooks    []DecisionHook
	logger   *zap.Logger
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithDecisionHook registers an observer
func WithDecisionHook(h DecisionHook) ServiceOption {
	return func(s *Service) {
		s.hooks = append(s.hooks, h)
	}
}

// WithServiceLogger sets the logger
func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService builds the standard storefront policies over a limiter store
// and a DNS resolver
func NewService(cfg Settings, store LimitStore, resolver Resolver, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		enabled:  cfg.Enabled,
		policies: make(map[PolicyName]*Policy),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	engineOpts := []EngineOption{WithDryRun(cfg.DryRun), WithEngineLogger(s.logger.Named("protection"))}

	hosting, err := NewHostingRule(cfg.HostingCIDRs)
	if err != nil {
		return nil, err
	}
	var mxResolver Resolver
	if cfg.VerifyMX {
		mxResolver = resolver
	}
	emailRule := NewEmailRule(EmailRuleConfig{
		Block:             []EmailKind{EmailDisposable, EmailInvalid, EmailNoMXRecords},
		DisposableDomains: cfg.DisposableDomains,
		Resolver:          mxResolver,
	})

	signupLimiter, err := NewLimiter(LimitConfig{
		Name: string(PolicySignup), Algorithm: TokenBucket,
		Capacity: 10, Refill: 5, Interval: 10 * time.Second,
	}, store)
	if err != nil {
		return nil, err
	}
	productLimiter, err := NewLimiter(LimitConfig{
		Name: string(PolicyProductCreate), Algorithm: FixedWindow,
		Max: 5, Window: 500 * time.Second,
	}, store)
	if err != nil {
		return nil, err
	}
	paymentLimiter, err := NewLimiter(LimitConfig{
		Name: string(PolicyPayment), Algorithm: SlidingWindow,
		Max: 5, Window: 10 * time.Minute,
	}, store)
	if err != nil {
		return nil, err
	}

	signupRules := []Rule{NewShieldRule(), NewBotRule(BotSearchEngine), hosting}
	if cfg.VerifyBots && resolver != nil {
		signupRules = append(signupRules, NewSpoofedBotRule(resolver))
	}
	signupRules = append(signupRules, emailRule, &signupRequestRule{NewRateLimitRule(signupLimiter, ByEmail)})

	s.register(&Policy{
		Name:    PolicySignup,
		Engine:  NewEngine(signupRules, engineOpts...),
		Explain: explainSignup,
	})
	s.register(&Policy{
		Name:    PolicyLogin,
		Engine:  NewEngine([]Rule{emailRule}, engineOpts...),
		Explain: explainSignup,
	})
	s.register(&Policy{
		Name: PolicyProductCreate,
		Engine: NewEngine([]Rule{
			NewBotRule(),
			NewRateLimitRule(productLimiter, ByUser),
			NewShieldRule(),
		}, engineOpts...),
		Explain: explainProductCreate,
	})
	s.register(&Policy{
		Name: PolicyPayment,
		Engine: NewEngine([]Rule{
			NewShieldRule(),
			NewBotRule(),
			emailRule,
			NewRateLimitRule(paymentLimiter, ByUser),
		}, engineOpts...),
		Explain: explainPayment,
	})
	return s, nil
}

// signupRequestRule makes each signup attempt cost 5 tokens
type signupRequestRule struct {
	*RateLimitRule
}

func (r *signupRequestRule) Evaluate(ctx context.Context, req *Request) (Decision, error) {
	cp := *req
	cp.Requested = 5
	return r.RateLimitRule.Evaluate(ctx, &cp)
}

func (s *Service) register(p *Policy) {
	s.policies[p.Name] = p
}

// Register adds or replaces a policy
func (s *Service) Register(p *Policy) {
	s.register(p)
}

// Enforce evaluates a policy for the caller in ctx and returns a *Denial
// when the action must be refused
func (s *Service) Enforce(ctx context.Context, name PolicyName, subject Subject) error {
	if !s.enabled {
		return nil
	}
	p, ok := s.policies[name]
	if !ok {
		return fmt.Errorf("protection: unknown policy %q", name)
	}
	d := p.Engine.Evaluate(ctx, NewRequest(ctx, subject))
	for _, h := range s.hooks {
		h(ctx, name, d)
	}
	if d.Allowed {
		return nil
	}
	return p.Explain(d)
}

func explainEmail(d Decision) *Denial {
	switch EmailKind(d.Kind) {
	case EmailDisposable:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Disposable email not allowed", d)
	case EmailInvalid:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Invalid email format", d)
	case EmailNoMXRecords:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Email domain cannot receive emails", d)
	default:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Email validation failed", d)
	}
}

func explainSignup(d Decision) *Denial {
	switch d.Reason {
	case ReasonEmail:
		return explainEmail(d)
	case ReasonRateLimit:
		return denial(http.StatusTooManyRequests, shared.CodeRateLimited, "Too many requests. Please try again later", d)
	case ReasonBot:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Bot detected", d)
	case ReasonShield:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Access blocked by security shield", d)
	case ReasonHosting:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Forbidden - Hosting IP detected", d)
	case ReasonSpoofedBot:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Forbidden - Spoofed bot detected", d)
	default:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Access forbidden", d)
	}
}

func explainProductCreate(d Decision) *Denial {
	switch d.Reason {
	case ReasonBot:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Bot activity detected!", d)
	case ReasonRateLimit:
		return denial(http.StatusTooManyRequests, shared.CodeRateLimited, "Too much activity, try again after sometime!", d)
	case ReasonShield:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Unusual activity detected!", d)
	default:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Access denied!", d)
	}
}

func explainPayment(d Decision) *Denial {
	switch d.Reason {
	case ReasonBot:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Unusual activity detected!", d)
	case ReasonRateLimit:
		return denial(http.StatusTooManyRequests, shared.CodeRateLimited, "Too many payment attempts. Please try again later.", d)
	case ReasonEmail:
		return denial(http.StatusBadRequest, shared.CodeInvalidInput, "Invalid email address. Please use a valid email.", d)
	default:
		return denial(http.StatusForbidden, shared.CodeForbidden, "Payment blocked. Please try again.", d)
	}
}
