package protection

import (
	"context"
	"strings"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// EmailKind is a problem found with an email address
type EmailKind string

const (
	EmailInvalid     EmailKind = "INVALID"
	EmailDisposable  EmailKind = "DISPOSABLE"
	EmailNoMXRecords EmailKind = "NO_MX_RECORDS"
)

// DefaultDisposableDomains are throwaway inbox providers
var DefaultDisposableDomains = []string{
	"mailinator.com", "guerrillamail.com", "guerrillamail.net", "sharklasers.com",
	"10minutemail.com", "tempmail.com", "temp-mail.org", "yopmail.com",
	"trashmail.com", "getnada.com", "dispostable.com", "maildrop.cc",
	"throwawaymail.com", "fakeinbox.com", "mintemail.com", "emailondeck.com",
}

// EmailRule validates the email address attached to a request
type EmailRule struct {
	block      map[EmailKind]bool
	disposable map[string]bool
	resolver   Resolver
}

// EmailRuleConfig configures an EmailRule
type EmailRuleConfig struct {
	Block             []EmailKind
	DisposableDomains []string
	// Resolver enables MX verification when set
	Resolver Resolver
}

// NewEmailRule creates an email rule
func NewEmailRule(cfg EmailRuleConfig) *EmailRule {
	r := &EmailRule{
		block:      make(map[EmailKind]bool, len(cfg.Block)),
		disposable: make(map[string]bool),
		resolver:   cfg.Resolver,
	}
	for _, k := range cfg.Block {
		r.block[k] = true
	}
	for _, d := range DefaultDisposableDomains {
		r.disposable[d] = true
	}
	for _, d := range cfg.DisposableDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			r.disposable[d] = true
		}
	}
	return r
}

func (r *EmailRule) Name() string { return "email" }

func (r *EmailRule) Evaluate(ctx context.Context, req *Request) (Decision, error) {
	if req.Email == "" {
		return Allow(), nil
	}
	kind, err := r.Inspect(ctx, req.Email)
	if err != nil {
		return Decision{}, err
	}
	if kind != "" && r.block[kind] {
		return Deny(ReasonEmail, string(kind)), nil
	}
	return Allow(), nil
}

// Inspect returns the first problem with email, or "" when none is found
func (r *EmailRule) Inspect(ctx context.Context, email string) (EmailKind, error) {
	if !shared.ValidEmail(email) {
		return EmailInvalid, nil
	}
	domain := shared.EmailDomain(email)
	if r.isDisposable(domain) {
		return EmailDisposable, nil
	}
	if r.resolver != nil && r.block[EmailNoMXRecords] {
		mx, err := r.resolver.LookupMX(ctx, domain)
		if err != nil && !isNotFound(err) {
			return "", err
		}
		if len(mx) == 0 {
			return EmailNoMXRecords, nil
		}
	}
	return "", nil
}

// isDisposable matches the domain and its parent domains
func (r *EmailRule) isDisposable(domain string) bool {
	for domain != "" {
		if r.disposable[domain] {
			return true
		}
		i := strings.IndexByte(domain, '.')
		if i < 0 {
			return false
		}
		domain = domain[i+1:]
	}
	return false
}
