package protection

import (
	"context"
	"net/url"
	"regexp"
)

// signature is a known attack payload shape
type signature struct {
	kind    string
	pattern *regexp.Regexp
}

var shieldSignatures = []signature{
	{"SQL_INJECTION", regexp.MustCompile(`(?i)(\bunion\b[\s\S]{0,40}\bselect\b|'\s*or\s*'?\d*'?\s*=|\bor\s+1\s*=\s*1\b|;\s*(drop|delete|truncate|alter)\s+\w+|\b(sleep|benchmark|pg_sleep)\s*\(|--\s*$|/\*.*\*/)`)},
	{"XSS", regexp.MustCompile(`(?i)(<\s*script|javascript\s*:|\bon(error|load|mouseover|focus)\s*=|<\s*iframe|<\s*svg[^>]*on\w+\s*=)`)},
	{"PATH_TRAVERSAL", regexp.MustCompile(`(?i)(\.\./|\.\.\\|/etc/passwd|/proc/self/|\bwin\.ini\b)`)},
	{"COMMAND_INJECTION", regexp.MustCompile(`(?i)((;|\|\||&&|\|)\s*(cat|ls|id|whoami|wget|curl|nc|bash|sh|powershell)\b|\$\([^)]*\)|` + "`" + `[^` + "`" + `]+` + "`" + `)`)},
}

// shieldHeaders are the request headers inspected besides path and query
var shieldHeaders = []string{"User-Agent", "Referer", "X-Forwarded-Host", "X-Original-URL"}

// ShieldRule blocks requests carrying common injection and traversal payloads
type ShieldRule struct{}

// NewShieldRule creates the shield rule
func NewShieldRule() *ShieldRule {
	return &ShieldRule{}
}

func (r *ShieldRule) Name() string { return "shield" }

func (r *ShieldRule) Evaluate(_ context.Context, req *Request) (Decision, error) {
	candidates := []string{req.Path, req.RawQuery}
	if q, err := url.QueryUnescape(req.RawQuery); err == nil {
		candidates = append(candidates, q)
	}
	if p, err := url.PathUnescape(req.Path); err == nil {
		candidates = append(candidates, p)
	}
	for _, h := range shieldHeaders {
		if v := req.Header.Get(h); v != "" {
			candidates = append(candidates, v)
		}
	}
	for _, s := range candidates {
		if s == "" {
			continue
		}
		for _, sig := range shieldSignatures {
			if sig.pattern.MatchString(s) {
				return Deny(ReasonShield, sig.kind), nil
			}
		}
	}
	return Allow(), nil
}
