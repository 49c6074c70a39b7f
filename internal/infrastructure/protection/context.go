package protection

import (
	"context"
	"net/http"
)

type clientKey struct{}

// Client is the caller's network identity, captured once per HTTP request
type Client struct {
	IP        string
	UserAgent string
	Method    string
	Path      string
	RawQuery  string
	Header    http.Header
}

// WithClient stores the caller in ctx
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFrom returns the caller stored in ctx
func ClientFrom(ctx context.Context) Client {
	if c, ok := ctx.Value(clientKey{}).(Client); ok {
		return c
	}
	return Client{}
}

// Subject is the account-level identity an action is performed for
type Subject struct {
	UserID string
	Email  string
}

// NewRequest combines the caller in ctx with the subject
func NewRequest(ctx context.Context, s Subject) *Request {
	c := ClientFrom(ctx)
	return &Request{
		IP:        c.IP,
		UserAgent: c.UserAgent,
		Method:    c.Method,
		Path:      c.Path,
		RawQuery:  c.RawQuery,
		Header:    c.Header,
		UserID:    s.UserID,
		Email:     s.Email,
	}
}
