package backend

import (
	"context"
	"net/http"
	"strings"
)

type credentialsKey struct{}

// Credentials are the caller's auth material forwarded to the backend
type Credentials struct {
	BearerToken string
	Cookie      string
}

// WithCredentials returns a context whose backend calls act as the caller
func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

// CredentialsFrom returns the credentials stored in ctx
func CredentialsFrom(ctx context.Context) Credentials {
	if c, ok := ctx.Value(credentialsKey{}).(Credentials); ok {
		return c
	}
	return Credentials{}
}

// CredentialsFromRequest reads the Authorization header and cookies of an
// incoming request
func CredentialsFromRequest(r *http.Request) Credentials {
	c := Credentials{Cookie: r.Header.Get("Cookie")}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		c.BearerToken = strings.TrimSpace(auth[7:])
	}
	return c
}

func (c Credentials) apply(req *http.Request) {
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}
}
