package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ugmart/storefront/internal/infrastructure/backend"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
)

// RequestContext stores the caller's network identity for the protection
// rules and the caller's credentials for backend calls on the request ctx.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := c.Request
		ctx := protection.WithClient(r.Context(), protection.Client{
			IP:        c.ClientIP(),
			UserAgent: r.UserAgent(),
			Method:    r.Method,
			Path:      r.URL.Path,
			RawQuery:  r.URL.RawQuery,
			Header:    r.Header,
		})
		creds := backend.CredentialsFromRequest(r)
		if creds.BearerToken == "" {
			// cookie-only sessions still authenticate with the backend as bearer
			creds.BearerToken = SessionToken(r)
		}
		ctx = backend.WithCredentials(ctx, creds)
		c.Request = r.WithContext(ctx)
		c.Next()
	}
}
