package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/infrastructure/auth"
	"github.com/ugmart/storefront/internal/infrastructure/logger"
	"github.com/ugmart/storefront/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "user_id"
	JWTEmailKey   = "jwt_email"
	JWTRoleKey    = "jwt_role"
	JWTTokenKey   = "jwt_token"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenFromRequest returns the bearer token, else the accessToken cookie,
// else the token cookie
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(AuthHeaderKey); strings.HasPrefix(h, BearerPrefix) {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix)); tok != "" {
			return tok
		}
	}
	return SessionToken(r)
}

// SessionToken reads only the session cookies, as the page guard does
func SessionToken(r *http.Request) string {
	for _, name := range []string{identity.AccessTokenCookie, identity.LegacyTokenCookie} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// Authenticate verifies the token when one is present and stores the
// claims for RequireAuth and the handlers. Requests without a valid token
// continue anonymously.
func Authenticate(verifier identity.TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		if token == "" {
			c.Next()
			return
		}
		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Debug("Token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.Set(jwtErrorKey, err)
			c.Next()
			return
		}

		userID := auth.UserID(claims)
		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, userID)
		c.Set(JWTEmailKey, auth.Email(claims))
		c.Set(JWTRoleKey, identity.ExtractRole(claims))
		c.Set(JWTTokenKey, token)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

const jwtErrorKey = "jwt_error"

// RequireAuth answers 401 unless Authenticate accepted a token
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTClaims(c) != nil {
			c.Next()
			return
		}
		message := "Please log in to continue"
		if v, ok := c.Get(jwtErrorKey); ok {
			if err, ok := v.(error); ok {
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					message = "Your session has expired. Please log in again"
				case errors.Is(err, auth.ErrTokenBlacklisted):
					message = "Your session has ended. Please log in again"
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, c.GetString("request_id")))
	}
}

// RequireAdmin answers 403 unless the caller is a SUPER_ADMIN. It must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTRole(c).IsAdmin() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access forbidden", c.GetString("request_id")))
	}
}

// GetJWTClaims returns the verified claims, or nil
func GetJWTClaims(c *gin.Context) identity.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(identity.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the caller's account id, or ""
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTEmail returns the caller's email claim, or ""
func GetJWTEmail(c *gin.Context) string {
	return c.GetString(JWTEmailKey)
}

// GetJWTRole returns the caller's role, or ""
func GetJWTRole(c *gin.Context) identity.Role {
	if v, ok := c.Get(JWTRoleKey); ok {
		if r, ok := v.(identity.Role); ok {
			return r
		}
	}
	return ""
}

// GetJWTToken returns the raw verified token, or ""
func GetJWTToken(c *gin.Context) string {
	return c.GetString(JWTTokenKey)
}
