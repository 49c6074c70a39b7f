package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/infrastructure/config"
	"github.com/ugmart/storefront/internal/interfaces/http/dto"
)

// RouteGuard is the NoRoute handler for page requests. It applies the page
// access rules to the session cookie, then forwards allowed requests to the
// frontend upstream. Without an upstream allowed pages answer 404.
func RouteGuard(verifier identity.TokenVerifier, upstream http.Handler, cookies config.CookieConfig, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		d := identity.Decide(c.Request.Context(), c.Request.URL.Path, SessionToken(c.Request), verifier)
		if d.ClearCookies {
			clearSessionCookies(c, cookies)
		}
		if !d.Allow {
			log.Debug("Page request redirected",
				zap.String("path", c.Request.URL.Path),
				zap.String("class", d.Class.String()),
				zap.String("location", d.Location),
			)
			c.Redirect(http.StatusTemporaryRedirect, d.Location)
			c.Abort()
			return
		}
		if upstream == nil {
			c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "Page not found", c.GetString("request_id")))
			return
		}
		upstream.ServeHTTP(c.Writer, c.Request)
	}
}

func clearSessionCookies(c *gin.Context, cfg config.CookieConfig) {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	for _, name := range identity.SessionCookies {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			Domain:   cfg.Domain,
			MaxAge:   -1,
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: SameSiteMode(cfg.SameSite),
		})
	}
}

// SameSiteMode maps the configured name to http.SameSite
func SameSiteMode(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
