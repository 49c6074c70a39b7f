package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/infrastructure/auth"
	"github.com/ugmart/storefront/internal/infrastructure/config"
)

func newGuardRouter(verifier identity.TokenVerifier, upstream http.Handler) *gin.Engine {
	router := gin.New()
	router.NoRoute(RouteGuard(verifier, upstream, config.CookieConfig{Path: "/"}, nil))
	return router
}

func pageUpstream() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "next")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>" + r.URL.Path + "</html>"))
	})
}

func clearedCookies(w *httptest.ResponseRecorder) []string {
	var names []string
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			names = append(names, c.Name)
		}
	}
	return names
}

func TestRouteGuard(t *testing.T) {
	admin := "admin"
	user := "user"
	expired := "expired"
	tokens := map[string]jwt.MapClaims{
		admin: {"userId": "a-1", "role": "super_admin"},
		user:  {"userId": "u-1", "role": "USER"},
	}

	tests := []struct {
		name     string
		path     string
		token    string
		status   int
		location string
		cleared  bool
	}{
		{"public anonymous", "/products/abc", "", http.StatusOK, "", false},
		{"home with trailing slash", "/", "", http.StatusOK, "", false},
		{"protected anonymous", "/checkout", "", http.StatusTemporaryRedirect, identity.LoginPath, false},
		{"admin as user", "/Dashboard/Orders/", user, http.StatusTemporaryRedirect, "/", false},
		{"admin as admin", "/dashboard/orders", admin, http.StatusOK, "", false},
		{"login when signed in as admin", "/auth/login", admin, http.StatusTemporaryRedirect, "/dashboard", false},
		{"login when signed in as user", "/auth/login", user, http.StatusTemporaryRedirect, "/", false},
		{"user pages", "/user/orders", user, http.StatusOK, "", false},
		{"expired on protected", "/checkout", expired, http.StatusTemporaryRedirect, identity.LoginPath, true},
		{"expired on public", "/cart", expired, http.StatusTemporaryRedirect, identity.LoginPath, true},
		{"public dashboard as user", "/dashboard/public", user, http.StatusTemporaryRedirect, "/", false},
		{"public dashboard anonymous", "/dashboard/public", "", http.StatusOK, "", false},
	}

	router := newGuardRouter(newTestVerifier(), pageUpstream())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			switch tt.token {
			case "":
			case expired:
				req.AddCookie(&http.Cookie{Name: identity.AccessTokenCookie, Value: signToken(t, jwt.MapClaims{"exp": 1})})
			default:
				req.AddCookie(&http.Cookie{Name: identity.AccessTokenCookie, Value: signToken(t, tokens[tt.token])})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
			if tt.status == http.StatusOK {
				assert.Equal(t, "next", w.Header().Get("X-Upstream"))
			}
			if tt.cleared {
				assert.ElementsMatch(t, identity.SessionCookies, clearedCookies(w))
			} else {
				assert.Empty(t, clearedCookies(w))
			}
		})
	}
}

func TestRouteGuard_MissingSecret(t *testing.T) {
	router := newGuardRouter(auth.NewJWTVerifier(config.JWTConfig{}), pageUpstream())

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: identity.LegacyTokenCookie, Value: "anything"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, identity.LoginPath, w.Header().Get("Location"))
	assert.ElementsMatch(t, identity.SessionCookies, clearedCookies(w))
}

func TestRouteGuard_NoUpstream(t *testing.T) {
	router := newGuardRouter(newTestVerifier(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

func TestSameSiteMode(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, SameSiteMode("strict"))
	assert.Equal(t, http.SameSiteNoneMode, SameSiteMode("none"))
	assert.Equal(t, http.SameSiteLaxMode, SameSiteMode(""))
}
