package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/infrastructure/backend"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
)

func TestRequestContext(t *testing.T) {
	var client protection.Client
	var creds backend.Credentials

	router := gin.New()
	router.Use(RequestContext())
	router.POST("/bff/v1/auth/signup", func(c *gin.Context) {
		client = protection.ClientFrom(c.Request.Context())
		creds = backend.CredentialsFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/bff/v1/auth/signup?ref=ad", nil)
	req.RemoteAddr = "41.210.1.2:5555"
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.AddCookie(&http.Cookie{Name: identity.AccessTokenCookie, Value: "cookie-token"})
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "41.210.1.2", client.IP)
	assert.Equal(t, "Mozilla/5.0", client.UserAgent)
	assert.Equal(t, http.MethodPost, client.Method)
	assert.Equal(t, "/bff/v1/auth/signup", client.Path)
	assert.Equal(t, "ref=ad", client.RawQuery)
	assert.Equal(t, "cookie-token", creds.BearerToken)
	assert.Equal(t, "accessToken=cookie-token", creds.Cookie)
}

func TestRequestContext_BearerWins(t *testing.T) {
	var creds backend.Credentials

	router := gin.New()
	router.Use(RequestContext())
	router.GET("/x", func(c *gin.Context) {
		creds = backend.CredentialsFrom(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: identity.AccessTokenCookie, Value: "cookie-token"})
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "header-token", creds.BearerToken)
}
