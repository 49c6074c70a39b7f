package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/interfaces/http/handler"
	"github.com/ugmart/storefront/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNew(t *testing.T) {
	r := New(gin.New())
	assert.Equal(t, "/bff/v1", r.Prefix())
	assert.Empty(t, r.Routes())

	r = New(gin.New(), WithVersion("v2"), WithBasePath("/gateway/"))
	assert.Equal(t, "/gateway/v2", r.Prefix())
}

func TestSection_Methods(t *testing.T) {
	engine := gin.New()
	s := NewSection("cart", "/cart")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	s.GET("", ok).POST("/items", ok).PUT("/items/:id", ok).PATCH("/items/:id", ok).DELETE("/items/:id", ok)
	New(engine).Mount(s).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/bff/v1/cart"},
		{http.MethodPost, "/bff/v1/cart/items"},
		{http.MethodPut, "/bff/v1/cart/items/1"},
		{http.MethodPatch, "/bff/v1/cart/items/1"},
		{http.MethodDelete, "/bff/v1/cart/items/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/cart").Code)
}

func TestSection_MiddlewareAndSubsections(t *testing.T) {
	engine := gin.New()
	s := NewSection("admin", "/admin")
	s.Use(nil, func(c *gin.Context) {
		c.Header("X-Scope", "admin")
		c.Next()
	})
	s.Sub("orders", "/orders").GET("", func(c *gin.Context) { c.String(http.StatusOK, "orders") })
	r := New(engine).Mount(s)
	r.Setup()

	w := serve(engine, http.MethodGet, "/bff/v1/admin/orders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Header().Get("X-Scope"))
	assert.Equal(t, "admin", s.Name())
	assert.Equal(t, "/admin", s.Prefix())
	assert.Len(t, s.middleware, 1)
	assert.Equal(t, []string{"GET /bff/v1/admin/orders"}, r.Routes())
}

func storefrontEngine(role identity.Role) *gin.Engine {
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if role != "" {
			c.Set(middleware.JWTClaimsKey, identity.Claims{"sub": "u-1", "role": string(role)})
			c.Set(middleware.JWTUserIDKey, "u-1")
			c.Set(middleware.JWTRoleKey, role)
		}
		c.Next()
	})
	h := Handlers{
		Auth:     handler.NewAuthHandler(nil),
		Catalog:  handler.NewCatalogHandler(nil),
		Cart:     handler.NewCartHandler(nil),
		Coupon:   handler.NewCouponHandler(nil),
		Checkout: handler.NewCheckoutHandler(nil),
		Order:    handler.NewOrderHandler(nil),
		Address:  handler.NewAddressHandler(nil),
		Settings: handler.NewSettingsHandler(nil),
		Payment:  handler.NewPaymentHandler(nil),
	}
	r := New(engine).Mount(StorefrontSections(h, Access{
		RequireAuth:  middleware.RequireAuth(),
		RequireAdmin: middleware.RequireAdmin(),
	})...)
	r.Setup()
	return engine
}

func TestStorefrontSections_Routes(t *testing.T) {
	engine := storefrontEngine("")
	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /bff/v1/auth/login",
		"GET /bff/v1/products/filtered",
		"GET /bff/v1/products/:id",
		"GET /bff/v1/cart",
		"PATCH /bff/v1/cart/items/:id",
		"POST /bff/v1/checkout/paypal/orders/:id/capture",
		"GET /bff/v1/orders/:id",
		"PUT /bff/v1/addresses/:id",
		"PUT /bff/v1/admin/orders/:id/status",
		"GET /bff/v1/admin/payments",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestStorefrontSections_Access(t *testing.T) {
	tests := []struct {
		name   string
		role   identity.Role
		method string
		path   string
		want   int
	}{
		{"anonymous cart", "", http.MethodGet, "/bff/v1/cart", http.StatusUnauthorized},
		{"anonymous checkout", "", http.MethodPost, "/bff/v1/checkout/paypal/orders", http.StatusUnauthorized},
		{"anonymous admin", "", http.MethodGet, "/bff/v1/admin/payments", http.StatusUnauthorized},
		{"shopper admin", identity.RoleUser, http.MethodGet, "/bff/v1/admin/orders", http.StatusForbidden},
		{"shopper bad address", identity.RoleUser, http.MethodPost, "/bff/v1/addresses", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(storefrontEngine(tt.role), tt.method, tt.path)
			require.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
