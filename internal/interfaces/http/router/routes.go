package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ugmart/storefront/internal/interfaces/http/handler"
)

// Handlers are the typed API handlers mounted under the router prefix
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Coupon   *handler.CouponHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Address  *handler.AddressHandler
	Settings *handler.SettingsHandler
	Payment  *handler.PaymentHandler
}

// Access holds the middleware that gates signed-in and admin groups.
// AuthLimit, when set, throttles the credential endpoints.
type Access struct {
	RequireAuth  gin.HandlerFunc
	RequireAdmin gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
}

func chain(pre gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if pre == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{pre, h}
}

// StorefrontSections builds the typed API: anonymous reads, the signed-in
// shopper's cart, checkout, orders and addresses, and the admin console
func StorefrontSections(h Handlers, a Access) []*Section {
	authGroup := NewSection("auth", "/auth")
	authGroup.
		POST("/register", chain(a.AuthLimit, h.Auth.Register)...).
		POST("/login", chain(a.AuthLimit, h.Auth.Login)...).
		POST("/logout", h.Auth.Logout).
		POST("/refresh", h.Auth.Refresh)

	public := NewSection("storefront", "")
	public.
		GET("/products", h.Catalog.ListProducts).
		GET("/products/filtered", h.Catalog.FilterProducts).
		GET("/products/:id", h.Catalog.GetProduct).
		GET("/categories", h.Catalog.ListCategories).
		GET("/coupons", h.Coupon.List).
		POST("/coupons/apply", h.Coupon.Apply).
		GET("/settings/home", h.Settings.Home).
		GET("/settings/banners", h.Settings.Banners).
		GET("/settings/featured", h.Settings.FeaturedProducts)

	shopper := NewSection("shopper", "")
	shopper.Use(a.RequireAuth)
	shopper.Sub("cart", "/cart").
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.Add).
		PATCH("/items/:id", h.Cart.UpdateQuantity).
		DELETE("/items/:id", h.Cart.Remove)
	shopper.Sub("checkout", "/checkout").
		GET("/quote", h.Checkout.Quote).
		POST("/paypal/orders", h.Checkout.CreatePayPalOrder).
		POST("/paypal/orders/:id/capture", h.Checkout.CapturePayPalOrder)
	shopper.Sub("orders", "/orders").
		GET("", h.Order.ListMine).
		GET("/:id", h.Order.Get)
	shopper.Sub("addresses", "/addresses").
		GET("", h.Address.List).
		POST("", h.Address.Create).
		PUT("/:id", h.Address.Update).
		DELETE("/:id", h.Address.Delete)

	admin := NewSection("admin", "/admin")
	admin.Use(a.RequireAuth, a.RequireAdmin)
	admin.
		POST("/products", h.Catalog.CreateProduct).
		PUT("/products/:id", h.Catalog.UpdateProduct).
		DELETE("/products/:id", h.Catalog.DeleteProduct).
		POST("/categories", h.Catalog.CreateCategory).
		POST("/coupons", h.Coupon.Create).
		DELETE("/coupons/:id", h.Coupon.Delete).
		GET("/orders", h.Order.ListAll).
		PUT("/orders/:id/status", h.Order.UpdateStatus).
		POST("/settings/banners", h.Settings.CreateBanner).
		PUT("/settings/featured", h.Settings.UpdateFeaturedProducts).
		GET("/payments", h.Payment.List)

	return []*Section{authGroup, public, shopper, admin}
}
