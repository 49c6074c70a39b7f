package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	settingsapp "github.com/ugmart/storefront/internal/application/settings"
	"github.com/ugmart/storefront/internal/domain/settings"
)

// SettingsService is the site settings use-case surface
type SettingsService interface {
	Home(ctx context.Context) (*settingsapp.HomeResponse, error)
	Banners(ctx context.Context) ([]settings.Banner, error)
	FeaturedProducts(ctx context.Context) ([]settings.FeaturedProduct, error)
	CreateBanner(ctx context.Context, upload settings.BannerUpload) error
	UpdateFeaturedProducts(ctx context.Context, productIDs []string) error
}

// SettingsHandler serves home page banners and featured products
type SettingsHandler struct {
	BaseHandler
	service SettingsService
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// UpdateFeaturedRequest replaces the featured product list
type UpdateFeaturedRequest struct {
	ProductIDs []string `json:"productIds" binding:"required,max=50,dive,required"`
}

// Home returns banners and featured products in one call
func (h *SettingsHandler) Home(c *gin.Context) {
	home, err := h.service.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, home)
}

func (h *SettingsHandler) Banners(c *gin.Context) {
	banners, err := h.service.Banners(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banners)
}

func (h *SettingsHandler) FeaturedProducts(c *gin.Context) {
	products, err := h.service.FeaturedProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// CreateBanner takes multipart "images" files and/or "imageUrls" values
func (h *SettingsHandler) CreateBanner(c *gin.Context) {
	if !h.parseMultipart(c) {
		return
	}
	images, err := formUploads(c, "images")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	upload := settings.BannerUpload{
		Images:    images,
		ImageURLs: formList(c, "imageUrls"),
	}
	if err := h.service.CreateBanner(c.Request.Context(), upload); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Banner uploaded", nil)
}

func (h *SettingsHandler) UpdateFeaturedProducts(c *gin.Context) {
	var req UpdateFeaturedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.service.UpdateFeaturedProducts(c.Request.Context(), req.ProductIDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Featured products updated", nil)
}
