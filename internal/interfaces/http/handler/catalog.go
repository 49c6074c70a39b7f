package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/ugmart/storefront/internal/application/catalog"
	"github.com/ugmart/storefront/internal/domain/catalog"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
	"github.com/ugmart/storefront/internal/interfaces/http/middleware"
)

// CatalogService is the catalog use-case surface the handlers need
type CatalogService interface {
	ListProducts(ctx context.Context) ([]catalogapp.ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*catalogapp.ProductResponse, error)
	FilterProducts(ctx context.Context, filter catalog.ProductFilter) (*catalogapp.ProductPageResponse, error)
	CreateProduct(ctx context.Context, subject protection.Subject, draft catalog.ProductDraft) (*catalogapp.ProductResponse, error)
	UpdateProduct(ctx context.Context, id string, draft catalog.ProductDraft) (*catalogapp.ProductResponse, error)
	DeleteProduct(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, name string) (*catalog.Category, error)
}

// CatalogHandler serves products and categories
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// CreateCategoryRequest is the admin category form
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// FilterProducts reads sortBy, sortOrder, page, limit, minPrice, maxPrice
// and the comma-separated category, brands and sizes lists
func (h *CatalogHandler) FilterProducts(c *gin.Context) {
	filter := catalog.ProductFilter{
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 0),
		MinPrice:   queryFloat(c, "minPrice"),
		MaxPrice:   queryFloat(c, "maxPrice"),
		Categories: queryList(c, "category"),
		Brands:     queryList(c, "brands"),
		Sizes:      queryList(c, "sizes"),
	}
	page, err := h.service.FilterProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// CreateProduct accepts the multipart admin form with its images
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	draft, ok := h.productDraft(c)
	if !ok {
		return
	}
	subject := protection.Subject{UserID: currentUserID(c), Email: middleware.GetJWTEmail(c)}
	p, err := h.service.CreateProduct(c.Request.Context(), subject, draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	draft, ok := h.productDraft(c)
	if !ok {
		return
	}
	p, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Product deleted", nil)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cat)
}

func (h *CatalogHandler) productDraft(c *gin.Context) (catalog.ProductDraft, bool) {
	if !h.parseMultipart(c) {
		return catalog.ProductDraft{}, false
	}
	images, err := formUploads(c, "images")
	if err != nil {
		h.HandleError(c, err)
		return catalog.ProductDraft{}, false
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		h.BadRequest(c, "Price must be a number")
		return catalog.ProductDraft{}, false
	}
	stock, err := strconv.Atoi(c.DefaultPostForm("stock", "0"))
	if err != nil {
		h.BadRequest(c, "Stock must be a whole number")
		return catalog.ProductDraft{}, false
	}
	featured, _ := strconv.ParseBool(c.DefaultPostForm("isFeatured", "false"))

	return catalog.ProductDraft{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: c.PostForm("description"),
		Price:       price,
		CategoryID:  c.PostForm("categoryId"),
		Stock:       stock,
		Brand:       strings.TrimSpace(c.PostForm("brand")),
		Gender:      c.PostForm("gender"),
		Colors:      formList(c, "color"),
		Sizes:       formList(c, "sizes"),
		IsFeatured:  featured,
		Images:      images,
		ImageURLs:   formList(c, "imageUrls"),
	}, true
}

func queryFloat(c *gin.Context, name string) *float64 {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
