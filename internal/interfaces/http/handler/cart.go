package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	cartapp "github.com/ugmart/storefront/internal/application/cart"
	"github.com/ugmart/storefront/internal/domain/cart"
)

// CartService is the cart use-case surface
type CartService interface {
	Fetch(ctx context.Context, userID string) (*cartapp.View, error)
	Add(ctx context.Context, cmd cart.AddItem) (*cart.Item, error)
	Remove(ctx context.Context, userID, id string) (*cartapp.View, error)
	UpdateQuantity(ctx context.Context, userID, id string, quantity int) (*cartapp.View, error)
	Clear(ctx context.Context, userID string) error
}

// CartHandler serves the shopper's cart
type CartHandler struct {
	BaseHandler
	service CartService
}

// NewCartHandler creates a CartHandler
func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

// AddToCartRequest adds a product line. Color and size may be null.
type AddToCartRequest struct {
	ProductID string  `json:"productID" binding:"required"`
	Quantity  int     `json:"quantity" binding:"gte=1"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
}

// UpdateQuantityRequest sets a line quantity
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.service.Fetch(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

func (h *CartHandler) Add(c *gin.Context) {
	var req AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.service.Add(c.Request.Context(), cart.AddItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Color:     req.Color,
		Size:      req.Size,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateQuantity answers with the optimistic cart; the backend write is
// debounced
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	view, err := h.service.UpdateQuantity(c.Request.Context(), currentUserID(c), c.Param("id"), req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

func (h *CartHandler) Remove(c *gin.Context) {
	view, err := h.service.Remove(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Cart cleared", nil)
}
