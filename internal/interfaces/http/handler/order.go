package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	tradeapp "github.com/ugmart/storefront/internal/application/trade"
)

// OrderService is the order use-case surface
type OrderService interface {
	ListMine(ctx context.Context) ([]tradeapp.OrderResponse, error)
	ListAll(ctx context.Context) ([]tradeapp.OrderResponse, error)
	Get(ctx context.Context, id string) (*tradeapp.OrderResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (*tradeapp.OrderResponse, error)
}

// OrderHandler serves order tracking and admin status changes
type OrderHandler struct {
	BaseHandler
	service OrderService
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.service.ListMine(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
