package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ugmart/storefront/internal/domain/promotion"
)

// CouponService is the coupon use-case surface
type CouponService interface {
	List(ctx context.Context) ([]promotion.Coupon, error)
	Create(ctx context.Context, draft promotion.Draft) (*promotion.Coupon, error)
	Delete(ctx context.Context, id string) error
	Apply(ctx context.Context, code string) (*promotion.Application, error)
}

// CouponHandler serves coupon lookup and admin management
type CouponHandler struct {
	BaseHandler
	service CouponService
}

// NewCouponHandler creates a CouponHandler
func NewCouponHandler(service CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// ApplyCouponRequest checks a shopper-entered code
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// CreateCouponRequest is the admin coupon form
type CreateCouponRequest struct {
	Code       string          `json:"code" binding:"required,coupon_code"`
	Percentage decimal.Decimal `json:"percentage"`
	StartDate  time.Time       `json:"startDate" binding:"required"`
	EndDate    time.Time       `json:"endDate" binding:"required"`
	UsageLimit int             `json:"usageLimit" binding:"gte=0"`
}

func (h *CouponHandler) List(c *gin.Context) {
	coupons, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupons)
}

// Apply validates a code and answers with its discount percentage
func (h *CouponHandler) Apply(c *gin.Context) {
	var req ApplyCouponRequest
	if !h.bindJSON(c, &req) {
		return
	}
	app, err := h.service.Apply(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, app.Message, app)
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req CreateCouponRequest
	if !h.bindJSON(c, &req) {
		return
	}
	coupon, err := h.service.Create(c.Request.Context(), promotion.Draft{
		Code:       req.Code,
		Percentage: req.Percentage,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		UsageLimit: req.UsageLimit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, coupon)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Coupon deleted", nil)
}
