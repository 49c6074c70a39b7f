package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ugmart/storefront/internal/domain/promotion"
)

// CouponClient implements promotion.Repository
type CouponClient struct {
	c *Client
}

// NewCouponClient creates a coupon client
func NewCouponClient(c *Client) *CouponClient {
	return &CouponClient{c: c}
}

var _ promotion.Repository = (*CouponClient)(nil)

func (cc *CouponClient) Available(ctx context.Context) ([]promotion.Coupon, error) {
	resp, err := cc.c.doJSON(ctx, http.MethodGet, "/coupons/availableCoupons", nil)
	if err != nil {
		return nil, err
	}
	var coupons []promotion.Coupon
	if _, err := resp.field("data", &coupons); err != nil {
		return nil, err
	}
	if coupons == nil {
		coupons = []promotion.Coupon{}
	}
	return coupons, nil
}

type createCouponRequest struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	UsageLimit int             `json:"usageLimit"`
}

func (cc *CouponClient) Create(ctx context.Context, d promotion.Draft) (*promotion.Coupon, error) {
	resp, err := cc.c.doJSON(ctx, http.MethodPost, "/coupons/createCoupon", createCouponRequest{
		Code:       d.Code,
		Percentage: d.Percentage,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		UsageLimit: d.UsageLimit,
	})
	if err != nil {
		return nil, err
	}
	var coupon promotion.Coupon
	ok, err := resp.field("data", &coupon)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &APIError{Status: resp.status, Message: messageFrom(resp.envelope(), "Failed to create coupon")}
	}
	return &coupon, nil
}

func (cc *CouponClient) Delete(ctx context.Context, id string) error {
	_, err := cc.c.doJSON(ctx, http.MethodDelete, "/coupons/deleteCoupon/"+url.PathEscape(id), nil)
	return err
}
