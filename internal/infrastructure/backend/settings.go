package backend

import (
	"context"
	"net/http"

	"github.com/ugmart/storefront/internal/domain/settings"
)

// SettingsClient implements settings.Repository
type SettingsClient struct {
	c *Client
}

// NewSettingsClient creates a settings client
func NewSettingsClient(c *Client) *SettingsClient {
	return &SettingsClient{c: c}
}

var _ settings.Repository = (*SettingsClient)(nil)

func (s *SettingsClient) Banners(ctx context.Context) ([]settings.Banner, error) {
	resp, err := s.c.doJSON(ctx, http.MethodGet, "/settings/banners", nil)
	if err != nil {
		return nil, err
	}
	if err := resp.requireSuccess("Failed to fetch banners"); err != nil {
		return nil, err
	}
	var banners []settings.Banner
	if _, err := resp.field("banners", &banners); err != nil {
		return nil, err
	}
	if banners == nil {
		banners = []settings.Banner{}
	}
	return banners, nil
}

func (s *SettingsClient) FeaturedProducts(ctx context.Context) ([]settings.FeaturedProduct, error) {
	resp, err := s.c.doJSON(ctx, http.MethodGet, "/settings/featuredProducts", nil)
	if err != nil {
		return nil, err
	}
	var products []settings.FeaturedProduct
	ok, err := resp.field("featuredProducts", &products)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &APIError{Status: resp.status, Message: messageFrom(resp.envelope(), "Failed to fetch featured products")}
	}
	return products, nil
}

func (s *SettingsClient) CreateBanner(ctx context.Context, upload settings.BannerUpload) error {
	f := newFormBuilder()
	for _, u := range upload.ImageURLs {
		f.field("imageUrls", u)
	}
	for _, img := range upload.Images {
		f.file("images", img)
	}
	body, contentType, err := f.finish()
	if err != nil {
		return err
	}
	resp, err := s.c.do(ctx, http.MethodPost, "/settings/createbanner", body, contentType)
	if err != nil {
		return err
	}
	return resp.requireSuccess("Failed to upload banner")
}

func (s *SettingsClient) UpdateFeaturedProducts(ctx context.Context, productIDs []string) error {
	if productIDs == nil {
		productIDs = []string{}
	}
	resp, err := s.c.doJSON(ctx, http.MethodPut, "/settings/updateFeaturedProducts", map[string][]string{"productIds": productIDs})
	if err != nil {
		return err
	}
	return resp.requireSuccess("Failed to update featured products")
}
