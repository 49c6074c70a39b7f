package settings

import "context"

// Repository is the site settings side of the store backend
type Repository interface {
	// Banners returns the home page banners
	Banners(ctx context.Context) ([]Banner, error)

	// FeaturedProducts returns the home page product picks
	FeaturedProducts(ctx context.Context) ([]FeaturedProduct, error)

	// CreateBanner uploads banner images
	CreateBanner(ctx context.Context, upload BannerUpload) error

	// UpdateFeaturedProducts replaces the featured product list
	UpdateFeaturedProducts(ctx context.Context, productIDs []string) error
}
