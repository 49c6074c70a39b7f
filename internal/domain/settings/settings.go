package settings

import (
	"encoding/json"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// Banner is a home page hero image
type Banner struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// FeaturedProduct is the short product card shown on the home page.
// Price keeps whatever numeric form the backend sent.
type FeaturedProduct struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Price  json.Number `json:"price"`
	Images []string    `json:"images"`
}

// BannerUpload is an admin banner submission: raw files, or URLs of files
// already in object storage
type BannerUpload struct {
	Images    []shared.Upload
	ImageURLs []string
}

// Validate requires at least one image
func (b BannerUpload) Validate() error {
	if len(b.Images) == 0 && len(b.ImageURLs) == 0 {
		return shared.InvalidInput("Please select at least one image")
	}
	return nil
}

// ValidateFeatured rejects empty or duplicated product ids
func ValidateFeatured(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return shared.InvalidInput("Product id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return shared.InvalidInput("Product " + id + " is listed twice")
		}
		seen[id] = struct{}{}
	}
	return nil
}
