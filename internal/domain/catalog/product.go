package catalog

import (
	"time"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// Category groups products in the storefront navigation
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product mirrors the backend product record. Prices are in UGX.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	CategoryID  string    `json:"categoryId"`
	Category    *Category `json:"category,omitempty"`
	Description string    `json:"description"`
	Stock       int       `json:"stock"`
	Brand       string    `json:"brand"`
	Colors      []string  `json:"color,omitempty"`
	SoldCount   int       `json:"soldCount,omitempty"`
	Sizes       []string  `json:"sizes,omitempty"`
	Gender      *string   `json:"gender,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	Images      []string  `json:"images"`
	IsFeatured  *bool     `json:"isFeatured,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InStock reports whether at least one unit can be ordered
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// LastModified is the sitemap timestamp: updatedAt, else createdAt
func (p *Product) LastModified() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

// ProductDraft carries the admin form for creating or updating a product.
// Images are either raw uploads forwarded to the backend or URLs of files
// already stored in object storage.
type ProductDraft struct {
	Name        string
	Description string
	Price       float64
	CategoryID  string
	Stock       int
	Brand       string
	Gender      string
	Colors      []string
	Sizes       []string
	IsFeatured  bool
	Images      []shared.Upload
	ImageURLs   []string
}

// Validate checks the fields the admin form requires
func (d *ProductDraft) Validate() error {
	switch {
	case d.Name == "":
		return shared.InvalidInput("Product name is required")
	case d.Price <= 0:
		return shared.InvalidInput("Price must be greater than zero")
	case d.CategoryID == "":
		return shared.InvalidInput("Category is required")
	case d.Stock < 0:
		return shared.InvalidInput("Stock cannot be negative")
	}
	return nil
}
