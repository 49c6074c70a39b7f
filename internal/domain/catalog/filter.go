package catalog

import (
	"strings"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// Sort fields accepted by the filtered product listing
const (
	SortByCreatedAt = "createdAt"
	SortByPrice     = "price"
	SortByName      = "name"
	SortBySoldCount = "soldCount"
	SortByRating    = "rating"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

var allowedSortFields = map[string]bool{
	SortByCreatedAt: true,
	SortByPrice:     true,
	SortByName:      true,
	SortBySoldCount: true,
	SortByRating:    true,
}

// ProductFilter is the listing query sent to the backend filter endpoint
type ProductFilter struct {
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
	MinPrice   *float64
	MaxPrice   *float64
	Categories []string
	Brands     []string
	Sizes      []string
}

// Normalize fills paging and sort defaults
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
	f.Categories = compact(f.Categories)
	f.Brands = compact(f.Brands)
	f.Sizes = compact(f.Sizes)
}

// Validate rejects unknown sort fields and inverted price ranges
func (f *ProductFilter) Validate() error {
	if f.SortBy != "" && !allowedSortFields[f.SortBy] {
		return shared.InvalidInput("Unsupported sort field: " + f.SortBy)
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return shared.InvalidInput("Minimum price cannot be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return shared.InvalidInput("Minimum price cannot exceed maximum price")
	}
	return nil
}

func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ProductPage is one page of a filtered listing
type ProductPage struct {
	Products      []Product `json:"products"`
	TotalProducts int       `json:"totalProducts"`
	TotalPages    int       `json:"totalPages"`
	Page          int       `json:"page"`
}
