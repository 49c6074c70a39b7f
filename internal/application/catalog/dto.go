package catalog

import (
	"github.com/ugmart/storefront/internal/domain/catalog"
)

// ProductResponse is a product plus the display values the pages need
type ProductResponse struct {
	catalog.Product
	SizesLabel string `json:"sizesLabel"`
	InStock    bool   `json:"inStock"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		Product:    p,
		SizesLabel: catalog.FormatSizes(p.Sizes),
		InStock:    p.InStock(),
	}
}

// ToProductResponses converts a list, never returning nil
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out
}

// ProductPageResponse is one page of the filtered listing
type ProductPageResponse struct {
	Products      []ProductResponse `json:"products"`
	TotalProducts int               `json:"totalProducts"`
	TotalPages    int               `json:"totalPages"`
	Page          int               `json:"page"`
}
