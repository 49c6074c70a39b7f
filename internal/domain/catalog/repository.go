package catalog

import "context"

// ProductRepository is the product side of the store backend
type ProductRepository interface {
	// List returns every product
	List(ctx context.Context) ([]Product, error)

	// Get returns a single product
	Get(ctx context.Context, id string) (*Product, error)

	// Filter returns one page of products matching the filter
	Filter(ctx context.Context, filter ProductFilter) (*ProductPage, error)

	// Create adds a product from an admin draft
	Create(ctx context.Context, draft ProductDraft) (*Product, error)

	// Update replaces a product from an admin draft
	Update(ctx context.Context, id string, draft ProductDraft) (*Product, error)

	// Delete removes a product
	Delete(ctx context.Context, id string) error
}

// CategoryRepository is the category side of the store backend
type CategoryRepository interface {
	// List returns every category
	List(ctx context.Context) ([]Category, error)

	// Create adds a category
	Create(ctx context.Context, name string) (*Category, error)
}
