package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ugmart/storefront/internal/domain/catalog"
)

// ProductClient implements catalog.ProductRepository
type ProductClient struct {
	c *Client
}

// NewProductClient creates a product client
func NewProductClient(c *Client) *ProductClient {
	return &ProductClient{c: c}
}

var _ catalog.ProductRepository = (*ProductClient)(nil)

func (p *ProductClient) List(ctx context.Context) ([]catalog.Product, error) {
	resp, err := p.c.doJSON(ctx, http.MethodGet, "/products/products", nil)
	if err != nil {
		return nil, err
	}
	var products []catalog.Product
	if err := resp.dataOrBody(&products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}

func (p *ProductClient) Get(ctx context.Context, id string) (*catalog.Product, error) {
	resp, err := p.c.doJSON(ctx, http.MethodGet, "/products/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var product catalog.Product
	if err := resp.dataOrBody(&product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		return nil, &APIError{Status: http.StatusNotFound, Message: "Product not found"}
	}
	return &product, nil
}

func (p *ProductClient) Filter(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	resp, err := p.c.doJSON(ctx, http.MethodGet, "/products/products/filtered?"+filterQuery(f).Encode(), nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Data       []catalog.Product `json:"data"`
		Pagination struct {
			TotalProducts int `json:"totalProducts"`
			TotalPages    int `json:"totalPages"`
		} `json:"pagination"`
	}
	if err := resp.decode(&body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		body.Data = []catalog.Product{}
	}
	return &catalog.ProductPage{
		Products:      body.Data,
		TotalProducts: body.Pagination.TotalProducts,
		TotalPages:    body.Pagination.TotalPages,
		Page:          f.Page,
	}, nil
}

// filterQuery encodes list filters comma-joined
func filterQuery(f catalog.ProductFilter) url.Values {
	q := url.Values{}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", f.SortOrder)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if len(f.Categories) > 0 {
		q.Set("category", strings.Join(f.Categories, ","))
	}
	if len(f.Brands) > 0 {
		q.Set("brands", strings.Join(f.Brands, ","))
	}
	if len(f.Sizes) > 0 {
		q.Set("sizes", strings.Join(f.Sizes, ","))
	}
	return q
}

func (p *ProductClient) Create(ctx context.Context, d catalog.ProductDraft) (*catalog.Product, error) {
	return p.send(ctx, http.MethodPost, "/products/products", d)
}

func (p *ProductClient) Update(ctx context.Context, id string, d catalog.ProductDraft) (*catalog.Product, error) {
	return p.send(ctx, http.MethodPut, "/products/products/"+url.PathEscape(id), d)
}

func (p *ProductClient) send(ctx context.Context, method, path string, d catalog.ProductDraft) (*catalog.Product, error) {
	body, contentType, err := productForm(d).finish()
	if err != nil {
		return nil, err
	}
	resp, err := p.c.do(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Data struct {
			Product *catalog.Product `json:"product"`
		} `json:"data"`
	}
	if err := resp.decode(&wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data.Product == nil {
		return nil, &APIError{Status: resp.status, Message: messageFrom(resp.envelope(), "Failed to save product")}
	}
	return wrapped.Data.Product, nil
}

func (p *ProductClient) Delete(ctx context.Context, id string) error {
	_, err := p.c.doJSON(ctx, http.MethodDelete, "/products/products/"+url.PathEscape(id), nil)
	return err
}

// CategoryClient implements catalog.CategoryRepository
type CategoryClient struct {
	c *Client
}

// NewCategoryClient creates a category client
func NewCategoryClient(c *Client) *CategoryClient {
	return &CategoryClient{c: c}
}

var _ catalog.CategoryRepository = (*CategoryClient)(nil)

func (cc *CategoryClient) List(ctx context.Context) ([]catalog.Category, error) {
	resp, err := cc.c.doJSON(ctx, http.MethodGet, "/products/categories", nil)
	if err != nil {
		return nil, err
	}
	var categories []catalog.Category
	if err := resp.dataOrBody(&categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	return categories, nil
}

func (cc *CategoryClient) Create(ctx context.Context, name string) (*catalog.Category, error) {
	resp, err := cc.c.doJSON(ctx, http.MethodPost, "/products/categories", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	var category catalog.Category
	if err := resp.dataOrBody(&category); err != nil {
		return nil, err
	}
	if category.ID == "" {
		return nil, &APIError{Status: resp.status, Message: messageFrom(resp.envelope(), "Failed to create category")}
	}
	return &category, nil
}
