package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/catalog"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
	"github.com/ugmart/storefront/internal/infrastructure/telemetry"
)

const (
	categoriesCacheKey = "categories"
	productImageFolder = "products"
)

// Guard evaluates abuse protection for an action
type Guard interface {
	Enforce(ctx context.Context, name protection.PolicyName, subject protection.Subject) error
}

// Service handles product and category operations
type Service struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	cache      shared.ReadCache
	cacheTTL   time.Duration
	images     shared.ImageStore
	guard      Guard
	logger     *zap.Logger
}

// Option configures the Service
type Option func(*Service)

// WithReadCache caches the category list; ttl 0 keeps it until a category is created
func WithReadCache(c shared.ReadCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithImageStore uploads product images to object storage before the
// backend call
func WithImageStore(store shared.ImageStore) Option {
	return func(s *Service) {
		s.images = store
	}
}

// WithGuard enables product create protection
func WithGuard(g Guard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new catalog Service
func NewService(products catalog.ProductRepository, categories catalog.CategoryRepository, opts ...Option) *Service {
	s := &Service{
		products:   products,
		categories: categories,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts returns every product
func (s *Service) ListProducts(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// AllProducts returns the raw product list, for the sitemap
func (s *Service) AllProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products.List(ctx)
}

// GetProduct returns a product by id
func (s *Service) GetProduct(ctx context.Context, id string) (*ProductResponse, error) {
	if id == "" {
		return nil, shared.InvalidInput("Product id is required")
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(*p)
	return &resp, nil
}

// FilterProducts returns one page of the filtered listing
func (s *Service) FilterProducts(ctx context.Context, filter catalog.ProductFilter) (*ProductPageResponse, error) {
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	page, err := s.products.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductPageResponse{
		Products:      ToProductResponses(page.Products),
		TotalProducts: page.TotalProducts,
		TotalPages:    page.TotalPages,
		Page:          page.Page,
	}, nil
}

// CreateProduct runs product create protection for the admin, stores the
// images and creates the product
func (s *Service) CreateProduct(ctx context.Context, subject protection.Subject, draft catalog.ProductDraft) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "create_product")
	defer span.End()

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if s.guard != nil {
		if err := s.guard.Enforce(ctx, protection.PolicyProductCreate, subject); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	stored, err := s.storeImages(ctx, &draft)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	p, err := s.products.Create(ctx, draft)
	if err != nil {
		s.removeImages(ctx, stored)
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Product created", zap.String("product_id", p.ID), zap.String("user_id", subject.UserID))
	resp := ToProductResponse(*p)
	return &resp, nil
}

// UpdateProduct replaces a product
func (s *Service) UpdateProduct(ctx context.Context, id string, draft catalog.ProductDraft) (*ProductResponse, error) {
	if id == "" {
		return nil, shared.InvalidInput("Product id is required")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	stored, err := s.storeImages(ctx, &draft)
	if err != nil {
		return nil, err
	}
	p, err := s.products.Update(ctx, id, draft)
	if err != nil {
		s.removeImages(ctx, stored)
		return nil, err
	}
	resp := ToProductResponse(*p)
	return &resp, nil
}

// DeleteProduct removes a product
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return shared.InvalidInput("Product id is required")
	}
	return s.products.Delete(ctx, id)
}

// storeImages moves raw uploads to object storage and keeps only their URLs.
// It returns the URLs it stored; a failed upload removes the earlier ones.
func (s *Service) storeImages(ctx context.Context, draft *catalog.ProductDraft) ([]string, error) {
	if s.images == nil || len(draft.Images) == 0 {
		return nil, nil
	}
	stored := make([]string, 0, len(draft.Images))
	for _, img := range draft.Images {
		url, err := s.images.Store(ctx, productImageFolder, img)
		if err != nil {
			s.removeImages(ctx, stored)
			return nil, err
		}
		stored = append(stored, url)
	}
	draft.ImageURLs = append(draft.ImageURLs, stored...)
	draft.Images = nil
	return stored, nil
}

func (s *Service) removeImages(ctx context.Context, urls []string) {
	remover, ok := s.images.(shared.ImageRemover)
	if !ok || len(urls) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		if err := remover.Delete(ctx, url); err != nil {
			s.logger.Warn("Orphaned product image", zap.String("url", url), zap.Error(err))
		}
	}
}

// ListCategories returns the categories, from the cache when possible.
// A cache failure falls back to the backend.
func (s *Service) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	if s.cache != nil {
		var cached []catalog.Category
		found, err := s.cache.Get(ctx, categoriesCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Category cache read failed", zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, categoriesCacheKey, categories, s.cacheTTL); err != nil {
			s.logger.Warn("Category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// CreateCategory adds a category and invalidates the cached list
func (s *Service) CreateCategory(ctx context.Context, name string) (*catalog.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("Category name is required")
	}
	c, err := s.categories.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, categoriesCacheKey); err != nil {
			s.logger.Warn("Category cache invalidation failed", zap.Error(err))
		}
	}
	return c, nil
}
