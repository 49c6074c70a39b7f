package settings

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ugmart/storefront/internal/domain/settings"
	"github.com/ugmart/storefront/internal/domain/shared"
)

const (
	bannersCacheKey  = "settings:banners"
	featuredCacheKey = "settings:featured_products"
	bannerFolder     = "banners"
)

// HomeResponse is everything the home page needs from settings
type HomeResponse struct {
	Banners          []settings.Banner          `json:"banners"`
	FeaturedProducts []settings.FeaturedProduct `json:"featuredProducts"`
}

// Service serves site settings. Reads are fetched once and kept in the
// read cache until an admin change invalidates them.
type Service struct {
	repo     settings.Repository
	cache    shared.ReadCache
	cacheTTL time.Duration
	images   shared.ImageStore
	logger   *zap.Logger
	group    singleflight.Group
}

// Option configures the Service
type Option func(*Service)

// WithReadCache sets the cache; ttl 0 keeps entries until invalidated
func WithReadCache(c shared.ReadCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithImageStore uploads banner images to object storage first
func WithImageStore(store shared.ImageStore) Option {
	return func(s *Service) {
		s.images = store
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new settings Service
func NewService(repo settings.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Banners returns the home page banners
func (s *Service) Banners(ctx context.Context) ([]settings.Banner, error) {
	return fetchOnce(ctx, s, bannersCacheKey, s.repo.Banners)
}

// FeaturedProducts returns the home page product picks
func (s *Service) FeaturedProducts(ctx context.Context) ([]settings.FeaturedProduct, error) {
	return fetchOnce(ctx, s, featuredCacheKey, s.repo.FeaturedProducts)
}

// Home loads banners and featured products together
func (s *Service) Home(ctx context.Context) (*HomeResponse, error) {
	var resp HomeResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resp.Banners, err = s.Banners(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		resp.FeaturedProducts, err = s.FeaturedProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBanner stores the images and adds the banners. Stored images are
// removed again when the backend rejects the banner.
func (s *Service) CreateBanner(ctx context.Context, upload settings.BannerUpload) error {
	if err := upload.Validate(); err != nil {
		return err
	}
	var stored []string
	if s.images != nil && len(upload.Images) > 0 {
		urls, err := s.storeImages(ctx, upload.Images)
		if err != nil {
			return err
		}
		stored = urls
		upload.ImageURLs = append(upload.ImageURLs, urls...)
		upload.Images = nil
	}
	if err := s.repo.CreateBanner(ctx, upload); err != nil {
		s.removeImages(ctx, stored)
		return err
	}
	s.invalidate(ctx, bannersCacheKey)
	return nil
}

// UpdateFeaturedProducts replaces the featured product list
func (s *Service) UpdateFeaturedProducts(ctx context.Context, productIDs []string) error {
	if err := settings.ValidateFeatured(productIDs); err != nil {
		return err
	}
	if err := s.repo.UpdateFeaturedProducts(ctx, productIDs); err != nil {
		return err
	}
	s.invalidate(ctx, featuredCacheKey)
	return nil
}

// storeImages uploads in parallel, keeping the submitted order
func (s *Service) storeImages(ctx context.Context, images []shared.Upload) ([]string, error) {
	urls := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, img := range images {
		g.Go(func() error {
			url, err := s.images.Store(gctx, bannerFolder, img)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.removeImages(ctx, urls)
		return nil, err
	}
	return urls, nil
}

// removeImages deletes stored uploads that no banner will reference
func (s *Service) removeImages(ctx context.Context, urls []string) {
	remover, ok := s.images.(shared.ImageRemover)
	if !ok {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := remover.Delete(ctx, url); err != nil {
			s.logger.Warn("Orphaned banner image", zap.String("url", url), zap.Error(err))
		}
	}
}

func (s *Service) invalidate(ctx context.Context, key string) {
	s.group.Forget(key)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Settings cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// fetchOnce reads key from the cache, else loads it once for all
// concurrent callers and caches the result. Cache failures fall back to
// the backend. The shared load ignores the first caller's cancellation.
func fetchOnce[T any](ctx context.Context, s *Service, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache != nil {
		var cached []T
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Settings cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, items, s.cacheTTL); err != nil {
				s.logger.Warn("Settings cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}
