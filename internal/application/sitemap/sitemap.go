// Package sitemap renders /sitemap.xml from the static pages and the
// product catalog.
package sitemap

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/catalog"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ProductSource lists every product
type ProductSource interface {
	AllProducts(ctx context.Context) ([]catalog.Product, error)
}

// URL is one <url> entry
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type staticPage struct {
	path       string
	changeFreq string
	priority   string
}

var staticPages = []staticPage{
	{"/", "daily", "1.0"},
	{"/products", "daily", "0.9"},
	{"/cart", "weekly", "0.7"},
	{"/checkout", "weekly", "0.7"},
	{"/account", "weekly", "0.6"},
	{"/about", "monthly", "0.5"},
}

// Builder renders the sitemap
type Builder struct {
	products ProductSource
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

// NewBuilder creates a Builder for the site at baseURL
func NewBuilder(products ProductSource, baseURL string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		products: products,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// Entries returns the static pages followed by one entry per product.
// When products cannot be listed only the static pages are returned.
func (b *Builder) Entries(ctx context.Context) []URL {
	now := b.now().UTC().Format(time.RFC3339)
	urls := make([]URL, 0, len(staticPages))
	for _, p := range staticPages {
		urls = append(urls, URL{Loc: b.baseURL + p.path, LastMod: now, ChangeFreq: p.changeFreq, Priority: p.priority})
	}

	products, err := b.products.AllProducts(ctx)
	if err != nil {
		b.logger.Error("Failed to list products for sitemap", zap.Error(err))
		return urls
	}
	for _, p := range products {
		urls = append(urls, URL{
			Loc:        b.baseURL + "/products/" + p.ID,
			LastMod:    p.LastModified().UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	return urls
}

// Render returns the sitemap document
func (b *Builder) Render(ctx context.Context) ([]byte, error) {
	body, err := xml.MarshalIndent(urlSet{Xmlns: xmlns, URLs: b.Entries(ctx)}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
