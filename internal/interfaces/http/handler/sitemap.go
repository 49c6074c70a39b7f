package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SitemapRenderer renders the sitemap document
type SitemapRenderer interface {
	Render(ctx context.Context) ([]byte, error)
}

// SitemapHandler serves /sitemap.xml
type SitemapHandler struct {
	BaseHandler
	builder SitemapRenderer
}

// NewSitemapHandler creates a SitemapHandler
func NewSitemapHandler(builder SitemapRenderer) *SitemapHandler {
	return &SitemapHandler{builder: builder}
}

func (h *SitemapHandler) Sitemap(c *gin.Context) {
	body, err := h.builder.Render(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
