package middleware

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/interfaces/http/dto"
)

// NewReverseProxy forwards requests to target keeping the incoming path,
// so /api/products/products reaches target/api/products/products. Cookies
// and Authorization pass through untouched; Host becomes the target's.
// Transport failures answer 502 with the error envelope.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy: invalid target %q", target)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(u)
			r.SetXForwarded()
		},
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn("Upstream request failed",
				zap.String("target", u.Host),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			writeJSON(w, http.StatusBadGateway,
				dto.NewErrorResponse(dto.ErrCodeUpstream, "The store service is unavailable. Please try again."))
		},
	}, nil
}

// APIProxy mounts a reverse proxy on a gin route
func APIProxy(proxy http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}
