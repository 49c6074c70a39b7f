// Package backend holds the typed clients for the store REST backend. The
// backend owns every persisted record; these clients translate its loosely
// shaped JSON envelopes into domain types and its failures into APIError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/shared"
)

const (
	apiPrefix       = "/api"
	maxResponseSize = 10 << 20
	defaultTimeout  = 15 * time.Second
)

// Config configures the backend client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client performs requests against the backend /api root
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l.Named("backend")
	}
}

// NewClient creates a backend client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("backend: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully read backend reply
type response struct {
	status int
	header http.Header
	body   []byte
}

// envelope is the common shape of backend replies. Individual endpoints put
// their payload under data, or under a named key such as addresses.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (r *response) envelope() envelope {
	var env envelope
	_ = json.Unmarshal(r.body, &env)
	return env
}

// requireSuccess fails unless the body carries success: true
func (r *response) requireSuccess(fallback string) error {
	env := r.envelope()
	if env.Success != nil && *env.Success {
		return nil
	}
	return &APIError{Status: r.status, Message: messageFrom(env, fallback)}
}

// decode unmarshals the whole body
func (r *response) decode(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

// dataOrBody unmarshals data when present, else the whole body
func (r *response) dataOrBody(v any) error {
	env := r.envelope()
	if isPresent(env.Data) {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return fmt.Errorf("backend: decode data: %w", err)
		}
		return nil
	}
	return r.decode(v)
}

// field unmarshals a named top-level key and reports whether it was present
func (r *response) field(name string, v any) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.body, &fields); err != nil {
		return false, fmt.Errorf("backend: decode response: %w", err)
	}
	raw, ok := fields[name]
	if !ok || !isPresent(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("backend: decode %s: %w", name, err)
	}
	return true, nil
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// doJSON sends in as a JSON body (nil for none)
func (c *Client) doJSON(ctx context.Context, method, path string, in any) (*response, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	CredentialsFrom(ctx).apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("backend: read response: %w", err)
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	r := &response{status: resp.StatusCode, header: resp.Header, body: data}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(r)
	}
	return r, nil
}
