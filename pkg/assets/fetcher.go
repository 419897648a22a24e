package assets

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"blog-edge/pkg/logger"
)

// Fetcher retrieves files from the static-asset origin (the built SPA and
// the pre-generated metadata snapshot). Modeled as an interface so handlers
// and services can be tested without a live origin.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*http.Response, error)
	Head(ctx context.Context, path string) (*http.Response, error)
}

// Client is an HTTP-backed Fetcher
type Client struct {
	origin     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a fetcher against the given origin, e.g.
// "https://haasonsaas.com" or a local static file server
func NewClient(origin string, log *logger.Logger) *Client {
	return &Client{
		origin: origin,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Fetch performs a GET against the origin. The caller owns the response body.
func (c *Client) Fetch(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path)
}

// Head performs a HEAD against the origin, used by health checks
func (c *Client) Head(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodHead, path)
}

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.origin+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Debug("Asset fetch failed")
		return nil, fmt.Errorf("asset fetch %s: %w", path, err)
	}

	c.log.WithFields(map[string]interface{}{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Seconds(),
	}).Debug("Asset fetch completed")

	return resp, nil
}
