package handler

import (
	"io"
	"net/http"
	"path"
	"strings"

	"blog-edge/pkg/assets"
	"blog-edge/pkg/logger"
)

// SPAHandler proxies everything that isn't an API route to the static
// asset origin. Paths with a file extension map to the asset itself;
// extensionless paths fall through to the SPA entry point so client-side
// routing works on deep links.
type SPAHandler struct {
	fetcher assets.Fetcher
	logger  *logger.Logger
}

// NewSPAHandler creates a new SPA proxy handler
func NewSPAHandler(fetcher assets.Fetcher, logger *logger.Logger) *SPAHandler {
	return &SPAHandler{fetcher: fetcher, logger: logger}
}

// ServeHTTP implements http.Handler
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assetPath := r.URL.Path
	if path.Ext(assetPath) == "" {
		assetPath = "/index.html"
	}

	resp, err := h.fetcher.Fetch(r.Context(), assetPath)
	if err != nil {
		h.logger.WithError(err).WithField("path", assetPath).Error("Asset origin unreachable")
		http.Error(w, "Service unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	// Unknown assets fall back to the SPA entry point rather than a bare 404
	if resp.StatusCode == http.StatusNotFound && assetPath != "/index.html" {
		resp.Body.Close()
		fallback, fbErr := h.fetcher.Fetch(r.Context(), "/index.html")
		if fbErr != nil {
			http.NotFound(w, r)
			return
		}
		defer fallback.Body.Close()
		resp = fallback
	}

	copyHeader(w, resp, "Content-Type")
	copyHeader(w, resp, "Cache-Control")
	copyHeader(w, resp, "ETag")
	copyHeader(w, resp, "Last-Modified")
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		copyHeader(w, resp, "Content-Length")
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.WithError(err).Debug("Client disconnected while streaming asset")
	}
}

func copyHeader(w http.ResponseWriter, resp *http.Response, name string) {
	if v := resp.Header.Get(name); v != "" {
		w.Header().Set(name, v)
	}
}
