package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blog-edge/internal/middleware"
	"blog-edge/internal/opengraph"
	"blog-edge/internal/service"
	"blog-edge/pkg/assets"
	"blog-edge/pkg/logger"
)

// BlogHandler serves the dedicated blog post route. Crawlers get a fully
// rendered HTML document with OpenGraph tags; everyone else (and every
// failure) gets the plain SPA shell.
type BlogHandler struct {
	metadata *service.MetadataService
	fetcher  assets.Fetcher
	site     opengraph.Site
	logger   *logger.Logger
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(metadata *service.MetadataService, fetcher assets.Fetcher, site opengraph.Site, logger *logger.Logger) *BlogHandler {
	return &BlogHandler{
		metadata: metadata,
		fetcher:  fetcher,
		site:     site,
		logger:   logger,
	}
}

// ServePost handles GET /blog/{slug}
func (h *BlogHandler) ServePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if !opengraph.IsCrawler(r.Header.Get("User-Agent")) {
		h.serveShell(w, r)
		return
	}
	middleware.CountCrawlerRequest()

	meta, found := h.metadata.Get(r.Context(), slug)
	if !found {
		h.logger.WithField("slug", slug).Debug("No metadata for slug, serving SPA shell")
		h.serveShell(w, r)
		return
	}

	html := opengraph.RenderDocument(slug, *meta, h.site)

	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, html); err != nil {
		h.logger.WithError(err).Warn("Failed to write rendered document")
	}
}

// serveShell proxies the SPA entry point from the asset origin
func (h *BlogHandler) serveShell(w http.ResponseWriter, r *http.Request) {
	resp, err := h.fetcher.Fetch(r.Context(), "/index.html")
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch SPA shell")
		http.Error(w, "Service unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.WithError(err).Warn("Failed to stream SPA shell")
	}
}
