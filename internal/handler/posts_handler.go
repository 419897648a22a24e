package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"blog-edge/internal/opengraph"
	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

// PostsHandler exposes the read APIs over the metadata snapshot
type PostsHandler struct {
	catalog  *service.CatalogService
	metadata *service.MetadataService
	site     opengraph.Site
	logger   *logger.Logger
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(catalog *service.CatalogService, metadata *service.MetadataService, site opengraph.Site, logger *logger.Logger) *PostsHandler {
	return &PostsHandler{
		catalog:  catalog,
		metadata: metadata,
		site:     site,
		logger:   logger,
	}
}

type apiMeta struct {
	Generated  string `json:"generated"`
	APIVersion string `json:"apiVersion"`
}

func newAPIMeta() apiMeta {
	return apiMeta{
		Generated:  time.Now().UTC().Format(time.RFC3339),
		APIVersion: "1.0",
	}
}

// List handles GET /api/posts
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.ListParams{
		Limit:  intParam(q.Get("limit"), 50),
		Offset: intParam(q.Get("offset"), 0),
		Tag:    q.Get("tag"),
		Author: q.Get("author"),
	}

	page := h.catalog.List(r.Context(), params)

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, struct {
		*service.PostList
		Meta apiMeta `json:"meta"`
	}{page, newAPIMeta()}, h.logger)
}

// Get handles GET /api/posts/{slug}
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	meta, found := h.metadata.Get(r.Context(), slug)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "Post not found",
			"slug":  slug,
		}, h.logger)
		return
	}

	author := meta.Author
	if author == "" {
		author = h.site.DefaultAuthor
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}

	response := map[string]interface{}{
		"slug": slug,
		"metadata": map[string]interface{}{
			"title":       meta.Title,
			"description": meta.Description,
			"author":      author,
			"pubDate":     meta.PubDate,
			"tags":        tags,
		},
		"urls": map[string]string{
			"web":   h.site.BaseURL + "/blog/" + slug,
			"api":   h.site.BaseURL + "/api/posts/" + slug,
			"image": opengraph.ImageURL(meta.Title, h.site.BaseURL),
		},
		"structured_data": map[string]interface{}{
			"@context":      "https://schema.org",
			"@type":         "BlogPosting",
			"headline":      meta.Title,
			"description":   meta.Description,
			"url":           h.site.BaseURL + "/blog/" + slug,
			"datePublished": meta.PubDate,
			"author": map[string]string{
				"@type": "Person",
				"name":  author,
				"url":   h.site.BaseURL,
			},
			"publisher": map[string]string{
				"@type": "Organization",
				"name":  h.site.Name,
				"url":   h.site.BaseURL,
			},
		},
		"meta": newAPIMeta(),
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, response, h.logger)
}

// Tags handles GET /api/tags
func (h *PostsHandler) Tags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortBy := q.Get("sort")
	if sortBy == "" {
		sortBy = "count"
	}
	tags := h.catalog.Tags(r.Context(), sortBy, intParam(q.Get("minCount"), 1), q.Get("posts") == "true")

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, struct {
		Tags []service.TagInfo `json:"tags"`
		Meta apiMeta           `json:"meta"`
	}{tags, newAPIMeta()}, h.logger)
}

// Search handles GET /api/search
func (h *PostsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")

	start := time.Now()
	results := h.catalog.Search(r.Context(), query, intParam(q.Get("limit"), 10))

	writeJSON(w, http.StatusOK, struct {
		Query            string                 `json:"query"`
		Results          []service.SearchResult `json:"results"`
		TotalResults     int                    `json:"totalResults"`
		ProcessingTimeMs int64                  `json:"processingTime"`
	}{query, results, len(results), time.Since(start).Milliseconds()}, h.logger)
}

// Recommendations handles GET /api/recommendations
func (h *PostsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := q.Get("role")
	topic := q.Get("topic")
	experience := q.Get("experience")

	recs := h.catalog.Recommend(r.Context(), role, topic, experience, intParam(q.Get("limit"), 5))

	writeJSON(w, http.StatusOK, struct {
		Role                 string                   `json:"role,omitempty"`
		Topic                string                   `json:"topic,omitempty"`
		Experience           string                   `json:"experience,omitempty"`
		Recommendations      []service.Recommendation `json:"recommendations"`
		TotalRecommendations int                      `json:"totalRecommendations"`
	}{role, topic, experience, recs, len(recs)}, h.logger)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
