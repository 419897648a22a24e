package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

func newPostsRouter(t *testing.T) *chi.Mux {
	metadata := newMetadata(t)
	catalog := service.NewCatalogService(metadata, testSite, logger.NewNop())
	h := NewPostsHandler(catalog, metadata, testSite, logger.NewNop())

	r := chi.NewRouter()
	r.Get("/api/posts", h.List)
	r.Get("/api/posts/{slug}", h.Get)
	r.Get("/api/tags", h.Tags)
	r.Get("/api/search", h.Search)
	r.Get("/api/recommendations", h.Recommendations)
	return r
}

func getJSON(t *testing.T, r http.Handler, target string, out interface{}) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestPostsHandler_List(t *testing.T) {
	r := newPostsRouter(t)

	var body struct {
		Posts []struct {
			Slug string `json:"slug"`
		} `json:"posts"`
		Pagination struct {
			Total   int  `json:"total"`
			HasMore bool `json:"hasMore"`
		} `json:"pagination"`
		Meta struct {
			APIVersion string `json:"apiVersion"`
		} `json:"meta"`
	}
	rec := getJSON(t, r, "/api/posts", &body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	require.Len(t, body.Posts, 2)
	assert.Equal(t, "scaling-postgres", body.Posts[0].Slug)
	assert.Equal(t, 2, body.Pagination.Total)
	assert.False(t, body.Pagination.HasMore)
	assert.Equal(t, "1.0", body.Meta.APIVersion)
}

func TestPostsHandler_List_TagFilter(t *testing.T) {
	r := newPostsRouter(t)

	var body struct {
		Posts []struct {
			Slug string `json:"slug"`
		} `json:"posts"`
	}
	getJSON(t, r, "/api/posts?tag=pricing", &body)

	require.Len(t, body.Posts, 1)
	assert.Equal(t, "saas-pricing", body.Posts[0].Slug)
}

func TestPostsHandler_Get(t *testing.T) {
	r := newPostsRouter(t)

	var body struct {
		Slug     string `json:"slug"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
		URLs struct {
			Web   string `json:"web"`
			Image string `json:"image"`
		} `json:"urls"`
		StructuredData struct {
			Type string `json:"@type"`
		} `json:"structured_data"`
	}
	rec := getJSON(t, r, "/api/posts/scaling-postgres", &body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scaling-postgres", body.Slug)
	assert.Equal(t, "Scaling Postgres", body.Metadata.Title)
	assert.Equal(t, "https://haasonsaas.com/blog/scaling-postgres", body.URLs.Web)
	// Image URL derives from the title with the shared transform
	assert.Equal(t, "https://haasonsaas.com/generated/1200x630-scaling-postgres.webp", body.URLs.Image)
	assert.Equal(t, "BlogPosting", body.StructuredData.Type)
}

func TestPostsHandler_Get_NotFound(t *testing.T) {
	r := newPostsRouter(t)

	rec := getJSON(t, r, "/api/posts/no-such-post", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post not found")
}

func TestPostsHandler_Tags(t *testing.T) {
	r := newPostsRouter(t)

	var body struct {
		Tags []struct {
			Tag   string `json:"tag"`
			Count int    `json:"count"`
			Slug  string `json:"slug"`
		} `json:"tags"`
	}
	rec := getJSON(t, r, "/api/tags?sort=name", &body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Tags, 4)
	assert.Equal(t, "postgres", body.Tags[0].Tag)
	assert.Equal(t, 1, body.Tags[0].Count)
}

func TestPostsHandler_Search(t *testing.T) {
	r := newPostsRouter(t)

	var body struct {
		Query        string `json:"query"`
		TotalResults int    `json:"totalResults"`
		Results      []struct {
			Slug      string  `json:"slug"`
			Relevance float64 `json:"relevance"`
		} `json:"results"`
	}
	rec := getJSON(t, r, "/api/search?q=postgres", &body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "postgres", body.Query)
	require.Equal(t, 1, body.TotalResults)
	assert.Equal(t, "scaling-postgres", body.Results[0].Slug)
}

func TestPostsHandler_Recommendations(t *testing.T) {
	r := newPostsRouter(t)

	var body struct {
		Recommendations []struct {
			Slug     string `json:"slug"`
			Priority string `json:"priority"`
		} `json:"recommendations"`
		TotalRecommendations int `json:"totalRecommendations"`
	}
	rec := getJSON(t, r, "/api/recommendations?topic=pricing", &body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, body.TotalRecommendations)
	assert.Equal(t, "saas-pricing", body.Recommendations[0].Slug)
	assert.Equal(t, "medium", body.Recommendations[0].Priority)
}
