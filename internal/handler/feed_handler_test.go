package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

func serveFeed(t *testing.T, path string) *httptest.ResponseRecorder {
	metadata := newMetadata(t)
	catalog := service.NewCatalogService(metadata, testSite, logger.NewNop())
	h := NewFeedHandler(catalog, testSite, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	switch path {
	case "/rss.xml":
		h.RSS(rec, req)
	default:
		h.Atom(rec, req)
	}
	return rec
}

func TestFeedHandler_RSS(t *testing.T) {
	rec := serveFeed(t, "/rss.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=3600")

	body := rec.Body.String()
	assert.Contains(t, body, `<rss version="2.0">`)
	assert.Contains(t, body, "<title>Haas on SaaS</title>")
	assert.Contains(t, body, "<title>Scaling Postgres</title>")
	assert.Contains(t, body, "<link>https://haasonsaas.com/blog/scaling-postgres</link>")
	assert.Equal(t, 2, strings.Count(body, "<item>"))
}

func TestFeedHandler_Atom(t *testing.T) {
	rec := serveFeed(t, "/atom.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/atom+xml")

	body := rec.Body.String()
	assert.Contains(t, body, `xmlns="http://www.w3.org/2005/Atom"`)
	assert.Contains(t, body, "<title>Haas on SaaS</title>")
	assert.Equal(t, 2, strings.Count(body, "<entry>"))
}
