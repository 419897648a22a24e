package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-edge/internal/opengraph"
	"blog-edge/internal/service"
	"blog-edge/pkg/assets"
	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

const crawlerUA = "Twitterbot/1.0"
const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/120.0"

const shellHTML = `<!DOCTYPE html><html><head><title>App</title></head><body><div id="root"></div></body></html>`

const snapshotJSON = `{
	"scaling-postgres": {
		"title": "Scaling Postgres",
		"description": "Lessons from production",
		"author": "Jonathan Haas",
		"pubDate": "2024-03-01T00:00:00Z",
		"tags": ["postgres", "scaling"]
	},
	"saas-pricing": {
		"title": "SaaS Pricing",
		"description": "How to price",
		"author": "Jonathan Haas",
		"pubDate": "2024-01-15T00:00:00Z",
		"tags": ["pricing", "saas"]
	}
}`

var testSite = opengraph.Site{
	BaseURL:       "https://haasonsaas.com",
	Name:          "Haas on SaaS",
	TwitterHandle: "@haasonsaas",
	DefaultAuthor: "Jonathan Haas",
}

// newAssetOrigin serves the SPA shell and the metadata snapshot the way
// the static origin does
func newAssetOrigin(t *testing.T) assets.Fetcher {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blog-metadata.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(snapshotJSON))
		case "/index.html":
			w.Header().Set("Content-Type", "text/html;charset=UTF-8")
			_, _ = w.Write([]byte(shellHTML))
		case "/assets/app.js":
			w.Header().Set("Content-Type", "application/javascript")
			w.Header().Set("Cache-Control", "public, max-age=31536000")
			_, _ = w.Write([]byte("console.log('app')"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return assets.NewClient(srv.URL, logger.NewNop())
}

func newTestStore(t *testing.T) *kv.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := kv.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newMetadata(t *testing.T) *service.MetadataService {
	return service.NewMetadataService(newAssetOrigin(t), logger.NewNop())
}
