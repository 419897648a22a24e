package middleware

import (
	"net/http"
	"strings"

	"blog-edge/internal/opengraph"
	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

// MetaTags wraps the SPA proxy and, for crawler requests to blog post
// pages, streams the downstream HTML through a head injector that
// splices the OpenGraph block into <head>. Everything else passes
// through byte-identical: non-crawlers, non-blog paths, non-HTML
// responses, unknown slugs and snapshot failures all fall back to the
// unmodified downstream response. This path never fails a page load.
func MetaTags(metadata *service.MetadataService, site opengraph.Site, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug, ok := blogSlug(r.URL.Path)
			if !ok || !opengraph.IsCrawler(r.Header.Get("User-Agent")) {
				next.ServeHTTP(w, r)
				return
			}

			meta, found := metadata.Get(r.Context(), slug)
			if !found {
				log.WithField("slug", slug).Debug("No metadata for slug, passing through")
				next.ServeHTTP(w, r)
				return
			}

			block := opengraph.MetaTagBlock(slug, *meta, site)
			rw := &injectingResponseWriter{ResponseWriter: w, block: block}
			next.ServeHTTP(rw, r)
			if err := rw.finish(); err != nil {
				log.WithError(err).Warn("Head injection flush failed")
			}
		})
	}
}

// blogSlug extracts the slug from /blog/{slug} paths, tolerating one
// trailing slash
func blogSlug(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/blog/")
	if !ok {
		return "", false
	}
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// injectingResponseWriter decides at header-write time whether the
// downstream body is HTML and, if so, routes it through the streaming
// head injector. Content-Length is dropped because injection changes
// the body size.
type injectingResponseWriter struct {
	http.ResponseWriter
	block       string
	injector    *opengraph.HeadInjector
	wroteHeader bool
}

func (w *injectingResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		w.Header().Del("Content-Length")
		w.injector = opengraph.NewHeadInjector(w.ResponseWriter, w.block)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *injectingResponseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.injector != nil {
		return w.injector.Write(p)
	}
	return w.ResponseWriter.Write(p)
}

func (w *injectingResponseWriter) finish() error {
	if w.injector != nil {
		return w.injector.Close()
	}
	return nil
}

// Flush lets the downstream proxy keep streaming responses
func (w *injectingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
