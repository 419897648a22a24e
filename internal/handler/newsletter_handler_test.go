package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-edge/internal/config"
	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

func newNewsletterHandler(t *testing.T) *NewsletterHandler {
	store := newTestStore(t)

	resendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	t.Cleanup(resendSrv.Close)

	cfg := &config.Config{
		SiteBaseURL:   "https://haasonsaas.com",
		SiteName:      "Haas on SaaS",
		DefaultAuthor: "Jonathan Haas",
		SenderEmail:   "newsletter@haasonsaas.com",
		NotifyEmail:   "owner@haasonsaas.com",
	}
	newsletter := service.NewNewsletterService(
		store,
		service.NewResendClientWithEndpoint("test-key", resendSrv.URL, logger.NewNop()),
		cfg,
		logger.NewNop(),
	)
	return NewNewsletterHandler(newsletter, logger.NewNop())
}

func TestNewsletterHandler_Subscribe(t *testing.T) {
	h := newNewsletterHandler(t)

	rec := postJSON(h.Subscribe, "/subscribe", `{"email":"reader@example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestNewsletterHandler_Subscribe_Invalid(t *testing.T) {
	h := newNewsletterHandler(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{
			name: "Malformed JSON",
			body: `{"email":`,
			code: http.StatusBadRequest,
		},
		{
			name: "Missing email",
			body: `{}`,
			code: http.StatusBadRequest,
		},
		{
			name: "Invalid email",
			body: `{"email":"not-an-email"}`,
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h.Subscribe, "/subscribe", tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestNewsletterHandler_Subscribe_Duplicate(t *testing.T) {
	h := newNewsletterHandler(t)

	rec := postJSON(h.Subscribe, "/subscribe", `{"email":"reader@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(h.Subscribe, "/subscribe", `{"email":"reader@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already subscribed")
}

func TestNewsletterHandler_Unsubscribe_GetLink(t *testing.T) {
	h := newNewsletterHandler(t)

	rec := postJSON(h.Subscribe, "/subscribe", `{"email":"reader@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?email=reader%40example.com", nil)
	out := httptest.NewRecorder()
	h.Unsubscribe(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Body.String(), "unsubscribed")
}

func TestNewsletterHandler_Unsubscribe_NotFound(t *testing.T) {
	h := newNewsletterHandler(t)

	rec := postJSON(h.Unsubscribe, "/unsubscribe", `{"email":"ghost@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
