package handler

import (
	"encoding/json"
	"net/http"

	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

// NewsletterHandler exposes subscribe and unsubscribe
type NewsletterHandler struct {
	newsletter *service.NewsletterService
	logger     *logger.Logger
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(newsletter *service.NewsletterService, logger *logger.Logger) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter, logger: logger}
}

type emailRequest struct {
	Email string `json:"email"`
}

// Subscribe handles POST /subscribe
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)

	var body emailRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"}, h.logger)
		return
	}

	if err := h.newsletter.Subscribe(r.Context(), body.Email, clientIP(r)); err != nil {
		writeAppError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true}, h.logger)
}

// Unsubscribe handles POST /unsubscribe (JSON body) and
// GET /unsubscribe?email= (one-click links from email footers)
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)

	var email string
	if r.Method == http.MethodGet {
		email = r.URL.Query().Get("email")
	} else {
		var body emailRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"}, h.logger)
			return
		}
		email = body.Email
	}

	if err := h.newsletter.Unsubscribe(r.Context(), email); err != nil {
		writeAppError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "You have been unsubscribed.",
	}, h.logger)
}
