package handler

import (
	"encoding/json"
	"net/http"

	"blog-edge/internal/domain"
	"blog-edge/internal/service"
	"blog-edge/pkg/logger"
)

// FeedbackHandler exposes POST /api/feedback
type FeedbackHandler struct {
	feedback *service.FeedbackService
	logger   *logger.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedback *service.FeedbackService, logger *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, logger: logger}
}

// Submit handles POST /api/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var fb domain.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"}, h.logger)
		return
	}
	if fb.UserAgent == "" {
		fb.UserAgent = r.UserAgent()
	}

	id, err := h.feedback.Submit(r.Context(), fb, clientIP(r))
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Thanks for the feedback!",
		"feedbackId": id,
	}, h.logger)
}
