package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"blog-edge/internal/domain"
	apperrors "blog-edge/pkg/errors"
	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

// FeedbackService validates and persists typed feedback submissions
type FeedbackService struct {
	store  *kv.Client
	logger *logger.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(store *kv.Client, logger *logger.Logger) *FeedbackService {
	return &FeedbackService{store: store, logger: logger}
}

// Submit stores one feedback record and returns its generated ID.
// Limited to 3 submissions per minute per client IP.
func (s *FeedbackService) Submit(ctx context.Context, fb domain.Feedback, clientIP string) (string, error) {
	if err := validateFeedback(fb); err != nil {
		return "", err
	}

	nowMs := time.Now().UnixMilli()
	limitKey := s.store.KeyBuilder.KeyFeedbackLimit(clientIP, kv.MinuteBucket(nowMs))
	n, err := s.store.Incr(ctx, limitKey)
	if err != nil {
		return "", apperrors.NewInternalError("failed to check rate limit", err)
	}
	if n == 1 {
		if expErr := s.store.Expire(ctx, limitKey, kv.TTLFeedbackWin); expErr != nil {
			s.logger.WithError(expErr).Warn("Failed to set TTL on feedback rate limit")
		}
	}
	if n > kv.MaxFeedbackPerMinute {
		return "", apperrors.NewRateLimitError("Too many feedback submissions. Please slow down.")
	}

	fb.ID = "fb_" + uuid.NewString()
	fb.Timestamp = time.Now().UTC().Format(time.RFC3339)
	fb.ClientIP = clientIP

	payload, err := json.Marshal(fb)
	if err != nil {
		return "", apperrors.NewInternalError("failed to marshal feedback", err)
	}
	if err := s.store.Set(ctx, s.store.KeyBuilder.KeyFeedback(fb.ID), payload, kv.TTLFeedback); err != nil {
		return "", apperrors.NewInternalError("failed to store feedback", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"feedback_id": fb.ID,
		"type":        fb.Type,
		"category":    fb.Category,
	}).Info("Feedback stored")

	return fb.ID, nil
}

func validateFeedback(fb domain.Feedback) error {
	if !contains(domain.FeedbackTypes, fb.Type) {
		return apperrors.NewValidationError(
			"Invalid or missing feedback type. Must be: bug, suggestion, compliment, or question", nil)
	}
	if !contains(domain.FeedbackCategories, fb.Category) {
		return apperrors.NewValidationError(
			"Invalid or missing category. Must be: api, documentation, performance, features, or other", nil)
	}
	if len(fb.Message) < 10 || len(fb.Message) > 1000 {
		return apperrors.NewValidationError("Message must be between 10 and 1000 characters", nil)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
