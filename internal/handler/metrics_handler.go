package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"blog-edge/internal/domain"
	"blog-edge/internal/service"
	apperrors "blog-edge/pkg/errors"
	"blog-edge/pkg/logger"
)

// MetricsHandler exposes the Web Vitals ingestion endpoints
type MetricsHandler struct {
	metrics *service.MetricsService
	logger  *logger.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metrics *service.MetricsService, logger *logger.Logger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, logger: logger}
}

// Ingest handles POST /api/metrics with a single sample
func (h *MetricsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var sample domain.MetricSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.metrics.Ingest(r.Context(), sample, clientIP(r)); err != nil {
		h.writePlainError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, "OK"); err != nil {
		h.logger.WithError(err).Debug("Failed to write metrics response")
	}
}

// IngestBatch handles POST /api/metrics/batch
func (h *MetricsHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Metrics []domain.MetricSample `json:"metrics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.metrics.IngestBatch(r.Context(), body.Metrics, clientIP(r))
	if err != nil {
		h.writePlainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result, h.logger)
}

// writePlainError keeps the ingestion endpoints' plain-text error bodies
func (h *MetricsHandler) writePlainError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.logger.WithError(appErr).Error("Metrics ingestion failed")
		}
		http.Error(w, appErr.Message, appErr.StatusCode)
		return
	}
	h.logger.WithError(err).Error("Metrics ingestion failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
