package handler

import (
	"context"
	"net/http"
	"time"

	"blog-edge/pkg/assets"
	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

// HealthHandler reports service and dependency health
type HealthHandler struct {
	kv     *kv.Client
	assets assets.Fetcher
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(kvClient *kv.Client, fetcher assets.Fetcher, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{kv: kvClient, assets: fetcher, logger: logger}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"kv":     "up",
		"assets": "up",
	}

	kvCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.kv.Health(kvCtx); err != nil {
		h.logger.WithError(err).Warn("KV health check failed")
		checks["kv"] = "down"
	}

	assetCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	resp, err := h.assets.Head(assetCtx, "/blog-metadata.json")
	if err != nil || resp.StatusCode >= http.StatusInternalServerError {
		if err != nil {
			h.logger.WithError(err).Warn("Asset origin health check failed")
		} else {
			h.logger.WithField("status", resp.StatusCode).Warn("Asset origin unhealthy")
		}
		checks["assets"] = "down"
	}
	if resp != nil {
		resp.Body.Close()
	}

	status := http.StatusOK
	overall := "healthy"
	switch {
	case checks["kv"] == "down" && checks["assets"] == "down":
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	case checks["kv"] == "down" || checks["assets"] == "down":
		overall = "degraded"
	}

	writeJSON(w, status, healthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}, h.logger)
}
