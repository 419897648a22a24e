package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	apperrors "blog-edge/pkg/errors"
	"blog-edge/pkg/logger"
)

// errorBody is the JSON error envelope shared by the API handlers
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeAppError maps an AppError (or any error) to an HTTP response.
// Internal details are logged, never sent to the client.
func writeAppError(w http.ResponseWriter, err error, log *logger.Logger) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.WithError(appErr).Error("Request failed")
		}
		writeJSON(w, appErr.StatusCode, errorBody{Error: appErr.Message}, log)
		return
	}
	log.WithError(err).Error("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"}, log)
}

// clientIP resolves the real client address: edge headers first, then
// the socket peer
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "unknown"
	}
	return host
}

// setSecurityHeaders applies the strict header set used on the
// newsletter endpoints
func setSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()")
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
}
