package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kozaktomas/image-collage/internal/collage"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps a collage error to an HTTP status code.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, collage.ErrNoInput),
		errors.Is(err, collage.ErrInvalidPath),
		errors.Is(err, collage.ErrNoValidAssets),
		errors.Is(err, collage.ErrCanvasTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondCollageError reports a failed build. Nothing is written when the
// request context is already done, since the client is gone or the
// timeout middleware answers instead.
func respondCollageError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("collage build aborted", "path", sanitizeForLog(r.URL.Path), "error", err)
		return
	}

	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("collage build failed", "error", err)
	}
	respondError(w, status, err.Error())
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
