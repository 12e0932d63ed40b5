package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Lingo_Connect/internal/services"
	"github.com/Dias221467/Lingo_Connect/pkg/logger"
	"github.com/Dias221467/Lingo_Connect/pkg/middleware"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Message  string `json:"message"`
	DaysLeft int    `json:"daysLeft,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidOperation), errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a service error to the client. Anything that is not a
// ServiceError is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		status := statusFor(svcErr)
		if status != http.StatusInternalServerError {
			logger.Log.WithFields(logrus.Fields{
				"op":         op,
				"request_id": w.Header().Get(middleware.RequestIDHeader),
				"status":     status,
			}).Warn(svcErr.Message)
			writeJSON(w, status, errorResponse{Message: svcErr.Message, DaysLeft: svcErr.DaysLeft})
			return
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"op":         op,
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": w.Header().Get(middleware.RequestIDHeader),
	}).WithError(err).Error("Request failed")
	writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
}
