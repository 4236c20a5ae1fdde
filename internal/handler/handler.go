package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fvc-catalog/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error to an HTTP response. Storage and
// unexpected errors are reported with fallback, hiding their cause.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	switch {
	case errors.Is(err, model.ErrValidation) && errors.As(err, &domainErr):
		writeError(w, http.StatusBadRequest, domainErr.Code, domainErr.Message, logger)
	case errors.Is(err, model.ErrNotFound) && errors.As(err, &domainErr):
		writeError(w, http.StatusNotFound, domainErr.Code, domainErr.Message, logger)
	case errors.Is(err, model.ErrServiceClosed):
		writeError(w, http.StatusServiceUnavailable, model.ErrCodeInternalError, "service is shutting down", logger)
	default:
		logger.Error().Err(err).Msg(fallback)
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
	}
}
