package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"txdash/internal/log"
	"txdash/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeValidationError answers 400 and counts the failure against its field.
func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	field := "unknown"
	var verr *ValidationError
	if errors.As(err, &verr) {
		field = verr.Field
	}
	if s.metrics != nil {
		s.metrics.ValidationFailed(field)
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid query",
		log.NewFields().
			WithError(err).
			WithErrorType(log.ErrorTypeValidation).
			With(log.FieldField, field).
			ToSlice()...)
	writeError(w, http.StatusBadRequest, err.Error())
}

// writeServiceError logs the cause and answers with a generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op, msg string, err error) {
	errType := log.ErrorTypeInternal
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errType = log.ErrorTypeTimeout
	case errors.Is(err, services.ErrDatasetUnavailable):
		errType = log.ErrorTypeDataset
	}
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), "Query failed", err, op, log.NewFields().WithErrorType(errType))
	writeError(w, http.StatusInternalServerError, msg)
}
