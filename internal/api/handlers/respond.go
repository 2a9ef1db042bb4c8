package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/assessment"
	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/services"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps service errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a 500 without leaking details.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if f, ok := synthesis.AsFailure(err); ok {
		writeJSON(w, failureStatus(f.Reason), ErrorBody{
			Error:     "Failed to " + action,
			Reason:    string(f.Reason),
			Retryable: true,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrDuplicateEmail), errors.Is(err, services.ErrStaleSession):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidTask),
		errors.Is(err, assessment.ErrIncompleteProfile),
		errors.Is(err, assessment.ErrInvalidSector),
		errors.Is(err, assessment.ErrInvalidLevel),
		errors.Is(err, assessment.ErrInvalidStudyHours),
		errors.Is(err, assessment.ErrUnknownStep):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNoRoadmap),
		errors.Is(err, services.ErrNoProfile),
		errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to " + action)
		writeJSON(w, status, ErrorBody{Error: "Failed to " + action})
		return
	}
	writeJSON(w, status, ErrorBody{Error: err.Error()})
}

func failureStatus(reason synthesis.Reason) int {
	switch reason {
	case synthesis.ReasonTimeout:
		return http.StatusGatewayTimeout
	case synthesis.ReasonNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// currentSession returns the session placed on the request by auth.Middleware.
func currentSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("Could not retrieve session from context")
		http.Error(w, "Could not retrieve session", http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}
