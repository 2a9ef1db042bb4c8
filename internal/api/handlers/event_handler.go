package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/stratum-be/internal/services"
)

const maxEventLimit = 200

// EventHandler handles HTTP requests for the account activity trail.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity for the current account.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.service.GetRecentEvents(r.Context(), session.AccountID, limit)
	if err != nil {
		writeError(w, r, err, "retrieve events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
