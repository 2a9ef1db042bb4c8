package handlers

import (
	"net/http"

	"github.com/isdelr/stratum-be/internal/services"
)

// MentorHandler handles a chat channel: the sector mentor or the concierge.
type MentorHandler struct {
	service services.MentorServiceProvider
	name    string
}

// NewMentorHandler creates a new MentorHandler. name labels error messages.
func NewMentorHandler(service services.MentorServiceProvider, name string) *MentorHandler {
	return &MentorHandler{service: service, name: name}
}

func (h *MentorHandler) History(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	history, err := h.service.History(r.Context(), session.AccountID)
	if err != nil {
		writeError(w, r, err, "load "+h.name+" history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Send posts a message and returns the reply.
func (h *MentorHandler) Send(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var payload struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &payload) {
		return
	}

	reply, err := h.service.Send(r.Context(), session.Account, payload.Message)
	if err != nil {
		writeError(w, r, err, "reach the "+h.name)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *MentorHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.service.Clear(r.Context(), session.AccountID); err != nil {
		writeError(w, r, err, "clear "+h.name+" history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
