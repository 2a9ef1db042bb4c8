package handlers

import (
	"net/http"

	"github.com/isdelr/stratum-be/internal/services"
)

// RoadmapHandler serves the active roadmap and its progress.
type RoadmapHandler struct {
	roadmaps services.RoadmapServiceProvider
	progress services.ProgressServiceProvider
}

// NewRoadmapHandler creates a new RoadmapHandler.
func NewRoadmapHandler(roadmaps services.RoadmapServiceProvider, progress services.ProgressServiceProvider) *RoadmapHandler {
	return &RoadmapHandler{roadmaps: roadmaps, progress: progress}
}

// TogglePayload names one task of the active roadmap.
type TogglePayload struct {
	Week      int `json:"week"`
	TaskIndex int `json:"taskIndex"`
}

func (h *RoadmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.roadmaps.Active(r.Context(), session.AccountID)
	if err != nil {
		writeError(w, r, err, "load roadmap")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Regenerate reruns synthesis from the last submitted profile.
func (h *RoadmapHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	result, err := h.roadmaps.Regenerate(r.Context(), session)
	if err != nil {
		writeError(w, r, err, "regenerate roadmap")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ToggleTask flips one task and returns the updated view.
func (h *RoadmapHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var payload TogglePayload
	if !decode(w, r, &payload) {
		return
	}

	view, err := h.progress.Toggle(r.Context(), session.AccountID, payload.Week, payload.TaskIndex)
	if err != nil {
		writeError(w, r, err, "update progress")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
