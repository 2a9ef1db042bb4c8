package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/assessment"
	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/services"
)

// SectorInfo is one entry of the sector picker.
type SectorInfo struct {
	Sector          models.Sector `json:"sector"`
	SuggestedSkills []string      `json:"suggestedSkills"`
}

// AssessmentHandler drives the multi-step assessment and hands the submitted
// profile to the roadmap pipeline.
type AssessmentHandler struct {
	assessment services.AssessmentServiceProvider
	roadmaps   services.RoadmapServiceProvider
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessment services.AssessmentServiceProvider, roadmaps services.RoadmapServiceProvider) *AssessmentHandler {
	return &AssessmentHandler{assessment: assessment, roadmaps: roadmaps}
}

// Sectors lists the supported sectors with their suggested skills, plus the
// proficiency levels.
func (h *AssessmentHandler) Sectors(w http.ResponseWriter, r *http.Request) {
	sectors := make([]SectorInfo, 0, len(models.Sectors))
	for _, s := range models.Sectors {
		sectors = append(sectors, SectorInfo{Sector: s, SuggestedSkills: models.SuggestedSkills[s]})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sectors": sectors,
		"levels":  models.Levels,
	})
}

func (h *AssessmentHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	draft, err := h.assessment.GetDraft(r.Context(), session.Account)
	if err != nil {
		writeError(w, r, err, "load assessment")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// ApplyStep records the answer for the step named in the path.
func (h *AssessmentHandler) ApplyStep(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var payload services.StepInput
	if !decode(w, r, &payload) {
		return
	}

	step := assessment.Step(chi.URLParam(r, "step"))
	draft, err := h.assessment.ApplyStep(r.Context(), session.Account, step, payload)
	if err != nil {
		writeError(w, r, err, "save assessment step")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *AssessmentHandler) Discard(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.assessment.Discard(r.Context(), session.AccountID); err != nil {
		writeError(w, r, err, "discard assessment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit completes the draft and generates a roadmap from it. The draft is
// discarded only after the roadmap has been stored.
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	mode := assessment.Strict
	if r.URL.Query().Get("mode") == "lenient" {
		mode = assessment.Lenient
	}

	profile, err := h.assessment.Submit(r.Context(), session.Account, mode)
	if err != nil {
		writeError(w, r, err, "submit assessment")
		return
	}

	result, err := h.roadmaps.Generate(r.Context(), session, profile)
	if err != nil {
		writeError(w, r, err, "generate roadmap")
		return
	}

	if err := h.assessment.Discard(r.Context(), session.AccountID); err != nil {
		log.Warn().Err(err).Str("account_id", session.AccountID).Msg("Failed to discard submitted assessment")
	}
	writeJSON(w, http.StatusCreated, result)
}
