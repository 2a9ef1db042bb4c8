package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/services"
)

// InsightHandler serves the dashboard widgets and the portfolio tools.
type InsightHandler struct {
	insights  services.InsightServiceProvider
	portfolio services.PortfolioServiceProvider
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insights services.InsightServiceProvider, portfolio services.PortfolioServiceProvider) *InsightHandler {
	return &InsightHandler{insights: insights, portfolio: portfolio}
}

// sectorParam reads ?sector=, defaulting to the account's sector.
func sectorParam(r *http.Request, account models.Account) models.Sector {
	if s := r.URL.Query().Get("sector"); s != "" {
		return models.Sector(s)
	}
	return account.Sector
}

func (h *InsightHandler) Skills(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	skills, err := h.insights.Skills(r.Context(), session.Account, refresh)
	if err != nil {
		writeError(w, r, err, "analyze skills")
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

func (h *InsightHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	questions, err := h.insights.Quiz(r.Context(), sectorParam(r, session.Account))
	if err != nil {
		writeError(w, r, err, "generate quiz")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *InsightHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	items, err := h.insights.Opportunities(r.Context(), sectorParam(r, session.Account))
	if err != nil {
		writeError(w, r, err, "fetch opportunities")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InsightHandler) PortfolioStrategy(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	strategy, err := h.portfolio.Strategy(r.Context(), session.Account)
	if err != nil {
		writeError(w, r, err, "build portfolio strategy")
		return
	}
	writeJSON(w, http.StatusOK, strategy)
}

// Rewrite polishes a piece of portfolio text.
func (h *InsightHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &payload) {
		return
	}
	text, err := h.portfolio.Rewrite(r.Context(), payload.Text)
	if err != nil {
		writeError(w, r, err, "rewrite text")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
