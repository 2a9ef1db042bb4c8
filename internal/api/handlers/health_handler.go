package handlers

import (
	"net/http"

	"github.com/isdelr/stratum-be/internal/monitoring"
)

// StatsSource provides the latest resource sample.
type StatsSource interface {
	Latest() *monitoring.Stats
}

// HealthHandler reports liveness and the most recent resource sample.
type HealthHandler struct {
	stats    StatsSource
	provider string
}

// NewHealthHandler creates a new HealthHandler. stats may be nil.
func NewHealthHandler(stats StatsSource, provider string) *HealthHandler {
	return &HealthHandler{stats: stats, provider: provider}
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "ok",
		"synthesis": h.provider,
	}
	if h.stats != nil {
		if latest := h.stats.Latest(); latest != nil {
			body["resources"] = latest
		}
	}
	writeJSON(w, http.StatusOK, body)
}
