// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/veriflab/matchengine/internal/domain/model"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsDependencies defines the interface for per-event dashboards.
type StatsDependencies interface {
	EventStats(ctx context.Context, eventID string) (model.DashboardStats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	deps          StatsDependencies
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies, statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{deps: deps, statsProvider: statsProvider}
}

// statsResponse mirrors the dashboard summary of one event.
type statsResponse struct {
	TotalDeclared  int     `json:"total_declared"`
	Validated      int     `json:"validated"`
	Pending        int     `json:"pending"`
	Rejected       int     `json:"rejected"`
	AverageScore   float64 `json:"average_score"`
	ValidationRate float64 `json:"validation_rate"`
}

// HandleStats handles GET /stats requests. With an event query parameter
// it returns that event's dashboard summary; without one it returns
// service-level counters.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	eventID := r.URL.Query().Get("event")
	if eventID == "" {
		writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
		return
	}

	stats, err := h.deps.EventStats(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalDeclared:  stats.TotalDeclared,
		Validated:      stats.Validated,
		Pending:        stats.Pending,
		Rejected:       stats.Rejected,
		AverageScore:   stats.AverageScore,
		ValidationRate: stats.ValidationRate,
	})
}
