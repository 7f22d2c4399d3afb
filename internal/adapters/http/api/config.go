// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veriflab/matchengine/internal/config"
)

// ConfigDependencies defines the interface for scoring configuration
// reads and hot updates.
type ConfigDependencies interface {
	ScoringConfig(ctx context.Context) config.Scoring
	UpdateScoringConfig(ctx context.Context, s config.Scoring) error
}

// ConfigHandler handles scoring configuration requests.
type ConfigHandler struct {
	deps ConfigDependencies
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(deps ConfigDependencies) *ConfigHandler {
	return &ConfigHandler{deps: deps}
}

// scoringPayload mirrors the OpenAPI schema for the scoring
// configuration surface.
type scoringPayload struct {
	AutoValidationThreshold int  `json:"auto_validation_threshold"`
	WarningThreshold        int  `json:"warning_threshold"`
	RejectThreshold         int  `json:"reject_threshold"`
	AutoValidationEnabled   bool `json:"auto_validation_enabled"`
	FuzzyMatchingEnabled    bool `json:"fuzzy_matching_enabled"`
	AccentInsensitive       bool `json:"accent_insensitive"`
	MaxProcessingTimeSec    int  `json:"max_processing_time_sec"`
}

func scoringFromConfig(s config.Scoring) scoringPayload {
	return scoringPayload{
		AutoValidationThreshold: s.AutoValidationThreshold,
		WarningThreshold:        s.WarningThreshold,
		RejectThreshold:         s.RejectThreshold,
		AutoValidationEnabled:   s.AutoValidationEnabled,
		FuzzyMatchingEnabled:    s.FuzzyMatchingEnabled,
		AccentInsensitive:       s.AccentInsensitive,
		MaxProcessingTimeSec:    s.MaxProcessingTimeSec,
	}
}

func (p scoringPayload) toConfig() config.Scoring {
	return config.Scoring{
		AutoValidationThreshold: p.AutoValidationThreshold,
		WarningThreshold:        p.WarningThreshold,
		RejectThreshold:         p.RejectThreshold,
		AutoValidationEnabled:   p.AutoValidationEnabled,
		FuzzyMatchingEnabled:    p.FuzzyMatchingEnabled,
		AccentInsensitive:       p.AccentInsensitive,
		MaxProcessingTimeSec:    p.MaxProcessingTimeSec,
	}
}

// HandleConfig handles GET and PUT /config requests. Invalid updates
// are refused and the running configuration stays untouched.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.config"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, scoringFromConfig(h.deps.ScoringConfig(r.Context())))
	case http.MethodPut:
		var req scoringPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.UpdateScoringConfig(r.Context(), req.toConfig()); err != nil {
			if errors.Is(err, config.ErrInvalidConfig) {
				writeError(w, http.StatusUnprocessableEntity, "invalid_config", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, scoringFromConfig(h.deps.ScoringConfig(r.Context())))
	default:
		http.NotFound(w, r)
	}
}
