// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/veriflab/matchengine/internal/domain/conflict"
	"github.com/veriflab/matchengine/internal/domain/model"
)

// ConflictDependencies defines the interface for conflict reads and
// resolutions.
type ConflictDependencies interface {
	Conflicts(ctx context.Context, eventID string) ([]model.Conflict, error)
	ResolveConflict(ctx context.Context, eventID, officialID, winningLaboratoryID, actor string) error
}

// ConflictsHandler handles conflict requests.
type ConflictsHandler struct {
	deps ConflictDependencies
}

// NewConflictsHandler creates a new conflicts handler.
func NewConflictsHandler(deps ConflictDependencies) *ConflictsHandler {
	return &ConflictsHandler{deps: deps}
}

type conflictClaimPayload struct {
	LaboratoryID  string    `json:"laboratory_id"`
	SponsorshipID string    `json:"sponsorship_id"`
	DeclaredAt    time.Time `json:"declared_at"`
}

type conflictResponse struct {
	ID           string                 `json:"id"`
	EventID      string                 `json:"event_id"`
	OfficialID   string                 `json:"official_id"`
	OfficialName string                 `json:"official_name"`
	DateOfBirth  string                 `json:"date_of_birth"`
	IdentityCard string                 `json:"identity_card"`
	Claims       []conflictClaimPayload `json:"claims"`
}

func conflictFromModel(c model.Conflict) conflictResponse {
	resp := conflictResponse{
		ID:           c.ID,
		EventID:      c.EventID,
		OfficialID:   c.OfficialID,
		OfficialName: c.OfficialName,
		DateOfBirth:  c.DateOfBirth,
		IdentityCard: c.IdentityCard,
	}
	for _, claim := range c.Claims {
		resp.Claims = append(resp.Claims, conflictClaimPayload{
			LaboratoryID:  claim.LaboratoryID,
			SponsorshipID: claim.SponsorshipID,
			DeclaredAt:    claim.DeclaredAt,
		})
	}
	return resp
}

// HandleGetConflicts handles GET /conflicts requests.
func (h *ConflictsHandler) HandleGetConflicts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_conflicts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	eventID := r.URL.Query().Get("event")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing event query parameter")))
		return
	}

	conflicts, err := h.deps.Conflicts(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]conflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, conflictFromModel(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// resolveConflictRequest mirrors the OpenAPI schema for POST
// /conflicts/resolve. An empty winning_laboratory_id rejects every claim.
type resolveConflictRequest struct {
	EventID             string `json:"event_id"`
	OfficialID          string `json:"official_id"`
	WinningLaboratoryID string `json:"winning_laboratory_id"`
	Actor               string `json:"actor"`
}

func (rr resolveConflictRequest) validate() error {
	switch {
	case strings.TrimSpace(rr.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(rr.OfficialID) == "":
		return errors.New("missing official_id")
	case strings.TrimSpace(rr.Actor) == "":
		return errors.New("missing actor")
	}
	return nil
}

// HandleResolve handles POST /conflicts/resolve requests.
func (h *ConflictsHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.resolve_conflict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.ResolveConflict(r.Context(), req.EventID, req.OfficialID, req.WinningLaboratoryID, req.Actor); err != nil {
		if errors.Is(err, conflict.ErrNoClaims) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
