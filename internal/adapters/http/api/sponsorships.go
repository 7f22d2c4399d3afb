// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/veriflab/matchengine/internal/adapters/repository"
	"github.com/veriflab/matchengine/internal/domain/model"
)

// SponsorshipDependencies defines the interface for sponsorship reads
// and human overrides.
type SponsorshipDependencies interface {
	ListSponsorships(ctx context.Context, eventID, laboratoryID string, status model.Status) ([]model.Sponsorship, error)
	GetSponsorship(ctx context.Context, id string) (model.Sponsorship, error)
	OverrideSponsorship(ctx context.Context, id string, status model.Status, actor string) (model.Sponsorship, error)
}

// SponsorshipsHandler handles sponsorship requests.
type SponsorshipsHandler struct {
	deps SponsorshipDependencies
}

// NewSponsorshipsHandler creates a new sponsorships handler.
func NewSponsorshipsHandler(deps SponsorshipDependencies) *SponsorshipsHandler {
	return &SponsorshipsHandler{deps: deps}
}

// HandleList handles GET /sponsorships requests with optional event,
// laboratory, and status filters.
func (h *SponsorshipsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_sponsorships"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	eventID := q.Get("event")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing event query parameter")))
		return
	}
	status, err := parseStatus(q.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sponsorships, err := h.deps.ListSponsorships(r.Context(), eventID, q.Get("laboratory"), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]sponsorshipResponse, 0, len(sponsorships))
	for _, s := range sponsorships {
		out = append(out, sponsorshipFromModel(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// overrideRequest carries the reviewing user for a human override.
type overrideRequest struct {
	Actor string `json:"actor"`
}

// HandleByID handles GET /sponsorships/{id} and
// POST /sponsorships/{id}/validate or /reject requests.
func (h *SponsorshipsHandler) HandleByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.sponsorship_by_id"

	rest := strings.TrimPrefix(r.URL.Path, "/sponsorships/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing sponsorship id")))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleGet(w, r, id)
	case (action == "validate" || action == "reject") && r.Method == http.MethodPost:
		h.handleOverride(w, r, id, action)
	default:
		http.NotFound(w, r)
	}
}

func (h *SponsorshipsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.deps.GetSponsorship(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, sponsorshipFromModel(s))
}

func (h *SponsorshipsHandler) handleOverride(w http.ResponseWriter, r *http.Request, id, action string) {
	const op = "api.override_sponsorship"

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Actor) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing actor")))
		return
	}

	status := model.StatusValidated
	if action == "reject" {
		status = model.StatusRejected
	}

	s, err := h.deps.OverrideSponsorship(r.Context(), id, status, req.Actor)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, sponsorshipFromModel(s))
}
