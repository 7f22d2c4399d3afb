// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/veriflab/matchengine/internal/domain/model"
)

// ImportDependencies defines the interface for batch imports.
type ImportDependencies interface {
	DeclarationDependencies
	RegisterRoster(ctx context.Context, eventID string, roster []model.Participant) int
}

// ImportsHandler handles batch import requests.
type ImportsHandler struct {
	deps ImportDependencies
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(deps ImportDependencies) *ImportsHandler {
	return &ImportsHandler{deps: deps}
}

// importRequest mirrors the OpenAPI schema for POST /imports. The roster
// is the event's official participant list; declarations are matched
// against it. A roster-only import just registers the roster.
type importRequest struct {
	EventID      string               `json:"event_id"`
	Roster       []participantPayload `json:"roster"`
	Declarations []declarationRequest `json:"declarations"`
}

func (i importRequest) validate() error {
	if strings.TrimSpace(i.EventID) == "" {
		return errors.New("missing event_id")
	}
	if len(i.Roster) == 0 && len(i.Declarations) == 0 {
		return errors.New("import needs a roster, declarations, or both")
	}
	for idx, d := range i.Declarations {
		if d.EventID != "" && d.EventID != i.EventID {
			return errors.New("declaration event_id does not match import event_id")
		}
		if err := d.validate(); err != nil {
			return fmt.Errorf("declaration %d: %w", idx, err)
		}
	}
	return nil
}

type importResponse struct {
	Status     string `json:"status"`
	RosterSize int    `json:"roster_size"`
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
	Refused    int    `json:"refused"`
}

// HandlePostImport handles POST /imports requests.
func (h *ImportsHandler) HandlePostImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_import"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Declarations inherit the import's event when left blank.
	for idx := range req.Declarations {
		if req.Declarations[idx].EventID == "" {
			req.Declarations[idx].EventID = req.EventID
		}
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	resp := importResponse{Status: "accepted"}
	if len(req.Roster) > 0 {
		roster := make([]model.Participant, 0, len(req.Roster))
		for _, p := range req.Roster {
			roster = append(roster, p.toModel())
		}
		resp.RosterSize = h.deps.RegisterRoster(r.Context(), req.EventID, roster)
	}

	for _, d := range req.Declarations {
		if h.deps.SeenAndRecord(r.Context(), d.DeclarationID) {
			resp.Duplicates++
			continue
		}
		if ok := h.deps.Enqueue(r.Context(), d.toModel()); !ok {
			h.deps.Unrecord(r.Context(), d.DeclarationID)
			resp.Refused++
			continue
		}
		resp.Accepted++
	}

	status := http.StatusAccepted
	if resp.Refused > 0 {
		// Partial acceptance under backpressure; the caller retries the rest.
		status = http.StatusTooManyRequests
		resp.Status = "partial"
	}
	writeJSON(w, status, resp)
}

