// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veriflab/matchengine/internal/domain/dedupe"
	"github.com/veriflab/matchengine/internal/domain/model"
)

// DeclarationDependencies defines the interface for declaration intake.
type DeclarationDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, d model.Declaration) bool
}

// DeclarationsHandler handles declaration intake requests.
type DeclarationsHandler struct {
	deps DeclarationDependencies
}

// NewDeclarationsHandler creates a new declarations handler.
func NewDeclarationsHandler(deps DeclarationDependencies) *DeclarationsHandler {
	return &DeclarationsHandler{deps: deps}
}

// HandlePostDeclaration handles POST /declarations requests.
func (h *DeclarationsHandler) HandlePostDeclaration(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_declaration"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req declarationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.DeclarationID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async resolution
	if ok := h.deps.Enqueue(r.Context(), req.toModel()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.DeclarationID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
