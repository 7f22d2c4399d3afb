// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/veriflab/matchengine/internal/config"
	"github.com/veriflab/matchengine/internal/domain/dedupe"
	"github.com/veriflab/matchengine/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a declaration for async resolution. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, d model.Declaration) bool

	// RegisterRoster installs an event's official participant roster and
	// returns the number of indexed entries.
	RegisterRoster(ctx context.Context, eventID string, roster []model.Participant) int

	// Read and override operations expose sponsorship state.
	ListSponsorships(ctx context.Context, eventID, laboratoryID string, status model.Status) ([]model.Sponsorship, error)
	GetSponsorship(ctx context.Context, id string) (model.Sponsorship, error)
	OverrideSponsorship(ctx context.Context, id string, status model.Status, actor string) (model.Sponsorship, error)

	// Conflict operations.
	Conflicts(ctx context.Context, eventID string) ([]model.Conflict, error)
	ResolveConflict(ctx context.Context, eventID, officialID, winningLaboratoryID, actor string) error

	// Scoring configuration read and hot update.
	ScoringConfig(ctx context.Context) config.Scoring
	UpdateScoringConfig(ctx context.Context, s config.Scoring) error

	// EventStats summarizes one event for dashboards.
	EventStats(ctx context.Context, eventID string) (model.DashboardStats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	declarationsHandler *DeclarationsHandler
	importsHandler      *ImportsHandler
	sponsorshipsHandler *SponsorshipsHandler
	conflictsHandler    *ConflictsHandler
	configHandler       *ConfigHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps, statsProvider),
		declarationsHandler: NewDeclarationsHandler(deps),
		importsHandler:      NewImportsHandler(deps),
		sponsorshipsHandler: NewSponsorshipsHandler(deps),
		conflictsHandler:    NewConflictsHandler(deps),
		configHandler:       NewConfigHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/declarations", MetricsMiddleware(s.declarationsHandler.HandlePostDeclaration, "declarations"))
	mux.HandleFunc("/imports", MetricsMiddleware(s.importsHandler.HandlePostImport, "imports"))
	mux.HandleFunc("/sponsorships", MetricsMiddleware(s.sponsorshipsHandler.HandleList, "sponsorships"))
	mux.HandleFunc("/sponsorships/", MetricsMiddleware(s.sponsorshipsHandler.HandleByID, "sponsorship"))
	mux.HandleFunc("/conflicts", MetricsMiddleware(s.conflictsHandler.HandleGetConflicts, "conflicts"))
	mux.HandleFunc("/conflicts/resolve", MetricsMiddleware(s.conflictsHandler.HandleResolve, "conflicts_resolve"))
	mux.HandleFunc("/config", MetricsMiddleware(s.configHandler.HandleConfig, "config"))
}

// participantPayload mirrors the OpenAPI schema for participant records.
type participantPayload struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"date_of_birth"`
	IdentityCard string `json:"identity_card"`
	Email        string `json:"email,omitempty"`
	Specialty    string `json:"specialty,omitempty"`
}

func (p participantPayload) toModel() model.Participant {
	return model.Participant{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		DateOfBirth:  p.DateOfBirth,
		IdentityCard: p.IdentityCard,
		Email:        p.Email,
		Specialty:    p.Specialty,
	}
}

func participantFromModel(p model.Participant) participantPayload {
	return participantPayload{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		DateOfBirth:  p.DateOfBirth,
		IdentityCard: p.IdentityCard,
		Email:        p.Email,
		Specialty:    p.Specialty,
	}
}

// declarationRequest mirrors the OpenAPI schema for POST /declarations.
type declarationRequest struct {
	DeclarationID string             `json:"declaration_id"`
	EventID       string             `json:"event_id"`
	LaboratoryID  string             `json:"laboratory_id"`
	Participant   participantPayload `json:"participant"`
	TS            string             `json:"ts"`
}

func (d declarationRequest) validate() error {
	switch {
	case strings.TrimSpace(d.DeclarationID) == "":
		return errors.New("missing declaration_id")
	case strings.TrimSpace(d.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(d.LaboratoryID) == "":
		return errors.New("missing laboratory_id")
	case strings.TrimSpace(d.Participant.LastName) == "":
		return errors.New("missing participant.last_name")
	case strings.TrimSpace(d.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, d.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (d declarationRequest) toModel() model.Declaration {
	ts, _ := time.Parse(time.RFC3339, d.TS)
	return model.Declaration{
		DeclarationID: d.DeclarationID,
		EventID:       d.EventID,
		LaboratoryID:  d.LaboratoryID,
		Participant:   d.Participant.toModel(),
		TS:            ts,
	}
}

// matchDetailsPayload mirrors the read shape of per-field scores.
type matchDetailsPayload struct {
	NameScore         int    `json:"name_score"`
	DateOfBirthScore  int    `json:"date_of_birth_score"`
	IdentityCardScore int    `json:"identity_card_score"`
	OverallScore      int    `json:"overall_score"`
	Explanation       string `json:"explanation"`
}

// sponsorshipResponse mirrors the read shape of one sponsorship.
type sponsorshipResponse struct {
	ID           string              `json:"id"`
	EventID      string              `json:"event_id"`
	LaboratoryID string              `json:"laboratory_id"`
	Participant  participantPayload  `json:"participant"`
	Status       string              `json:"status"`
	Decision     string              `json:"decision"`
	Details      matchDetailsPayload `json:"details"`
	Matched      *participantPayload `json:"matched,omitempty"`
	Partial      bool                `json:"partial,omitempty"`
	OverriddenBy string              `json:"overridden_by,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	DecidedAt    *time.Time          `json:"decided_at,omitempty"`
}

func sponsorshipFromModel(s model.Sponsorship) sponsorshipResponse {
	resp := sponsorshipResponse{
		ID:           s.ID,
		EventID:      s.EventID,
		LaboratoryID: s.LaboratoryID,
		Participant:  participantFromModel(s.Participant),
		Status:       string(s.Status),
		Decision:     string(s.Decision),
		Details: matchDetailsPayload{
			NameScore:         s.Details.NameScore,
			DateOfBirthScore:  s.Details.DateOfBirthScore,
			IdentityCardScore: s.Details.IdentityCardScore,
			OverallScore:      s.Details.OverallScore,
			Explanation:       s.Details.Explanation,
		},
		Partial:      s.Partial,
		OverriddenBy: s.OverriddenBy,
		CreatedAt:    s.CreatedAt,
	}
	if s.Matched != nil {
		m := participantFromModel(*s.Matched)
		resp.Matched = &m
	}
	if !s.DecidedAt.IsZero() {
		t := s.DecidedAt
		resp.DecidedAt = &t
	}
	return resp
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseStatus validates a status query or override value.
func parseStatus(raw string) (model.Status, error) {
	switch model.Status(raw) {
	case model.StatusPending, model.StatusValidated, model.StatusRejected:
		return model.Status(raw), nil
	case "":
		return "", nil
	default:
		return "", errors.New("invalid status; must be pending, validated or rejected")
	}
}
