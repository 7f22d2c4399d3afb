package model

import "time"

// Status is the lifecycle state of a sponsorship.
type Status string

// Status values.
const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

// StatusForDecision maps an automatic classification to the sponsorship
// status it drives.
func StatusForDecision(d Decision) Status {
	switch d {
	case DecisionAutoValidated:
		return StatusValidated
	case DecisionAutoRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// CanAutoTransition reports whether the automatic pipeline may move a
// sponsorship from its current status to the target. Validated and
// rejected are terminal for the automatic path; only a human override
// reopens them.
func (s Status) CanAutoTransition(to Status) bool {
	return s == StatusPending || s == to
}

// Declaration is one declared participant bound to an event and a
// laboratory, as submitted through the intake surface.
type Declaration struct {
	DeclarationID string // unique id for idempotency
	EventID       string
	LaboratoryID  string
	Participant   Participant
	TS            time.Time // declaration timestamp
}

// Sponsorship binds a declared participant to an event and a laboratory
// with its current status and scoring outcome.
type Sponsorship struct {
	ID            string
	EventID       string
	LaboratoryID  string
	Participant   Participant
	Status        Status
	Decision      Decision
	Details       MatchDetails
	Matched       *Participant // matched official record, nil when unmatched
	Partial       bool         // resolution hit the soft deadline
	OverriddenBy  string       // actor of a human override, empty for automatic
	CreatedAt     time.Time
	DecidedAt     time.Time
}

// MatchedOfficialID returns the matched official participant's identity
// as a stable grouping key for conflict detection, or "" when the
// sponsorship resolved to no official record.
func (s Sponsorship) MatchedOfficialID() string {
	if s.Matched == nil {
		return ""
	}
	return s.Matched.ID
}

// DashboardStats summarizes one event's sponsorships for dashboards.
type DashboardStats struct {
	TotalDeclared  int
	Validated      int
	Pending        int
	Rejected       int
	AverageScore   float64
	ValidationRate float64
}
