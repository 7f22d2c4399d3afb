// Package model contains domain models passed between layers.
package model

// Participant is a person record, either declared by a laboratory or
// taken from an event's official registration roster.
type Participant struct {
	ID           string // record identifier within its provenance
	FirstName    string
	LastName     string
	DateOfBirth  string // as submitted; DD/MM/YYYY primary, ISO 8601 fallback
	IdentityCard string
	Email        string
	Specialty    string
}

// FieldScores holds the per-field similarity scores for one pairing.
// Each score is an integer in [0,100].
type FieldScores struct {
	Name         int
	DateOfBirth  int
	IdentityCard int
}

// MatchCandidate is the result of resolving one declared participant
// against an official roster. Official is nil when no plausible match
// was found. Partial marks a resolution abandoned at the soft deadline.
type MatchCandidate struct {
	Declared Participant
	Official *Participant
	Scores   FieldScores
	Partial  bool
}

// MatchDetails is the scored output handed to the presentation layer.
// Derived data; recomputed rather than mutated.
type MatchDetails struct {
	NameScore         int
	DateOfBirthScore  int
	IdentityCardScore int
	OverallScore      int
	Explanation       string
}

// Decision is the Decision Engine's classification of a candidate.
type Decision string

// Decision values.
const (
	DecisionAutoValidated Decision = "auto-validated"
	DecisionNeedsReview   Decision = "needs-review"
	DecisionAutoRejected  Decision = "auto-rejected"
)
