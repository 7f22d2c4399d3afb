package testdecl

import "time"

// Config holds configuration for the declaration test.
type Config struct {
	BaseURL         string        // Base URL of the service
	EventID         string        // Event the synthetic roster belongs to
	RosterSize      int           // Number of official participants to generate
	NumDeclarations int           // Number of declarations to generate
	Workers         int           // Number of concurrent submitters
	Timeout         time.Duration // HTTP request timeout
	LogFile         string        // Log file for test output
	Verbose         bool          // Enable verbose logging
}

// Participant mirrors the API's participant payload.
type Participant struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"date_of_birth"`
	IdentityCard string `json:"identity_card"`
	Specialty    string `json:"specialty,omitempty"`
}

// Declaration mirrors the API's declaration payload, annotated with the
// outcome the generator expects for it.
type Declaration struct {
	DeclarationID string      `json:"declaration_id"`
	EventID       string      `json:"event_id"`
	LaboratoryID  string      `json:"laboratory_id"`
	Participant   Participant `json:"participant"`
	TS            string      `json:"ts"`

	Expected string `json:"-"`
}

// ImportRequest mirrors the API's import payload.
type ImportRequest struct {
	EventID string        `json:"event_id"`
	Roster  []Participant `json:"roster"`
}

// AckResponse represents the response from declaration submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Sponsorship is the slice of the API's read shape the verifier needs.
type Sponsorship struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
	Status   string `json:"status"`
	Details  struct {
		OverallScore int `json:"overall_score"`
	} `json:"details"`
}

// Stats holds test statistics.
type Stats struct {
	RosterGenerated       int
	DeclarationsGenerated int
	DeclarationsSubmitted int
	DeclarationsAccepted  int
	DeclarationsDuplicate int
	DeclarationsFailed    int
	SponsorshipsRetrieved int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
