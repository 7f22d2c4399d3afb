package model

import "time"

// ConflictClaim is one laboratory's claim on an official participant.
type ConflictClaim struct {
	LaboratoryID  string
	SponsorshipID string
	DeclaredAt    time.Time
}

// Conflict records two or more laboratories declaring sponsorship for
// what resolved to the same official participant of one event. Resolved
// by a human choosing a winning laboratory or rejecting all claims.
type Conflict struct {
	ID           string
	EventID      string
	OfficialID   string
	OfficialName string
	DateOfBirth  string
	IdentityCard string
	Claims       []ConflictClaim
}
