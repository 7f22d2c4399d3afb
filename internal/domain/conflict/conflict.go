// Package conflict detects competing sponsorship claims: two or more
// laboratories declaring what resolved to the same official participant
// of one event.
package conflict

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/veriflab/matchengine/internal/domain/model"
)

// Store is the slice of the sponsorship store the detector needs.
type Store interface {
	ListByEvent(ctx context.Context, eventID string) ([]model.Sponsorship, error)
	Override(ctx context.Context, id string, status model.Status, actor string) (model.Sponsorship, error)
}

// Detector scans resolved sponsorships grouped by matched official
// participant.
type Detector struct {
	store Store
}

// NewDetector creates a Detector backed by the given store.
func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// Detect returns one Conflict per official participant claimed by two
// or more distinct laboratories for the event. Rejected sponsorships no
// longer claim the participant and are excluded.
func (d *Detector) Detect(ctx context.Context, eventID string) ([]model.Conflict, error) {
	sponsorships, err := d.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing sponsorships for event %s: %w", eventID, err)
	}

	byOfficial := make(map[string][]model.Sponsorship)
	for _, s := range sponsorships {
		key := s.MatchedOfficialID()
		if key == "" || s.Status == model.StatusRejected {
			continue
		}
		byOfficial[key] = append(byOfficial[key], s)
	}

	var conflicts []model.Conflict
	for officialID, claims := range byOfficial {
		labs := make(map[string]struct{}, len(claims))
		for _, s := range claims {
			labs[s.LaboratoryID] = struct{}{}
		}
		if len(labs) < 2 {
			continue
		}

		c := model.Conflict{
			ID:         uuid.NewString(),
			EventID:    eventID,
			OfficialID: officialID,
		}
		if off := claims[0].Matched; off != nil {
			c.OfficialName = off.FirstName + " " + off.LastName
			c.DateOfBirth = off.DateOfBirth
			c.IdentityCard = off.IdentityCard
		}
		for _, s := range claims {
			c.Claims = append(c.Claims, model.ConflictClaim{
				LaboratoryID:  s.LaboratoryID,
				SponsorshipID: s.ID,
				DeclaredAt:    s.CreatedAt,
			})
		}
		sort.Slice(c.Claims, func(i, j int) bool {
			return c.Claims[i].DeclaredAt.Before(c.Claims[j].DeclaredAt)
		})
		conflicts = append(conflicts, c)
	}

	// Stable output for tables and repeated polls.
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].OfficialID < conflicts[j].OfficialID
	})
	return conflicts, nil
}

// Resolve applies a human decision to one conflict: either a winning
// laboratory keeps its sponsorship (validated) while the others are
// rejected, or every claim is rejected.
func (d *Detector) Resolve(ctx context.Context, eventID, officialID, winningLab, actor string) error {
	sponsorships, err := d.store.ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("listing sponsorships for event %s: %w", eventID, err)
	}

	touched := 0
	for _, s := range sponsorships {
		if s.MatchedOfficialID() != officialID || s.Status == model.StatusRejected {
			continue
		}
		touched++
		status := model.StatusRejected
		if winningLab != "" && s.LaboratoryID == winningLab {
			status = model.StatusValidated
		}
		if _, err := d.store.Override(ctx, s.ID, status, actor); err != nil {
			return fmt.Errorf("overriding sponsorship %s: %w", s.ID, err)
		}
	}
	if touched == 0 {
		return ErrNoClaims
	}
	return nil
}
