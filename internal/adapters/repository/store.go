// Package repository defines the sponsorship store interface and errors.
package repository

import (
	"context"

	"github.com/veriflab/matchengine/internal/domain/model"
)

// Store provides read/write access to sponsorship state.
type Store interface {
	// Upsert inserts or refreshes a sponsorship produced by the
	// automatic pipeline. A record finalized by a human override is
	// never touched by the automatic path.
	Upsert(ctx context.Context, s model.Sponsorship) error

	// Get returns the sponsorship with the given id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (model.Sponsorship, error)

	// ListByEvent returns every sponsorship of one event.
	ListByEvent(ctx context.Context, eventID string) ([]model.Sponsorship, error)

	// ListByLaboratory returns one laboratory's sponsorships for an event.
	ListByLaboratory(ctx context.Context, eventID, laboratoryID string) ([]model.Sponsorship, error)

	// ListByStatus returns an event's sponsorships in the given status.
	ListByStatus(ctx context.Context, eventID string, status model.Status) ([]model.Sponsorship, error)

	// Override applies a human decision to a sponsorship, recording the
	// acting user. Human overrides bypass automatic transition rules.
	Override(ctx context.Context, id string, status model.Status, actor string) (model.Sponsorship, error)

	// Stats summarizes one event's sponsorships.
	Stats(ctx context.Context, eventID string) (model.DashboardStats, error)

	// Count returns the number of sponsorships tracked across all events.
	Count(ctx context.Context) int
}
