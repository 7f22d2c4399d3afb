package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/veriflab/matchengine/internal/domain/model"
	"github.com/veriflab/matchengine/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Sponsorships are spread over shards by id so concurrent worker
// upserts for unrelated declarations never contend on one lock. Event
// listings scan every shard; lists are ordered by creation time, then
// id, so repeated reads are stable.

const defaultShardCount = 8

type shard struct {
	mu    sync.RWMutex
	items map[string]model.Sponsorship
}

// MemStore implements Store with per-shard locking.
type MemStore struct {
	shards     []*shard
	shardCount int
	total      atomic.Int64

	now func() time.Time
}

// NewMemStore creates a new in-memory store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{items: make(map[string]model.Sponsorship)}
	}
	return s
}

func (s *MemStore) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// Upsert inserts or refreshes a sponsorship from the automatic pipeline.
func (s *MemStore) Upsert(_ context.Context, sp model.Sponsorship) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(sp.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	existing, ok := sh.items[sp.ID]
	if ok {
		// Human decisions are final for the automatic path.
		if existing.OverriddenBy != "" || !existing.Status.CanAutoTransition(sp.Status) {
			return nil
		}
		sp.CreatedAt = existing.CreatedAt
	} else {
		s.total.Add(1)
		if sp.CreatedAt.IsZero() {
			sp.CreatedAt = s.now()
		}
	}
	sh.items[sp.ID] = sp

	metrics.UpdateStoreSponsorships(int(s.total.Load()))
	return nil
}

// Get returns the sponsorship with the given id.
func (s *MemStore) Get(_ context.Context, id string) (model.Sponsorship, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sp, ok := sh.items[id]
	if !ok {
		return model.Sponsorship{}, ErrNotFound
	}
	return sp, nil
}

// ListByEvent returns every sponsorship of one event.
func (s *MemStore) ListByEvent(ctx context.Context, eventID string) ([]model.Sponsorship, error) {
	return s.list(ctx, func(sp model.Sponsorship) bool {
		return sp.EventID == eventID
	})
}

// ListByLaboratory returns one laboratory's sponsorships for an event.
func (s *MemStore) ListByLaboratory(ctx context.Context, eventID, laboratoryID string) ([]model.Sponsorship, error) {
	return s.list(ctx, func(sp model.Sponsorship) bool {
		return sp.EventID == eventID && sp.LaboratoryID == laboratoryID
	})
}

// ListByStatus returns an event's sponsorships in the given status.
func (s *MemStore) ListByStatus(ctx context.Context, eventID string, status model.Status) ([]model.Sponsorship, error) {
	return s.list(ctx, func(sp model.Sponsorship) bool {
		return sp.EventID == eventID && sp.Status == status
	})
}

func (s *MemStore) list(_ context.Context, keep func(model.Sponsorship) bool) ([]model.Sponsorship, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var out []model.Sponsorship
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, sp := range sh.items {
			if keep(sp) {
				out = append(out, sp)
			}
		}
		sh.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Override applies a human decision to a sponsorship.
func (s *MemStore) Override(_ context.Context, id string, status model.Status, actor string) (model.Sponsorship, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sp, ok := sh.items[id]
	if !ok {
		return model.Sponsorship{}, ErrNotFound
	}
	sp.Status = status
	sp.OverriddenBy = actor
	sp.DecidedAt = s.now()
	sh.items[id] = sp
	return sp, nil
}

// Stats summarizes one event's sponsorships.
func (s *MemStore) Stats(ctx context.Context, eventID string) (model.DashboardStats, error) {
	sponsorships, err := s.ListByEvent(ctx, eventID)
	if err != nil {
		return model.DashboardStats{}, err
	}

	var stats model.DashboardStats
	var scoreSum int
	for _, sp := range sponsorships {
		stats.TotalDeclared++
		scoreSum += sp.Details.OverallScore
		switch sp.Status {
		case model.StatusValidated:
			stats.Validated++
		case model.StatusRejected:
			stats.Rejected++
		default:
			stats.Pending++
		}
	}
	if stats.TotalDeclared > 0 {
		stats.AverageScore = float64(scoreSum) / float64(stats.TotalDeclared)
		stats.ValidationRate = float64(stats.Validated) / float64(stats.TotalDeclared)
	}
	return stats, nil
}

// Count returns the number of sponsorships tracked across all events.
func (s *MemStore) Count(_ context.Context) int {
	return int(s.total.Load())
}
