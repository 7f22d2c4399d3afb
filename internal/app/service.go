// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	declqueue "github.com/veriflab/matchengine/internal/adapters/mq/queue"
	workerpool "github.com/veriflab/matchengine/internal/adapters/mq/worker"
	repository "github.com/veriflab/matchengine/internal/adapters/repository"
	"github.com/veriflab/matchengine/internal/config"
	"github.com/veriflab/matchengine/internal/domain/conflict"
	"github.com/veriflab/matchengine/internal/domain/decide"
	"github.com/veriflab/matchengine/internal/domain/dedupe"
	"github.com/veriflab/matchengine/internal/domain/model"
	"github.com/veriflab/matchengine/internal/domain/resolve"
	"github.com/veriflab/matchengine/pkg/logger"
	"github.com/veriflab/matchengine/pkg/metrics"
)

// sponsorshipNamespace makes sponsorship ids a deterministic function of
// the declaration id, so reprocessing a declaration lands on the same
// store record instead of creating a second one.
var sponsorshipNamespace = uuid.MustParse("8f1e6f7e-0c7b-4b6a-9a6e-1d2f3a4b5c6d")

// matchPipeline adapts the resolve and decide stages to the worker's
// Matcher interface. Each declaration runs against one immutable
// snapshot of the scoring configuration.
type matchPipeline struct {
	provider *config.Provider
	now      func() time.Time
}

func (p *matchPipeline) Match(ctx context.Context, job workerpool.Job) (model.Sponsorship, error) {
	cfg := p.provider.Current()

	start := p.now()
	resolver := resolve.New(cfg)
	idx := job.Index
	if idx == nil {
		idx = resolver.BuildIndex(nil)
	}
	candidate := resolver.Resolve(ctx, job.Declaration.Participant, idx)
	metrics.RecordResolutionLatency(float64(time.Since(start).Milliseconds()))

	details, decision, err := decide.Decide(candidate, cfg)
	if err != nil {
		return model.Sponsorship{}, err
	}

	s := model.Sponsorship{
		ID:           uuid.NewSHA1(sponsorshipNamespace, []byte(job.Declaration.DeclarationID)).String(),
		EventID:      job.Declaration.EventID,
		LaboratoryID: job.Declaration.LaboratoryID,
		Participant:  job.Declaration.Participant,
		Status:       model.StatusForDecision(decision),
		Decision:     decision,
		Details:      details,
		Matched:      candidate.Official,
		Partial:      candidate.Partial,
		CreatedAt:    job.Declaration.TS,
		DecidedAt:    p.now(),
	}
	return s, nil
}

// Service implements the API dependencies for the matching engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	declQueue  declqueue.Queue
	detector   *conflict.Detector
	workerPool *workerpool.Pool
	provider   *config.Provider

	// Per-event official rosters, registered through imports.
	rosterMu sync.RWMutex
	rosters  map[string]*resolve.RosterIndex

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	shardCount   int
	maxListLimit int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the declaration queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of sponsorship store shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithMaxListLimit caps the number of sponsorships a single list
// query returns.
func WithMaxListLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxListLimit = limit
		}
	}
}

// WithScoringProvider sets the hot-reloadable scoring configuration
// source shared with the config watcher and the API.
func WithScoringProvider(p *config.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    50000,
		dedupeSize:   200000,
		shardCount:   8,
		maxListLimit: 500,
		rosters:      make(map[string]*resolve.RosterIndex),
		stopCh:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.provider == nil {
		p, err := config.NewProvider(config.DefaultScoring())
		if err != nil {
			return err
		}
		s.provider = p
	}

	s.logger.Info(ctx, "starting matching engine service...")

	s.store = repository.NewMemStore(
		repository.WithShardCount(s.shardCount),
	)
	s.detector = conflict.NewDetector(s.store)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.declQueue = declqueue.NewInMemoryQueue(
		declqueue.WithCapacity(s.queueSize),
	)

	pipeline := &matchPipeline{provider: s.provider, now: time.Now}
	s.workerPool = workerpool.NewPool(s.workerCount, s.declQueue, pipeline, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "matching engine service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("storeShards", s.shardCount),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping matching engine service...")

	// The pool closes the queue first so queued declarations drain.
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "matching engine service stopped")
}

// SeenAndRecord atomically checks if a declaration id was seen and
// records it if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordDeclarationDuplicate()
	}
	return seen
}

// Unrecord removes a declaration id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a declaration for asynchronous resolution. The
// declaration carries its event's roster index so a concurrent roster
// re-import never changes a queued job.
func (s *Service) Enqueue(ctx context.Context, d model.Declaration) bool {
	s.rosterMu.RLock()
	idx := s.rosters[d.EventID]
	s.rosterMu.RUnlock()

	if idx == nil {
		s.logger.Debug(ctx, "no roster registered for event",
			logger.String("eventID", d.EventID),
			logger.String("declarationID", d.DeclarationID),
		)
	}
	return s.declQueue.Enqueue(ctx, declqueue.Job{Declaration: d, Index: idx})
}

// RegisterRoster installs an event's official participant roster and
// returns the number of indexed entries. Re-importing replaces the
// roster for new declarations only.
func (s *Service) RegisterRoster(ctx context.Context, eventID string, roster []model.Participant) int {
	idx := resolve.New(s.provider.Current()).BuildIndex(roster)

	s.rosterMu.Lock()
	s.rosters[eventID] = idx
	s.rosterMu.Unlock()

	s.logger.Info(ctx, "roster registered",
		logger.String("eventID", eventID),
		logger.Int("officials", idx.Len()),
	)
	return idx.Len()
}

// ListSponsorships returns an event's sponsorships with optional
// laboratory and status filters. Results are capped at the configured
// list limit.
func (s *Service) ListSponsorships(ctx context.Context, eventID, laboratoryID string, status model.Status) ([]model.Sponsorship, error) {
	var (
		sponsorships []model.Sponsorship
		err          error
	)
	switch {
	case laboratoryID != "":
		sponsorships, err = s.store.ListByLaboratory(ctx, eventID, laboratoryID)
	case status != "":
		sponsorships, err = s.store.ListByStatus(ctx, eventID, status)
	default:
		sponsorships, err = s.store.ListByEvent(ctx, eventID)
	}
	if err != nil {
		return nil, err
	}

	if laboratoryID != "" && status != "" {
		filtered := sponsorships[:0]
		for _, sp := range sponsorships {
			if sp.Status == status {
				filtered = append(filtered, sp)
			}
		}
		sponsorships = filtered
	}

	if len(sponsorships) > s.maxListLimit {
		sponsorships = sponsorships[:s.maxListLimit]
	}
	return sponsorships, nil
}

// GetSponsorship returns one sponsorship by id.
func (s *Service) GetSponsorship(ctx context.Context, id string) (model.Sponsorship, error) {
	return s.store.Get(ctx, id)
}

// OverrideSponsorship applies a human validate/reject decision.
func (s *Service) OverrideSponsorship(ctx context.Context, id string, status model.Status, actor string) (model.Sponsorship, error) {
	sp, err := s.store.Override(ctx, id, status, actor)
	if err != nil {
		return model.Sponsorship{}, err
	}
	s.logger.Info(ctx, "sponsorship overridden",
		logger.String("sponsorshipID", id),
		logger.String("status", string(status)),
		logger.String("actor", actor),
	)
	return sp, nil
}

// Conflicts returns competing claims on official participants of one event.
func (s *Service) Conflicts(ctx context.Context, eventID string) ([]model.Conflict, error) {
	conflicts, err := s.detector.Detect(ctx, eventID)
	if err != nil {
		return nil, err
	}
	metrics.UpdateConflictsDetected(len(conflicts))
	return conflicts, nil
}

// ResolveConflict applies a human conflict decision.
func (s *Service) ResolveConflict(ctx context.Context, eventID, officialID, winningLaboratoryID, actor string) error {
	return s.detector.Resolve(ctx, eventID, officialID, winningLaboratoryID, actor)
}

// ScoringConfig returns the current scoring configuration snapshot.
func (s *Service) ScoringConfig(_ context.Context) config.Scoring {
	return s.provider.Current()
}

// UpdateScoringConfig validates and applies a new scoring configuration.
// Declarations already queued keep the snapshot they were resolved with.
func (s *Service) UpdateScoringConfig(ctx context.Context, cfg config.Scoring) error {
	if err := s.provider.Update(cfg); err != nil {
		return err
	}
	s.logger.Info(ctx, "scoring configuration updated",
		logger.Int("autoValidation", cfg.AutoValidationThreshold),
		logger.Int("warning", cfg.WarningThreshold),
		logger.Int("reject", cfg.RejectThreshold),
	)
	return nil
}

// EventStats summarizes one event's sponsorships for dashboards.
func (s *Service) EventStats(ctx context.Context, eventID string) (model.DashboardStats, error) {
	return s.store.Stats(ctx, eventID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.declQueue.Len(ctx)
		total := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalSponsorships"] = total

		s.rosterMu.RLock()
		stats["registeredRosters"] = len(s.rosters)
		s.rosterMu.RUnlock()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreSponsorships(total)
		metrics.UpdateWorkerActiveCount(s.workerPool.Size())
	}
	return stats
}
