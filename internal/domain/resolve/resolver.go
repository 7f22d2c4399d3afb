// Package resolve pairs declared participants with their best-matching
// official roster entry.
package resolve

import (
	"context"
	"time"

	"github.com/veriflab/matchengine/internal/config"
	"github.com/veriflab/matchengine/internal/domain/decide"
	"github.com/veriflab/matchengine/internal/domain/model"
	"github.com/veriflab/matchengine/internal/domain/normalize"
	"github.com/veriflab/matchengine/internal/domain/score"
)

// defaultCheckpointInterval is how many roster entries are scanned
// between deadline checks. The deadline is soft: a checkpoint abandons
// the scan but keeps the best candidate found so far.
const defaultCheckpointInterval = 64

// Resolver finds the best official match for one declared participant.
// A Resolver is built from one scoring-config snapshot; construct a new
// one per batch so hot reloads never tear an in-flight resolution.
type Resolver struct {
	norm            *normalize.Normalizer
	scorer          *score.Scorer
	cfg             config.Scoring
	checkpointEvery int
	now             func() time.Time
}

// New creates a Resolver bound to a scoring-config snapshot.
func New(cfg config.Scoring, opts ...Option) *Resolver {
	r := &Resolver{
		norm:            normalize.New(normalize.WithAccentInsensitive(cfg.AccentInsensitive)),
		scorer:          score.New(score.WithFuzzyMatching(cfg.FuzzyMatchingEnabled)),
		cfg:             cfg,
		checkpointEvery: defaultCheckpointInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildIndex builds the roster index with this resolver's normalizer so
// index keys and resolution keys agree.
func (r *Resolver) BuildIndex(roster []model.Participant) *RosterIndex {
	return newRosterIndex(r.norm, roster)
}

// Resolve pairs declared with zero or one roster entry.
//
// Order of attempts:
//  1. exact identity-card shortcut (highest confidence, skips the scan)
//  2. exact (lastName, dateOfBirth) shortcut
//  3. fuzzy scan over the whole roster, when fuzzy matching is enabled
//
// Malformed declared fields contribute a 0 score instead of failing the
// record; an empty roster yields an unmatched candidate.
func (r *Resolver) Resolve(ctx context.Context, declared model.Participant, idx *RosterIndex) model.MatchCandidate {
	unmatched := model.MatchCandidate{Declared: declared}
	if idx == nil || idx.Len() == 0 {
		return unmatched
	}

	df := score.Normalize(r.norm, declared)

	if df.IdentityCard != "" {
		if i, ok := idx.byCard[df.IdentityCard]; ok {
			entry := idx.entries[i]
			scores := r.scorer.All(df, entry.fields)
			scores.IdentityCard = 100 // exact by construction
			official := entry.participant
			return model.MatchCandidate{Declared: declared, Official: &official, Scores: scores}
		}
	}

	if key := nameDOBKey(df); key != "" {
		if i, ok := idx.byNameDOB[key]; ok {
			entry := idx.entries[i]
			scores := r.scorer.All(df, entry.fields)
			if decide.OverallScore(scores) >= r.cfg.RejectThreshold {
				official := entry.participant
				return model.MatchCandidate{Declared: declared, Official: &official, Scores: scores}
			}
		}
	}

	if !r.cfg.FuzzyMatchingEnabled {
		return unmatched
	}
	return r.scan(ctx, declared, df, idx)
}

// scan scores declared against every roster entry and keeps the best.
// Tie-break order: provisional overall, then identity-card score, then
// name score, then first-seen (stable by construction of the loop).
func (r *Resolver) scan(ctx context.Context, declared model.Participant, df score.NormalizedFields, idx *RosterIndex) model.MatchCandidate {
	deadline := r.now().Add(r.cfg.MaxProcessingTime())

	var (
		bestIdx    = -1
		bestScores model.FieldScores
		bestOverall int
		partial    bool
	)

	for i := range idx.entries {
		if i > 0 && i%r.checkpointEvery == 0 {
			if ctx.Err() != nil || r.now().After(deadline) {
				partial = true
				break
			}
		}

		scores := r.scorer.All(df, idx.entries[i].fields)
		overall := decide.OverallScore(scores)

		if bestIdx < 0 || better(overall, scores, bestOverall, bestScores) {
			bestIdx, bestScores, bestOverall = i, scores, overall
		}
	}

	if bestIdx < 0 || bestOverall < r.cfg.RejectThreshold {
		return model.MatchCandidate{Declared: declared, Partial: partial}
	}
	official := idx.entries[bestIdx].participant
	return model.MatchCandidate{Declared: declared, Official: &official, Scores: bestScores, Partial: partial}
}

// better reports whether the challenger strictly beats the incumbent.
// Strict comparisons keep first-seen order on full ties.
func better(overall int, scores model.FieldScores, bestOverall int, best model.FieldScores) bool {
	if overall != bestOverall {
		return overall > bestOverall
	}
	if scores.IdentityCard != best.IdentityCard {
		return scores.IdentityCard > best.IdentityCard
	}
	return scores.Name > best.Name
}
