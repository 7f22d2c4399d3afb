// Package score computes per-field similarity scores between
// normalized declared and official values.
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/veriflab/matchengine/internal/domain/model"
	"github.com/veriflab/matchengine/internal/domain/normalize"
)

// maxScore is the upper bound of every field score.
const maxScore = 100

// Scorer computes field scores. Inputs must already be normalized; the
// scorer itself performs no I/O and no further canonicalization.
type Scorer struct {
	fuzzy bool
}

// New creates a Scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		fuzzy: true, // portal default
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Field dispatches to the strategy for kind.
func (s *Scorer) Field(kind normalize.FieldKind, declared, official string) int {
	switch kind {
	case normalize.FieldDateOfBirth:
		return s.DateOfBirth(declared, official)
	case normalize.FieldIdentityCard:
		return s.IdentityCard(declared, official)
	default:
		return s.Name(declared, official)
	}
}

// Name scores two normalized names with a token-set edit-distance
// similarity. The token sets are deduplicated and sorted before
// comparison, which makes the score symmetric and order-insensitive.
// Identical non-empty inputs score 100; empty-vs-nonempty scores 0.
// With fuzzy matching disabled the score degrades to exact-or-zero.
func (s *Scorer) Name(declared, official string) int {
	if declared == "" || official == "" {
		return 0
	}
	if declared == official {
		return maxScore
	}
	if !s.fuzzy {
		return 0
	}
	a := tokenSet(declared)
	b := tokenSet(official)
	return editSimilarity(a, b)
}

// DateOfBirth scores two canonical dates. A birth date is either right
// or wrong: exact match scores 100, anything else 0. Unparseable input
// reaches here as an empty string and scores 0.
func (s *Scorer) DateOfBirth(declared, official string) int {
	if declared == "" || official == "" {
		return 0
	}
	if declared == official {
		return maxScore
	}
	return 0
}

// IdentityCard scores two normalized card numbers. Exact match scores
// 100; with fuzzy matching enabled a partial edit-distance score
// tolerates single-character transcription errors, otherwise the score
// is exact-or-zero.
func (s *Scorer) IdentityCard(declared, official string) int {
	if declared == "" || official == "" {
		return 0
	}
	if declared == official {
		return maxScore
	}
	if !s.fuzzy {
		return 0
	}
	return editSimilarity(declared, official)
}

// All scores every field of a declared/official pair.
func (s *Scorer) All(declared, official NormalizedFields) model.FieldScores {
	return model.FieldScores{
		Name:         s.Name(declared.Name, official.Name),
		DateOfBirth:  s.DateOfBirth(declared.DateOfBirth, official.DateOfBirth),
		IdentityCard: s.IdentityCard(declared.IdentityCard, official.IdentityCard),
	}
}

// NormalizedFields carries a participant's comparable field values.
// LastName holds the normalized last name alone, for index keys.
type NormalizedFields struct {
	Name         string // normalized "first last"
	LastName     string
	DateOfBirth  string // canonical YYYY-MM-DD, empty when unparseable
	IdentityCard string
}

// Normalize derives comparable fields from a participant. A date that
// fails to parse yields an empty DateOfBirth so the field scores 0
// instead of failing the record.
func Normalize(n *normalize.Normalizer, p model.Participant) NormalizedFields {
	f := NormalizedFields{
		Name:         n.Name(p.FirstName + " " + p.LastName),
		LastName:     n.Name(p.LastName),
		IdentityCard: n.IdentityCard(p.IdentityCard),
	}
	if dob, err := n.DateOfBirth(p.DateOfBirth); err == nil {
		f.DateOfBirth = dob
	}
	return f
}

// tokenSet returns the unique tokens of a normalized string, sorted and
// rejoined. Sorting keeps the comparison symmetric.
func tokenSet(s string) string {
	fields := strings.Fields(s)
	seen := make(map[string]struct{}, len(fields))
	uniq := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		uniq = append(uniq, f)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, " ")
}

// editSimilarity maps Levenshtein distance onto [0,100].
func editSimilarity(a, b string) int {
	if a == b {
		return maxScore
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	sim := maxScore * (1 - float64(dist)/float64(longest))
	if sim < 0 {
		return 0
	}
	return int(math.Round(sim))
}
