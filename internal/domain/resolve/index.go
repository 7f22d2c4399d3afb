package resolve

import (
	"github.com/veriflab/matchengine/internal/domain/model"
	"github.com/veriflab/matchengine/internal/domain/normalize"
	"github.com/veriflab/matchengine/internal/domain/score"
)

// rosterEntry pairs an official participant with its precomputed
// normalized fields.
type rosterEntry struct {
	participant model.Participant
	fields      score.NormalizedFields
}

// RosterIndex holds one event's official roster with exact-match
// indexes keyed by normalized identity card and by normalized
// (lastName, dateOfBirth). Built once per batch, then shared read-only
// across concurrent resolutions.
type RosterIndex struct {
	entries   []rosterEntry
	byCard    map[string]int
	byNameDOB map[string]int
}

// newRosterIndex normalizes the roster and builds the lookup maps.
// First-seen entries win duplicate keys, keeping resolution stable.
func newRosterIndex(n *normalize.Normalizer, roster []model.Participant) *RosterIndex {
	ix := &RosterIndex{
		entries:   make([]rosterEntry, 0, len(roster)),
		byCard:    make(map[string]int, len(roster)),
		byNameDOB: make(map[string]int, len(roster)),
	}
	for _, p := range roster {
		fields := score.Normalize(n, p)
		i := len(ix.entries)
		ix.entries = append(ix.entries, rosterEntry{participant: p, fields: fields})

		if fields.IdentityCard != "" {
			if _, ok := ix.byCard[fields.IdentityCard]; !ok {
				ix.byCard[fields.IdentityCard] = i
			}
		}
		if key := nameDOBKey(fields); key != "" {
			if _, ok := ix.byNameDOB[key]; !ok {
				ix.byNameDOB[key] = i
			}
		}
	}
	return ix
}

// Len returns the roster size.
func (ix *RosterIndex) Len() int {
	return len(ix.entries)
}

// nameDOBKey builds the secondary index key; empty when either part is
// missing so absent data never collides.
func nameDOBKey(f score.NormalizedFields) string {
	if f.LastName == "" || f.DateOfBirth == "" {
		return ""
	}
	return f.LastName + "|" + f.DateOfBirth
}
