// Package decide combines per-field scores into an overall score and
// classifies it against the configured thresholds.
package decide

import (
	"fmt"
	"math"
	"strings"

	"github.com/veriflab/matchengine/internal/config"
	"github.com/veriflab/matchengine/internal/domain/model"
)

// Field weights for the overall score. Fixed by product decision; only
// the thresholds are operator-configurable.
const (
	weightName         = 0.4
	weightDateOfBirth  = 0.3
	weightIdentityCard = 0.3
)

// OverallScore computes the weighted combination of the field scores,
// rounded to the nearest integer. The candidate resolver uses the same
// formula for provisional ranking so both stages agree on ordering.
func OverallScore(s model.FieldScores) int {
	v := weightName*float64(s.Name) +
		weightDateOfBirth*float64(s.DateOfBirth) +
		weightIdentityCard*float64(s.IdentityCard)
	return int(math.Round(v))
}

// Decide scores and classifies a resolved candidate. The configuration
// is re-validated on every call: a violating threshold ordering must
// never classify anything, so it fails the call instead.
func Decide(c model.MatchCandidate, cfg config.Scoring) (model.MatchDetails, model.Decision, error) {
	if err := cfg.Validate(); err != nil {
		return model.MatchDetails{}, "", err
	}

	overall := OverallScore(c.Scores)

	var decision model.Decision
	switch {
	case overall >= cfg.AutoValidationThreshold:
		if cfg.AutoValidationEnabled {
			decision = model.DecisionAutoValidated
		} else {
			decision = model.DecisionNeedsReview
		}
	case overall < cfg.RejectThreshold:
		decision = model.DecisionAutoRejected
	default:
		// The band between reject and warning still needs a human;
		// only scores strictly below the reject threshold auto-reject.
		decision = model.DecisionNeedsReview
	}

	details := model.MatchDetails{
		NameScore:         c.Scores.Name,
		DateOfBirthScore:  c.Scores.DateOfBirth,
		IdentityCardScore: c.Scores.IdentityCard,
		OverallScore:      overall,
		Explanation:       explain(c, overall, decision),
	}
	return details, decision, nil
}

// explain renders a short human-readable summary naming which fields
// matched and which band the overall score reached.
func explain(c model.MatchCandidate, overall int, decision model.Decision) string {
	if c.Official == nil {
		return fmt.Sprintf("no plausible official match found; overall score %d, %s", overall, band(decision))
	}
	parts := []string{
		fieldSummary("name", c.Scores.Name),
		fieldSummary("date of birth", c.Scores.DateOfBirth),
		fieldSummary("identity card", c.Scores.IdentityCard),
	}
	s := fmt.Sprintf("%s; overall score %d, %s", strings.Join(parts, ", "), overall, band(decision))
	if c.Partial {
		s += " (partial: resolution hit the processing deadline)"
	}
	return s
}

func fieldSummary(field string, score int) string {
	switch {
	case score == 100:
		return field + " matched"
	case score == 0:
		return field + " mismatched"
	default:
		return fmt.Sprintf("%s close (%d)", field, score)
	}
}

func band(d model.Decision) string {
	switch d {
	case model.DecisionAutoValidated:
		return "auto-validation band"
	case model.DecisionAutoRejected:
		return "rejection band"
	default:
		return "manual review band"
	}
}
