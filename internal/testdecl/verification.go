package testdecl

import (
	"context"
	"fmt"

	"github.com/veriflab/matchengine/pkg/logger"
)

// verifyResults checks the engine's decisions against the outcomes the
// generator expected. Noise classes marked "any" only count toward
// totals; deterministic classes must land in their band.
func verifyResults(ctx context.Context, declarations []Declaration, sponsorships []Sponsorship) error {
	if len(sponsorships) < len(declarations) {
		return fmt.Errorf("expected at least %d sponsorships, got %d", len(declarations), len(sponsorships))
	}

	decisions := make(map[string]int)
	for _, s := range sponsorships {
		decisions[s.Decision]++
	}

	expected := make(map[string]int)
	for _, d := range declarations {
		expected[d.Expected]++
	}

	logger.Get().Info(ctx, "decision distribution",
		logger.Int("autoValidated", decisions[ExpectValidated]),
		logger.Int("needsReview", decisions[ExpectReview]),
		logger.Int("autoRejected", decisions[ExpectRejected]),
		logger.Int("expectedValidated", expected[ExpectValidated]),
		logger.Int("expectedRejected", expected[ExpectRejected]),
		logger.Int("flexible", expected[ExpectAny]))

	// Every declaration the generator marked deterministic constrains
	// the matching decision counts: clean rows can only auto-validate,
	// fabricated people can only auto-reject. Flexible rows may fall in
	// any band, so the checks are inequalities in both directions.
	if decisions[ExpectValidated] < expected[ExpectValidated] {
		return fmt.Errorf("expected at least %d auto-validated decisions, got %d",
			expected[ExpectValidated], decisions[ExpectValidated])
	}
	if decisions[ExpectRejected] < expected[ExpectRejected] {
		return fmt.Errorf("expected at least %d auto-rejected decisions, got %d",
			expected[ExpectRejected], decisions[ExpectRejected])
	}
	maxValidated := expected[ExpectValidated] + expected[ExpectAny]
	if decisions[ExpectValidated] > maxValidated {
		return fmt.Errorf("expected at most %d auto-validated decisions, got %d",
			maxValidated, decisions[ExpectValidated])
	}

	logger.Get().Info(ctx, "verification passed")
	return nil
}
