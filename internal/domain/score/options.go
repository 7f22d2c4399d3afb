// Package score computes per-field similarity scores.
package score

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithFuzzyMatching toggles fuzzy comparison. When disabled, name and
// identity-card scores degrade to exact-match-only.
func WithFuzzyMatching(enabled bool) Option {
	return func(s *Scorer) {
		s.fuzzy = enabled
	}
}
