// Package resolve pairs declared participants with official records.
package resolve

import "time"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithCheckpointInterval sets how many roster entries are scanned
// between soft-deadline checks.
func WithCheckpointInterval(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.checkpointEvery = n
		}
	}
}

// WithClock overrides the time source used for the soft deadline.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}
