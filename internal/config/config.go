// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - External errors must be wrapped via this package's error helpers.
// - Scoring configuration is hot-reloadable through Provider; the rest
//   of the configuration is fixed at startup.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Scoring bounds.
const (
	minThreshold = 0
	maxThreshold = 100
)

// Scoring is the matching engine's hot-reloadable configuration.
// The threshold ordering invariant is strict:
// reject_threshold < warning_threshold < auto_validation_threshold.
type Scoring struct {
	// AutoValidationThreshold: overall score at or above it is
	// auto-validated (when auto validation is enabled).
	AutoValidationThreshold int `koanf:"auto_validation_threshold"`

	// WarningThreshold: scores in [warning, autoValidation) need review.
	WarningThreshold int `koanf:"warning_threshold"`

	// RejectThreshold: scores strictly below it are auto-rejected.
	RejectThreshold int `koanf:"reject_threshold"`

	// AutoValidationEnabled gates the auto-validated outcome entirely.
	AutoValidationEnabled bool `koanf:"auto_validation_enabled"`

	// FuzzyMatchingEnabled gates approximate name/identity-card scoring.
	FuzzyMatchingEnabled bool `koanf:"fuzzy_matching_enabled"`

	// AccentInsensitive strips diacritics before name comparison.
	AccentInsensitive bool `koanf:"accent_insensitive"`

	// MaxProcessingTimeSec is the soft per-declaration resolution deadline.
	MaxProcessingTimeSec int `koanf:"max_processing_time_sec"`
}

// DefaultScoring returns the portal's default scoring configuration.
func DefaultScoring() Scoring {
	return Scoring{
		AutoValidationThreshold: 85,
		WarningThreshold:        60,
		RejectThreshold:         40,
		AutoValidationEnabled:   true,
		FuzzyMatchingEnabled:    true,
		AccentInsensitive:       true,
		MaxProcessingTimeSec:    30,
	}
}

// Validate checks ranges and the strict threshold ordering. A violating
// configuration must never be applied: classification would silently
// corrupt every decision.
func (s Scoring) Validate() error {
	for name, v := range map[string]int{
		"auto_validation_threshold": s.AutoValidationThreshold,
		"warning_threshold":         s.WarningThreshold,
		"reject_threshold":          s.RejectThreshold,
	} {
		if v < minThreshold || v > maxThreshold {
			return fmt.Errorf("%w: %s %d out of [0,100]", ErrInvalidConfig, name, v)
		}
	}
	if !(s.RejectThreshold < s.WarningThreshold && s.WarningThreshold < s.AutoValidationThreshold) {
		return fmt.Errorf("%w: thresholds must satisfy reject < warning < auto_validation (got %d/%d/%d)",
			ErrInvalidConfig, s.RejectThreshold, s.WarningThreshold, s.AutoValidationThreshold)
	}
	if s.MaxProcessingTimeSec <= 0 {
		return fmt.Errorf("%w: max_processing_time_sec must be positive", ErrInvalidConfig)
	}
	return nil
}

// MaxProcessingTime returns the soft deadline as a duration.
func (s Scoring) MaxProcessingTime() time.Duration {
	return time.Duration(s.MaxProcessingTimeSec) * time.Second
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DeclarationQueueSize bounds the in-memory declaration queue.
	DeclarationQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of resolution workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the declaration idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the sponsorship store.
	ShardCount int `koanf:"shard_count"`

	// MaxListLimit caps list query sizes on the API.
	MaxListLimit int `koanf:"max_list_limit"`

	// Scoring is the initial matching configuration; it may be replaced
	// at runtime through the Provider.
	Scoring Scoring `koanf:"scoring"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9090",
		DeclarationQueueSize: 50_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           200_000,
		ShardCount:           8,
		MaxListLimit:         500,
		Scoring:              DefaultScoring(),
	}
}
