package config

import (
	"context"
	"sync/atomic"

	"github.com/knadh/koanf/providers/file"

	"github.com/veriflab/matchengine/pkg/logger"
	"github.com/veriflab/matchengine/pkg/metrics"
)

// Provider holds the current scoring configuration behind an atomic
// pointer. Updates swap the whole snapshot, so an in-flight batch never
// observes a torn mix of old and new thresholds. Invalid updates are
// rejected and the prior snapshot stays active.
type Provider struct {
	current atomic.Pointer[Scoring]
}

// NewProvider creates a Provider seeded with s. The seed itself must be
// valid.
func NewProvider(s Scoring) (*Provider, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p := &Provider{}
	p.current.Store(&s)
	return p, nil
}

// Current returns the active scoring configuration snapshot.
func (p *Provider) Current() Scoring {
	return *p.current.Load()
}

// Update validates s and atomically swaps it in. On validation failure
// the previous configuration remains active and the error is returned.
func (p *Provider) Update(s Scoring) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.current.Store(&s)
	return nil
}

// WatchFile re-reads the scoring section whenever path changes and
// applies it through Update. Watching stops when ctx is done. Reload
// failures are logged and counted but never disturb the active
// configuration.
func (p *Provider) WatchFile(ctx context.Context, path string, log logger.Logger) error {
	f := file.Provider(path)
	err := f.Watch(func(_ interface{}, watchErr error) {
		if watchErr != nil {
			metrics.RecordConfigReloadError()
			log.Warn(ctx, "config watch error", logger.Error(watchErr))
			return
		}
		s, loadErr := LoadScoringFile(ctx, path)
		if loadErr != nil {
			metrics.RecordConfigReloadError()
			log.Warn(ctx, "config reload failed", logger.String("path", path), logger.Error(loadErr))
			return
		}
		if updErr := p.Update(s); updErr != nil {
			metrics.RecordConfigReloadError()
			log.Warn(ctx, "config reload rejected", logger.String("path", path), logger.Error(updErr))
			return
		}
		metrics.RecordConfigReload()
		log.Info(ctx, "scoring config reloaded",
			logger.Int("auto_validation_threshold", s.AutoValidationThreshold),
			logger.Int("warning_threshold", s.WarningThreshold),
			logger.Int("reject_threshold", s.RejectThreshold),
		)
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = f.Unwatch()
	}()
	return nil
}
