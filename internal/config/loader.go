package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment overrides.
const envPrefix = "VERIFLAB_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if VERIFLAB_CONFIG is set
//  3. env (prefix VERIFLAB_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: VERIFLAB_ADDR, VERIFLAB_WORKER_COUNT, ...
	// Keys under the scoring section are addressed with a SCORING_
	// prefix, e.g. VERIFLAB_SCORING_REJECT_THRESHOLD.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if rest, ok := strings.CutPrefix(s, "scoring_"); ok {
			return "scoring." + rest
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadScoringFile reads only the scoring section from a YAML file.
// Used by the hot-reload watcher; validation is left to the Provider.
func LoadScoringFile(ctx context.Context, path string) (Scoring, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Scoring{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	s := DefaultScoring()
	if err := k.UnmarshalWithConf("scoring", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Scoring{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return s, nil
}
