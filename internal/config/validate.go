package config

import (
	"errors"
	"fmt"
	"time"

	"congress-trade-lab/internal/reference"
)

// ErrMissingCredential is returned when no live source has its credential.
var ErrMissingCredential = errors.New("missing credential: no live source is usable")

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Run.Timezone); err != nil {
		return fmt.Errorf("run.timezone %q is invalid: %w", c.Run.Timezone, err)
	}
	if c.Run.WindowDays <= 0 {
		return fmt.Errorf("run.window_days must be positive")
	}
	if c.Run.TradeLimit <= 0 {
		return fmt.Errorf("run.trade_limit must be positive")
	}
	if c.Run.MinRecords <= 0 {
		return fmt.Errorf("run.min_records must be positive")
	}
	if _, err := reference.ParseMatchMode(c.Run.Matching); err != nil {
		return fmt.Errorf("run.matching: %w", err)
	}

	if len(c.Sources.Tiers) == 0 {
		return fmt.Errorf("sources.tiers is required")
	}
	names := make(map[string]struct{})
	for i, tier := range c.Sources.Tiers {
		path := fmt.Sprintf("sources.tiers[%d]", i)
		if tier.Name == "" {
			return fmt.Errorf("%s.name is required", path)
		}
		if len(tier.Sources) == 0 {
			return fmt.Errorf("%s.sources is required", path)
		}
		for j, s := range tier.Sources {
			if err := s.validate(fmt.Sprintf("%s.sources[%d]", path, j)); err != nil {
				return err
			}
			if _, dup := names[s.Name]; dup {
				return fmt.Errorf("%s.sources[%d].name %q is not unique", path, j, s.Name)
			}
			names[s.Name] = struct{}{}
		}
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Output.FileName == "" {
		return fmt.Errorf("output.file_name is required")
	}
	if c.Cache.RedisDB < 0 {
		return fmt.Errorf("cache.redis_db cannot be negative")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

func (s SourceConfig) validate(path string) error {
	if s.Name == "" {
		return fmt.Errorf("%s.name is required", path)
	}
	spec, ok := s.ResolvedSpec()
	if !ok {
		return fmt.Errorf("%s.spec %q is not a built-in spec", path, s.Spec)
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	switch s.Kind {
	case SourceKindHTTP:
		if s.URL == "" {
			return fmt.Errorf("%s.url is required", path)
		}
		if s.CredentialEnv != "" && s.CredentialParam == "" && s.CredentialHeader == "" {
			return fmt.Errorf("%s: credential_env needs credential_param or credential_header", path)
		}
	case SourceKindFile:
		if s.Path == "" {
			return fmt.Errorf("%s.path is required", path)
		}
	default:
		return fmt.Errorf("%s.kind must be http or file, got %q", path, s.Kind)
	}
	if s.Timeout < 0 || s.MinDelay < 0 || s.CacheTTL < 0 {
		return fmt.Errorf("%s: durations cannot be negative", path)
	}
	if s.MaxPages < 0 || s.MaxRetries < 0 {
		return fmt.Errorf("%s: max_pages and max_retries cannot be negative", path)
	}
	return nil
}

// SkippedSource is a live source dropped for lack of its credential.
type SkippedSource struct {
	Tier   string
	Source string
	Env    string
}

// UsableTiers drops live sources whose credential variable is unset and tiers
// left empty. It fails with ErrMissingCredential when no live source remains.
func (c *Config) UsableTiers(lookup func(string) (string, bool)) ([]TierConfig, []SkippedSource, error) {
	var (
		tiers   []TierConfig
		skipped []SkippedSource
		live    int
	)
	for _, tier := range c.Sources.Tiers {
		kept := TierConfig{Name: tier.Name}
		for _, s := range tier.Sources {
			if s.IsLive() && s.CredentialEnv != "" {
				if v, ok := lookup(s.CredentialEnv); !ok || v == "" {
					skipped = append(skipped, SkippedSource{Tier: tier.Name, Source: s.Name, Env: s.CredentialEnv})
					continue
				}
			}
			if s.IsLive() {
				live++
			}
			kept.Sources = append(kept.Sources, s)
		}
		if len(kept.Sources) > 0 {
			tiers = append(tiers, kept)
		}
	}

	hasLive := false
	for _, tier := range c.Sources.Tiers {
		for _, s := range tier.Sources {
			if s.IsLive() {
				hasLive = true
			}
		}
	}
	if hasLive && live == 0 {
		return nil, skipped, ErrMissingCredential
	}
	return tiers, skipped, nil
}
