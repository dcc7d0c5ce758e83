package orchestrator

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"congress-trade-lab/internal/config"
	"congress-trade-lab/internal/conflict"
	"congress-trade-lab/internal/fetch"
	"congress-trade-lab/internal/ingestion"
	"congress-trade-lab/internal/pipeline"
	"congress-trade-lab/internal/reference"
)

// SourceOptions controls how configured sources are instantiated.
type SourceOptions struct {
	LookupEnv  func(string) (string, bool) // defaults to os.LookupEnv
	Cache      fetch.Cache                 // used by sources with a cache_ttl
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// BuildTiers turns the configured tiers into pipeline tiers. Live sources
// without their credential are dropped with a warning; when none remain the
// error is config.ErrMissingCredential and nothing has been fetched.
func BuildTiers(cfg *config.Config, ref *reference.Store, opts SourceOptions) ([]pipeline.Tier, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	usable, skipped, err := cfg.UsableTiers(lookup)
	for _, s := range skipped {
		opts.Logger.Warn().
			Str("tier", s.Tier).
			Str("source", s.Source).
			Str("env", s.Env).
			Msg("credential not set, source disabled")
	}
	if err != nil {
		return nil, err
	}

	mode, err := reference.ParseMatchMode(cfg.Run.Matching)
	if err != nil {
		return nil, err
	}
	detector := conflict.NewDetector(ref, mode)

	tiers := make([]pipeline.Tier, 0, len(usable))
	for _, tc := range usable {
		tier := pipeline.Tier{Name: tc.Name}
		for _, sc := range tc.Sources {
			spec, ok := sc.ResolvedSpec()
			if !ok {
				return nil, fmt.Errorf("source %s: unknown spec %q", sc.Name, sc.Spec)
			}
			src, err := buildSource(sc, lookup, opts)
			if err != nil {
				return nil, err
			}
			tier.Sources = append(tier.Sources, pipeline.SourceBinding{
				Source:   src,
				Adapter:  ingestion.NewSpecAdapter(spec, ref, detector),
				Timeout:  sc.Timeout,
				MinDelay: sc.MinDelay,
				MaxPages: sc.MaxPages,
			})
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

func buildSource(sc config.SourceConfig, lookup func(string) (string, bool), opts SourceOptions) (ingestion.Source, error) {
	var src ingestion.Source

	switch sc.Kind {
	case config.SourceKindFile:
		src = fetch.NewFileSource(sc.Name, sc.Path)
	case config.SourceKindHTTP:
		httpOpts := []fetch.HTTPOption{
			fetch.WithUserAgent(sc.UserAgent),
			fetch.WithMaxRetries(sc.MaxRetries),
		}
		if opts.HTTPClient != nil {
			httpOpts = append(httpOpts, fetch.WithHTTPClient(opts.HTTPClient))
		}
		if sc.CredentialEnv != "" {
			cred, _ := lookup(sc.CredentialEnv)
			if sc.CredentialHeader != "" {
				httpOpts = append(httpOpts, fetch.WithHeader(sc.CredentialHeader, sc.CredentialPrefix+cred))
			} else {
				httpOpts = append(httpOpts, fetch.WithQueryParam(sc.CredentialParam, cred))
			}
		}
		src = fetch.NewHTTPSource(sc.Name, sc.URL, httpOpts...)
	default:
		return nil, fmt.Errorf("source %s: unknown kind %q", sc.Name, sc.Kind)
	}

	if sc.CacheTTL > 0 && opts.Cache != nil {
		src = fetch.NewCachedSource(src, opts.Cache, sc.CacheTTL)
	}
	return src, nil
}
