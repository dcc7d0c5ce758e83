package config

import (
	"time"

	"congress-trade-lab/internal/ingestion"
)

// Default values for optional configuration fields.
const (
	DefaultTimezone   = "Asia/Seoul"
	DefaultWindowDays = 365
	DefaultTradeLimit = 500
	DefaultMinRecords = 1
	DefaultMatching   = "fuzzy"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxPages   = 1
	DefaultMaxRetries = 2
	DefaultUserAgent  = "CongressTracker/1.0"
	DefaultOutputDir  = "data"
	DefaultFileName   = "congress_trades.json"
	DefaultMetricsJob = "congress_trades"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
	DefaultFallback   = "data/fallback_trades.json"

	FMPAPIKeyEnv      = "FMP_API_KEY"
	QuiverAPITokenEnv = "QUIVER_API_TOKEN"
)

// Default upstream endpoints.
const (
	FMPHouseURL           = "https://financialmodelingprep.com/stable/house-trades"
	FMPSenateURL          = "https://financialmodelingprep.com/stable/senate-trades"
	QuiverURL             = "https://api.quiverquant.com/beta/live/congresstrading"
	HouseStockWatcherURL  = "https://house-stock-watcher-data.s3-us-west-2.amazonaws.com/data/all_transactions.json"
	SenateStockWatcherURL = "https://senate-stock-watcher-data.s3-us-west-2.amazonaws.com/aggregate/all_transactions.json"
)

// Default returns the built-in configuration: FMP first, then Quiver, then the
// public stock-watcher datasets, then the static fallback file.
func Default() *Config {
	c := &Config{
		Sources: SourcesConfig{Tiers: DefaultTiers()},
	}
	c.ApplyDefaults()
	return c
}

// DefaultTiers returns the built-in source tiers.
func DefaultTiers() []TierConfig {
	return []TierConfig{
		{
			Name: "fmp",
			Sources: []SourceConfig{
				{Kind: SourceKindHTTP, Spec: ingestion.SpecFMPHouse, URL: FMPHouseURL, CredentialEnv: FMPAPIKeyEnv, CredentialParam: "apikey"},
				{Kind: SourceKindHTTP, Spec: ingestion.SpecFMPSenate, URL: FMPSenateURL, CredentialEnv: FMPAPIKeyEnv, CredentialParam: "apikey"},
			},
		},
		{
			Name: "quiver",
			Sources: []SourceConfig{
				{Kind: SourceKindHTTP, Spec: ingestion.SpecQuiver, URL: QuiverURL, CredentialEnv: QuiverAPITokenEnv, CredentialHeader: "Authorization", CredentialPrefix: "Bearer "},
			},
		},
		{
			Name: "stock-watcher",
			Sources: []SourceConfig{
				{Kind: SourceKindHTTP, Spec: ingestion.SpecHouseStockWatcher, URL: HouseStockWatcherURL},
				{Kind: SourceKindHTTP, Spec: ingestion.SpecSenateStockWatcher, URL: SenateStockWatcherURL},
			},
		},
		{
			Name: "static",
			Sources: []SourceConfig{
				{Name: "static-fallback", Kind: SourceKindFile, Spec: ingestion.SpecArtifact, Path: DefaultFallback},
			},
		},
	}
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	// Run defaults
	if c.Run.Timezone == "" {
		c.Run.Timezone = DefaultTimezone
	}
	if c.Run.WindowDays == 0 {
		c.Run.WindowDays = DefaultWindowDays
	}
	if c.Run.TradeLimit == 0 {
		c.Run.TradeLimit = DefaultTradeLimit
	}
	if c.Run.MinRecords == 0 {
		c.Run.MinRecords = DefaultMinRecords
	}
	if c.Run.Matching == "" {
		c.Run.Matching = DefaultMatching
	}
	if c.Run.StripParty == nil {
		strip := true
		c.Run.StripParty = &strip
	}

	// Source defaults
	if len(c.Sources.Tiers) == 0 {
		c.Sources.Tiers = DefaultTiers()
	}
	for i := range c.Sources.Tiers {
		applySourceDefaults(c.Sources.Tiers[i].Sources)
	}

	// Output defaults
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.FileName == "" {
		c.Output.FileName = DefaultFileName
	}

	// Metrics defaults
	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultMetricsJob
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applySourceDefaults(sources []SourceConfig) {
	for i := range sources {
		s := &sources[i]
		if s.Kind == "" {
			s.Kind = SourceKindHTTP
			if s.Path != "" && s.URL == "" {
				s.Kind = SourceKindFile
			}
		}
		if s.Name == "" {
			s.Name = s.Spec
			if s.Name == "" && s.CustomSpec != nil {
				s.Name = s.CustomSpec.Name
			}
		}
		if s.Timeout == 0 {
			s.Timeout = DefaultTimeout
		}
		if s.MaxPages == 0 {
			s.MaxPages = DefaultMaxPages
		}
		if s.MaxRetries == 0 {
			s.MaxRetries = DefaultMaxRetries
		}
		if s.UserAgent == "" {
			s.UserAgent = DefaultUserAgent
		}
	}
}
