// Package config loads and validates the pipeline configuration.
package config

import (
	"time"

	"congress-trade-lab/internal/ingestion"
)

// Config is the root configuration.
type Config struct {
	Run       RunConfig       `yaml:"run"`
	Sources   SourcesConfig   `yaml:"sources"`
	Reference ReferenceConfig `yaml:"reference"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// RunConfig controls the window, thresholds and matching behavior of a run.
type RunConfig struct {
	Timezone   string `yaml:"timezone"`
	WindowDays int    `yaml:"window_days"`
	TradeLimit int    `yaml:"trade_limit"`
	MinRecords int    `yaml:"min_records"`
	Matching   string `yaml:"matching"` // fuzzy | strict
	// StripParty removes the party from politician_info in the artifact.
	StripParty *bool `yaml:"strip_party"`
}

// SourcesConfig lists source tiers in precedence order.
type SourcesConfig struct {
	Tiers []TierConfig `yaml:"tiers"`
}

// TierConfig is one fallback level.
type TierConfig struct {
	Name    string         `yaml:"name"`
	Sources []SourceConfig `yaml:"sources"`
}

// Source kinds.
const (
	SourceKindHTTP = "http"
	SourceKindFile = "file"
)

// SourceConfig describes one upstream and its fetch policy.
type SourceConfig struct {
	// Name identifies the source in logs and metrics. Defaults to the spec name.
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // http | file

	// Spec names a built-in SourceSpec. CustomSpec declares one inline instead.
	Spec       string                `yaml:"spec"`
	CustomSpec *ingestion.SourceSpec `yaml:"custom_spec"`

	URL  string `yaml:"url"`  // http: template, may contain {page}
	Path string `yaml:"path"` // file: JSON array on disk

	// CredentialEnv names the environment variable holding the API credential.
	// The value is sent as CredentialParam query parameter, or as CredentialHeader
	// (prefixed with CredentialPrefix) when a header is configured.
	CredentialEnv    string `yaml:"credential_env"`
	CredentialParam  string `yaml:"credential_param"`
	CredentialHeader string `yaml:"credential_header"`
	CredentialPrefix string `yaml:"credential_prefix"`

	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`
	MinDelay   time.Duration `yaml:"min_delay"`
	MaxPages   int           `yaml:"max_pages"`
	MaxRetries int           `yaml:"max_retries"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// IsLive reports whether the source fetches over the network.
func (s SourceConfig) IsLive() bool {
	return s.Kind == SourceKindHTTP
}

// ResolvedSpec returns the inline spec or the named built-in one.
func (s SourceConfig) ResolvedSpec() (ingestion.SourceSpec, bool) {
	if s.CustomSpec != nil {
		return *s.CustomSpec, true
	}
	return ingestion.BuiltinSpec(s.Spec)
}

// ReferenceConfig points at an optional reference override file.
type ReferenceConfig struct {
	File string `yaml:"file"`
}

// OutputConfig controls where run outputs go.
type OutputConfig struct {
	Dir      string   `yaml:"dir"`
	FileName string   `yaml:"file_name"`
	Markdown string   `yaml:"markdown"` // report file name, empty disables
	CSV      string   `yaml:"csv"`      // trades export file name, empty disables
	S3       S3Config `yaml:"s3"`
}

// S3Config mirrors publish.S3Config. An empty bucket disables S3 upload.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	Prefix       string `yaml:"prefix"`
	CacheControl string `yaml:"cache_control"`
}

// StorageConfig holds optional database DSNs.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// CacheConfig enables a Redis page cache when Addr is set.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// MetricsConfig enables pushing run metrics when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
	Namespace      string `yaml:"namespace"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}
