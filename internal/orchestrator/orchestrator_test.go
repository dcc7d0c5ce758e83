package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congress-trade-lab/internal/config"
	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/ingestion"
	"congress-trade-lab/internal/observability"
	"congress-trade-lab/internal/pipeline"
	"congress-trade-lab/internal/publish"
	"congress-trade-lab/internal/reference"
	"congress-trade-lab/internal/reporting"
	"congress-trade-lab/internal/storage"
	"congress-trade-lab/internal/storage/memory"
)

const fixtureJSON = `[
  {"rep": "Hon. Michael McCaul", "ticker": "NVDA", "asset": "NVIDIA Corp", "type": "buy",
   "amount": "$1,001 - $15,000", "date": "2025-01-20", "disclosure_date": "2025-01-28", "chamber": "house", "owner": "Spouse"},
  {"rep": "Nancy Pelosi", "party": "D", "ticker": "AAPL", "asset": "Apple Inc.", "type": "sell",
   "amount": "$15,001 - $50,000", "date": "2025-01-10", "disclosure_date": "2025-01-25", "chamber": "house", "owner": "Spouse"},
  {"rep": "Hon. Michael McCaul", "ticker": "NVDA", "asset": "NVIDIA Corp", "type": "buy",
   "amount": "$1,001 - $15,000", "date": "2025-01-20", "disclosure_date": "2025-01-28", "chamber": "house", "owner": "Spouse"},
  {"rep": "Nancy Pelosi", "party": "D", "ticker": "MSFT", "asset": "Microsoft", "type": "buy",
   "amount": "$1,001 - $15,000", "date": "2023-06-01", "disclosure_date": "2023-06-20", "chamber": "house", "owner": "Joint"}
]`

var fixedNow = time.Date(2025, 2, 1, 0, 30, 0, 0, time.UTC)

type harness struct {
	cfg     *config.Config
	outDir  string
	runs    *memory.RunStore
	trades  *memory.TradeStore
	metrics *observability.Metrics
}

func newHarness(t *testing.T, fixturePath string) (*harness, *Orchestrator) {
	t.Helper()

	outDir := t.TempDir()
	cfg := &config.Config{
		Sources: config.SourcesConfig{Tiers: []config.TierConfig{{
			Name: "static",
			Sources: []config.SourceConfig{
				{Name: "fixture", Kind: config.SourceKindFile, Spec: ingestion.SpecArtifact, Path: fixturePath},
			},
		}}},
		Output: config.OutputConfig{Dir: outDir, Markdown: "report.md", CSV: "trades.csv"},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	ref := reference.Default()
	tiers, err := BuildTiers(cfg, ref, SourceOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)

	h := &harness{
		cfg:     cfg,
		outDir:  outDir,
		runs:    memory.NewRunStore(),
		trades:  memory.NewTradeStore(),
		metrics: observability.NewMetrics(""),
	}

	orch, err := New(Options{
		Config:    cfg,
		Tiers:     tiers,
		Reference: ref,
		Publisher: publish.NewFilePublisher(outDir),
		Stores:    storage.Stores{Runs: h.runs, Trades: h.trades},
		Metrics:   h.metrics,
		Logger:    zerolog.Nop(),
		Clock:     func() time.Time { return fixedNow },
		NewRunID:  func() string { return "run-1" },
	})
	require.NoError(t, err)
	return h, orch
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestOrchestrator_Run_Success(t *testing.T) {
	ctx := context.Background()
	h, orch := newHarness(t, writeFixture(t, fixtureJSON))

	result, err := orch.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, "static", result.Result.Tier)
	assert.Equal(t, 1, result.Result.Duplicates)
	assert.Equal(t, 1, result.Result.WindowedOut)
	assert.Len(t, result.Result.Trades, 2)

	// Artifact on disk matches the returned bytes and the schema.
	data, err := os.ReadFile(filepath.Join(h.outDir, config.DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, result.Artifact, data)
	require.NoError(t, reporting.ValidateArtifact(data))
	assert.Contains(t, string(data), `"updated_at": "2025-02-01 09:30:00 KST"`)

	for _, name := range []string{"report.md", "trades.csv"} {
		_, err := os.Stat(filepath.Join(h.outDir, name))
		assert.NoError(t, err, name)
	}
	assert.Len(t, result.Locations, 3)

	run, err := h.runs.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSucceeded, run.Status)
	assert.Equal(t, 2, run.TotalTrades)
	assert.Equal(t, 1, run.TotalBuy)
	assert.Equal(t, 1, run.TotalSell)
	assert.Equal(t, 2, run.TotalConflicts, "both trades fall in the filers' conflict sectors")
	assert.Equal(t, "2024-02-02", run.Cutoff)
	assert.Equal(t, data, run.Artifact)

	rows, err := h.trades.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "NVDA", rows[0].Trade.Ticker, "newest trade first")
	assert.Equal(t, 0, rows[0].Position)
	assert.NotEqual(t, rows[0].TradeID, rows[1].TradeID)

	assert.Equal(t, 1.0, counterValue(t, h.metrics.RunsTotal.WithLabelValues(observability.StatusSucceeded)))
	assert.Equal(t, 1.0, counterValue(t, h.metrics.ObjectsPublished.WithLabelValues(ObjectArtifact)))
	assert.Equal(t, 1.0, counterValue(t, h.metrics.TierSelected.WithLabelValues("static")))
}

func TestOrchestrator_Run_NoData(t *testing.T) {
	ctx := context.Background()
	h, orch := newHarness(t, filepath.Join(t.TempDir(), "missing.json"))

	_, err := orch.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrNoData), "got %v", err)

	_, statErr := os.Stat(filepath.Join(h.outDir, config.DefaultFileName))
	assert.True(t, os.IsNotExist(statErr), "no artifact may be published on failure")

	run, err := h.runs.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Nil(t, run.Artifact)
	assert.Contains(t, run.Error, "no data")

	_, err = h.runs.Latest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Equal(t, 1.0, counterValue(t, h.metrics.RunsTotal.WithLabelValues(observability.StatusFailed)))
	assert.Equal(t, 1.0, counterValue(t, h.metrics.SourceFailures.WithLabelValues("fixture")))
}

type failingRunStore struct{ storage.RunStore }

func (failingRunStore) Insert(context.Context, *domain.Run) error {
	return errors.New("database is down")
}

func TestOrchestrator_Run_PersistFailureKeepsArtifact(t *testing.T) {
	ctx := context.Background()
	h, orch := newHarness(t, writeFixture(t, fixtureJSON))
	orch.runs = failingRunStore{}

	_, err := orch.Run(ctx)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(h.outDir, config.DefaultFileName))
	assert.NoError(t, statErr)
	assert.Equal(t, 1.0, counterValue(t, h.metrics.PersistErrors.WithLabelValues("runs")))
}

func TestNew_RequiresInputs(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	cfg := config.Default()
	_, err = New(Options{Config: cfg, Reference: reference.Default(), Publisher: publish.NewFilePublisher(t.TempDir())})
	assert.Error(t, err, "tiers are required")
}

func TestBuildTiers_HTTPCredentials(t *testing.T) {
	var gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/house":
			gotKey = r.URL.Query().Get("apikey")
			_, _ = w.Write([]byte(`[{"symbol": "NVDA", "representative": "Michael McCaul", "type": "Purchase", "transactionDate": "2025-01-20"}]`))
		case "/quiver":
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{Sources: config.SourcesConfig{Tiers: []config.TierConfig{
		{Name: "fmp", Sources: []config.SourceConfig{{
			Spec: ingestion.SpecFMPHouse, URL: srv.URL + "/house",
			CredentialEnv: config.FMPAPIKeyEnv, CredentialParam: "apikey",
		}}},
		{Name: "quiver", Sources: []config.SourceConfig{{
			Spec: ingestion.SpecQuiver, URL: srv.URL + "/quiver",
			CredentialEnv: config.QuiverAPITokenEnv, CredentialHeader: "Authorization", CredentialPrefix: "Bearer ",
		}}},
	}}}
	cfg.ApplyDefaults()

	env := map[string]string{config.FMPAPIKeyEnv: "k123", config.QuiverAPITokenEnv: "tok"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	tiers, err := BuildTiers(cfg, reference.Default(), SourceOptions{LookupEnv: lookup, HTTPClient: srv.Client()})
	require.NoError(t, err)
	require.Len(t, tiers, 2)

	ctx := context.Background()
	records, err := tiers[0].Sources[0].Source.Fetch(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "k123", gotKey)

	_, err = tiers[1].Sources[0].Source.Fetch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestBuildTiers_MissingCredential(t *testing.T) {
	cfg := &config.Config{Sources: config.SourcesConfig{Tiers: []config.TierConfig{
		{Name: "fmp", Sources: []config.SourceConfig{{
			Spec: ingestion.SpecFMPHouse, URL: "https://example.test/house",
			CredentialEnv: config.FMPAPIKeyEnv, CredentialParam: "apikey",
		}}},
	}}}
	cfg.ApplyDefaults()

	none := func(string) (string, bool) { return "", false }
	_, err := BuildTiers(cfg, reference.Default(), SourceOptions{LookupEnv: none})
	assert.ErrorIs(t, err, config.ErrMissingCredential)
}

func TestRunTrades(t *testing.T) {
	trades := []domain.Trade{
		{Legislator: "A", Ticker: "X", TransactionDate: "2025-01-02", TypeText: "buy"},
		{Legislator: "A", Ticker: "X", TransactionDate: "2025-01-01", TypeText: "buy"},
	}
	rows := RunTrades("r", trades)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, "r", rows[1].RunID)
	assert.Len(t, rows[0].TradeID, 64)
	assert.NotEqual(t, rows[0].TradeID, rows[1].TradeID)
}
