// Package orchestrator runs one end-to-end batch: pipeline, artifact,
// publishing, persistence and metrics.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"congress-trade-lab/internal/config"
	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/idhash"
	"congress-trade-lab/internal/normalization"
	"congress-trade-lab/internal/observability"
	"congress-trade-lab/internal/pipeline"
	"congress-trade-lab/internal/publish"
	"congress-trade-lab/internal/reference"
	"congress-trade-lab/internal/reporting"
	"congress-trade-lab/internal/storage"
)

// Object kinds, used as the metrics label.
const (
	ObjectArtifact = "artifact"
	ObjectMarkdown = "markdown"
	ObjectCSV      = "csv"
)

const (
	contentTypeJSON     = "application/json; charset=utf-8"
	contentTypeMarkdown = "text/markdown; charset=utf-8"
	contentTypeCSV      = "text/csv; charset=utf-8"
)

// Orchestrator coordinates a run.
// Flow: pipeline → artifact → validate → publish → persist → metrics
type Orchestrator struct {
	cfg       *config.Config
	location  *time.Location
	tiers     []pipeline.Tier
	ref       *reference.Store
	publisher publish.Publisher

	// Stores
	runs      storage.RunStore
	trades    storage.TradeStore
	analytics storage.TradeStore

	metrics  *observability.Metrics
	logger   zerolog.Logger
	clock    func() time.Time
	newRunID func() string
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Config    *config.Config
	Tiers     []pipeline.Tier
	Reference *reference.Store
	Publisher publish.Publisher

	// Optional stores
	Stores    storage.Stores
	Analytics storage.TradeStore // e.g. ClickHouse, receives a copy of the run's trades

	// Optional
	Metrics  *observability.Metrics
	Logger   zerolog.Logger
	Clock    func() time.Time
	NewRunID func() string
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, errors.New("orchestrator: config is required")
	}
	if len(opts.Tiers) == 0 {
		return nil, errors.New("orchestrator: at least one source tier is required")
	}
	if opts.Reference == nil {
		return nil, errors.New("orchestrator: reference store is required")
	}
	if opts.Publisher == nil {
		return nil, errors.New("orchestrator: publisher is required")
	}

	loc, err := opts.Config.Location()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	o := &Orchestrator{
		cfg:       opts.Config,
		location:  loc,
		tiers:     opts.Tiers,
		ref:       opts.Reference,
		publisher: opts.Publisher,
		runs:      opts.Stores.Runs,
		trades:    opts.Stores.Trades,
		analytics: opts.Analytics,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		clock:     opts.Clock,
		newRunID:  opts.NewRunID,
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.newRunID == nil {
		o.newRunID = uuid.NewString
	}
	return o, nil
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	RunID     string
	Result    *pipeline.Result
	Artifact  []byte
	Locations map[string]string // object kind -> published location
}

// Run executes one batch. On failure a failed run is persisted (when a run
// store is configured) and the error is returned; no artifact is published.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	started := o.clock()
	runID := o.newRunID()
	logger := o.logger.With().Str("run_id", runID).Logger()

	logger.Info().
		Int("tiers", len(o.tiers)).
		Int("window_days", o.cfg.Run.WindowDays).
		Str("timezone", o.location.String()).
		Msg("run started")

	driver := pipeline.NewDriver(o.tiers).
		WithClock(o.clock).
		WithLocation(o.location).
		WithWindowDays(o.cfg.Run.WindowDays).
		WithMinRecords(o.cfg.Run.MinRecords).
		WithReference(o.ref, o.stripParty()).
		WithLogger(logger)
	if o.metrics != nil {
		driver = driver.WithRecorder(o.metrics)
	}

	res, err := driver.Run(ctx)
	if err != nil {
		return nil, o.fail(ctx, logger, runID, started, fmt.Errorf("pipeline: %w", err))
	}

	artifact, err := reporting.MarshalArtifact(reporting.BuildArtifact(res, o.cfg.Run.TradeLimit))
	if err != nil {
		return nil, o.fail(ctx, logger, runID, started, fmt.Errorf("marshal artifact: %w", err))
	}
	if err := reporting.ValidateArtifact(artifact); err != nil {
		return nil, o.fail(ctx, logger, runID, started, err)
	}

	locations, err := o.publishAll(ctx, runID, res, artifact)
	if err != nil {
		return nil, o.fail(ctx, logger, runID, started, err)
	}

	finished := o.clock()
	o.persist(ctx, logger, &domain.Run{
		RunID:          runID,
		StartedAt:      started,
		FinishedAt:     finished,
		Status:         domain.RunStatusSucceeded,
		Tier:           res.Tier,
		Cutoff:         res.Cutoff,
		TotalTrades:    res.Totals.Trades,
		TotalBuy:       res.Totals.Buys,
		TotalSell:      res.Totals.Sells,
		TotalConflicts: res.Totals.Conflicts,
		Duplicates:     res.Duplicates,
		WindowedOut:    res.WindowedOut,
		Artifact:       artifact,
	}, res.Trades)

	o.recordRun(ctx, logger, observability.StatusSucceeded, started, finished, res.Totals.Trades, res.Totals.Conflicts)

	logger.Info().
		Str("tier", res.Tier).
		Int("total", res.Totals.Trades).
		Int("buys", res.Totals.Buys).
		Int("sells", res.Totals.Sells).
		Int("conflicts", res.Totals.Conflicts).
		Int("popular", len(res.Stats.PopularStocks)).
		Str("artifact", locations[ObjectArtifact]).
		Dur("duration", finished.Sub(started)).
		Msg("run completed")

	return &RunResult{
		RunID:     runID,
		Result:    res,
		Artifact:  artifact,
		Locations: locations,
	}, nil
}

func (o *Orchestrator) stripParty() bool {
	if o.cfg.Run.StripParty == nil {
		return true
	}
	return *o.cfg.Run.StripParty
}

type output struct {
	kind string
	obj  publish.Object
}

// publishAll publishes the artifact first, then the optional reports.
func (o *Orchestrator) publishAll(ctx context.Context, runID string, res *pipeline.Result, artifact []byte) (map[string]string, error) {
	objects := []output{
		{ObjectArtifact, publish.Object{Name: o.cfg.Output.FileName, ContentType: contentTypeJSON, Data: artifact}},
	}

	if name := o.cfg.Output.Markdown; name != "" {
		md := reporting.RenderMarkdown(reporting.NewSummary(runID, res))
		objects = append(objects, output{ObjectMarkdown, publish.Object{Name: name, ContentType: contentTypeMarkdown, Data: []byte(md)}})
	}
	if name := o.cfg.Output.CSV; name != "" {
		csv, err := reporting.RenderTradesCSV(res.Trades)
		if err != nil {
			return nil, fmt.Errorf("render csv: %w", err)
		}
		objects = append(objects, output{ObjectCSV, publish.Object{Name: name, ContentType: contentTypeCSV, Data: []byte(csv)}})
	}

	locations := make(map[string]string, len(objects))
	for _, out := range objects {
		loc, err := o.publisher.Publish(ctx, out.obj)
		if err != nil {
			return nil, fmt.Errorf("publish %s: %w", out.kind, err)
		}
		locations[out.kind] = loc
		if o.metrics != nil {
			o.metrics.RecordPublished(out.kind)
		}
	}
	return locations, nil
}

// persist writes the run and its trades. Storage is a secondary output:
// failures are logged and counted but do not fail a published run.
func (o *Orchestrator) persist(ctx context.Context, logger zerolog.Logger, run *domain.Run, trades []domain.Trade) {
	if o.runs != nil {
		if err := o.runs.Insert(ctx, run); err != nil {
			o.persistError(logger, "runs", err)
			return
		}
	}

	if o.trades == nil && o.analytics == nil {
		return
	}
	rows := RunTrades(run.RunID, trades)
	if o.trades != nil {
		if err := o.trades.InsertBulk(ctx, rows); err != nil {
			o.persistError(logger, "trades", err)
		}
	}
	if o.analytics != nil {
		if err := o.analytics.InsertBulk(ctx, rows); err != nil {
			o.persistError(logger, "analytics", err)
		}
	}
}

func (o *Orchestrator) persistError(logger zerolog.Logger, store string, err error) {
	logger.Error().Err(err).Str("store", store).Msg("persist failed")
	if o.metrics != nil {
		o.metrics.RecordPersistError(store)
	}
}

func (o *Orchestrator) fail(ctx context.Context, logger zerolog.Logger, runID string, started time.Time, cause error) error {
	finished := o.clock()
	logger.Error().Err(cause).Dur("duration", finished.Sub(started)).Msg("run failed")

	if o.runs != nil {
		run := &domain.Run{
			RunID:      runID,
			StartedAt:  started,
			FinishedAt: finished,
			Status:     domain.RunStatusFailed,
			Cutoff:     normalization.WindowCutoff(started.In(o.location), o.cfg.Run.WindowDays),
			Error:      cause.Error(),
		}
		if err := o.runs.Insert(ctx, run); err != nil {
			o.persistError(logger, "runs", err)
		}
	}

	o.recordRun(ctx, logger, observability.StatusFailed, started, finished, 0, 0)
	return cause
}

func (o *Orchestrator) recordRun(ctx context.Context, logger zerolog.Logger, status string, started, finished time.Time, trades, conflicts int) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordRun(status, finished.Sub(started), finished, trades, conflicts)

	if url := o.cfg.Metrics.PushgatewayURL; url != "" {
		if err := o.metrics.Push(ctx, url, o.cfg.Metrics.Job); err != nil {
			logger.Warn().Err(err).Str("pushgateway", url).Msg("metrics push failed")
		}
	}
}

// RunTrades assigns trade IDs and newest-first positions to a run's trades.
func RunTrades(runID string, trades []domain.Trade) []*domain.RunTrade {
	out := make([]*domain.RunTrade, len(trades))
	for i, t := range trades {
		out[i] = &domain.RunTrade{
			RunID:    runID,
			TradeID:  idhash.ComputeTradeID(t.Legislator, t.Ticker, t.TransactionDate, t.TypeText),
			Position: i,
			Trade:    t,
		}
	}
	return out
}
