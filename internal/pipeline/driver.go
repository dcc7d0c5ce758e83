// Package pipeline drives one batch run: fetch every configured source,
// adapt, deduplicate, window, sort, aggregate and assemble the result.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"congress-trade-lab/internal/dedup"
	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/ingestion"
	"congress-trade-lab/internal/metrics"
	"congress-trade-lab/internal/normalization"
	"congress-trade-lab/internal/reference"
)

// ErrNoData is returned when no source tier produced enough records.
var ErrNoData = errors.New("no data: all source tiers below minimum record count")

// Defaults.
const (
	DefaultWindowDays   = 365
	DefaultMinRecords   = 1
	DefaultFetchTimeout = 60 * time.Second
	DefaultMaxPages     = 1
)

// Stage is a step of a run. Stages execute strictly in order.
type Stage string

const (
	StageFetchSources   Stage = "fetch_sources"
	StageAdaptAndFilter Stage = "adapt_and_filter"
	StageDeduplicate    Stage = "deduplicate"
	StageWindowFilter   Stage = "window_filter"
	StageSort           Stage = "sort"
	StageAggregate      Stage = "aggregate"
	StageAssemble       Stage = "assemble"
)

// SourceBinding pairs a source with its adapter and fetch policy.
type SourceBinding struct {
	Source   ingestion.Source
	Adapter  ingestion.Adapter
	Timeout  time.Duration // per page request
	MinDelay time.Duration // between consecutive page requests
	MaxPages int
}

// Tier is an ordered group of sources. Order within a tier is dedup precedence.
type Tier struct {
	Name    string
	Sources []SourceBinding
}

// Recorder receives run counters. observability.Metrics implements it.
type Recorder interface {
	RecordFetched(source string, n int)
	RecordAdapted(source string, accepted, rejected int)
	RecordSourceFailure(source string)
	RecordDedupDropped(n int)
	RecordWindowedOut(n int)
	RecordTierSelected(tier string)
}

type nopRecorder struct{}

func (nopRecorder) RecordFetched(string, int)      {}
func (nopRecorder) RecordAdapted(string, int, int) {}
func (nopRecorder) RecordSourceFailure(string)     {}
func (nopRecorder) RecordDedupDropped(int)         {}
func (nopRecorder) RecordWindowedOut(int)          {}
func (nopRecorder) RecordTierSelected(string)      {}

// SourceReport summarizes one source within a tier attempt.
type SourceReport struct {
	Tier     string
	Source   string
	Fetched  int
	Accepted int
	Rejected int
	Err      error
}

// Result is the assembled output of a run.
type Result struct {
	RunDate     time.Time // in the driver's location
	Cutoff      string    // inclusive window lower bound, YYYY-MM-DD
	Tier        string
	Trades      []domain.Trade // windowed, newest first
	Stats       domain.Stats
	Totals      metrics.Totals
	Sources     []SourceReport
	Duplicates  int
	WindowedOut int

	PoliticianInfo     map[string]domain.LegislatorProfile
	SectorJurisdiction map[string]string
}

// Driver runs the pipeline over a fixed set of source tiers.
type Driver struct {
	tiers      []Tier
	windowDays int
	minRecords int
	clock      func() time.Time
	location   *time.Location
	ref        *reference.Store
	stripParty bool
	logger     zerolog.Logger
	recorder   Recorder
}

// NewDriver creates a driver over tiers, consulted in order.
func NewDriver(tiers []Tier) *Driver {
	return &Driver{
		tiers:      tiers,
		windowDays: DefaultWindowDays,
		minRecords: DefaultMinRecords,
		clock:      time.Now,
		location:   time.UTC,
		stripParty: true,
		logger:     zerolog.Nop(),
		recorder:   nopRecorder{},
	}
}

// WithClock sets a custom clock function for deterministic output.
func (d *Driver) WithClock(clock func() time.Time) *Driver {
	d.clock = clock
	return d
}

// WithLocation sets the zone used for the run date and window cutoff.
func (d *Driver) WithLocation(loc *time.Location) *Driver {
	if loc != nil {
		d.location = loc
	}
	return d
}

// WithWindowDays sets the trailing window length.
func (d *Driver) WithWindowDays(days int) *Driver {
	if days > 0 {
		d.windowDays = days
	}
	return d
}

// WithMinRecords sets how many deduplicated records a tier needs to be selected.
func (d *Driver) WithMinRecords(n int) *Driver {
	if n > 0 {
		d.minRecords = n
	}
	return d
}

// WithReference echoes reference tables into the result.
func (d *Driver) WithReference(ref *reference.Store, stripParty bool) *Driver {
	d.ref = ref
	d.stripParty = stripParty
	return d
}

// WithLogger sets the logger.
func (d *Driver) WithLogger(logger zerolog.Logger) *Driver {
	d.logger = logger
	return d
}

// WithRecorder sets the metrics recorder.
func (d *Driver) WithRecorder(r Recorder) *Driver {
	if r != nil {
		d.recorder = r
	}
	return d
}

// Run executes one batch pass.
// Returns ErrNoData when no tier reaches the minimum record count.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	runDate := d.clock().In(d.location)
	res := &Result{
		RunDate: runDate,
		Cutoff:  normalization.WindowCutoff(runDate, d.windowDays),
	}

	var selected []domain.Trade
	found := false
	for _, tier := range d.tiers {
		trades, reports := d.collectTier(ctx, tier)
		res.Sources = append(res.Sources, reports...)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d.logStage(StageDeduplicate, tier.Name)
		deduped := dedup.Deduplicate(trades)
		if len(deduped.Trades) < d.minRecords {
			d.logger.Warn().
				Str("tier", tier.Name).
				Int("records", len(deduped.Trades)).
				Int("min_records", d.minRecords).
				Msg("tier below minimum, trying next")
			continue
		}

		d.recorder.RecordDedupDropped(deduped.Dropped)
		d.recorder.RecordTierSelected(tier.Name)
		res.Tier = tier.Name
		res.Duplicates = deduped.Dropped
		selected = deduped.Trades
		found = true
		break
	}
	if !found {
		return nil, ErrNoData
	}

	d.logStage(StageWindowFilter, res.Tier)
	windowed := normalization.FilterWindow(selected, res.Cutoff)
	res.WindowedOut = len(selected) - len(windowed)
	d.recorder.RecordWindowedOut(res.WindowedOut)

	d.logStage(StageSort, res.Tier)
	normalization.SortTradesByDateDesc(windowed)

	d.logStage(StageAggregate, res.Tier)
	res.Stats, res.Totals = metrics.Compute(windowed)

	d.logStage(StageAssemble, res.Tier)
	res.Trades = windowed
	if d.ref != nil {
		res.PoliticianInfo = d.ref.PoliticianInfo(d.stripParty)
		res.SectorJurisdiction = d.ref.SectorJurisdiction()
	}

	d.logger.Info().
		Str("tier", res.Tier).
		Int("deduplicated", len(selected)).
		Int("duplicates", res.Duplicates).
		Int("windowed", len(windowed)).
		Str("cutoff", res.Cutoff).
		Int("conflicts", res.Totals.Conflicts).
		Int("popular", len(res.Stats.PopularStocks)).
		Msg("run assembled")

	return res, nil
}

// collectTier runs FetchSources and AdaptAndFilter for every source in the tier.
// Sources are processed sequentially; a failing source contributes nothing.
func (d *Driver) collectTier(ctx context.Context, tier Tier) ([]domain.Trade, []SourceReport) {
	var trades []domain.Trade
	reports := make([]SourceReport, 0, len(tier.Sources))

	for _, b := range tier.Sources {
		name := b.Source.Name()
		rep := SourceReport{Tier: tier.Name, Source: name}

		d.logStage(StageFetchSources, tier.Name)
		records, err := d.fetchSource(ctx, b)
		if err != nil {
			rep.Err = err
			reports = append(reports, rep)
			d.recorder.RecordSourceFailure(name)
			d.logger.Error().Err(err).Str("tier", tier.Name).Str("source", name).Msg("source failed, skipping")
			if ctx.Err() != nil {
				return trades, reports
			}
			continue
		}
		rep.Fetched = len(records)
		d.recorder.RecordFetched(name, len(records))

		d.logStage(StageAdaptAndFilter, tier.Name)
		adapted, rejected := ingestion.AdaptAll(b.Adapter, records)
		for i := range adapted {
			adapted[i].Source = name
		}
		rep.Accepted = len(adapted)
		rep.Rejected = rejected
		d.recorder.RecordAdapted(name, len(adapted), rejected)
		reports = append(reports, rep)

		d.logger.Info().
			Str("tier", tier.Name).
			Str("source", name).
			Int("records", len(records)).
			Int("accepted", len(adapted)).
			Int("rejected", rejected).
			Msg("source loaded")

		trades = append(trades, adapted...)
	}
	return trades, reports
}

// fetchSource reads pages until an empty page or MaxPages. Any page failure
// fails the whole source so partial pages are never used.
func (d *Driver) fetchSource(ctx context.Context, b SourceBinding) ([]ingestion.RawRecord, error) {
	name := b.Source.Name()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	maxPages := b.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	limit := rate.Inf
	if b.MinDelay > 0 {
		limit = rate.Every(b.MinDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var all []ingestion.RawRecord
	for page := 0; page < maxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, ingestion.NewSourceError(name, page, err)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		records, err := b.Source.Fetch(fetchCtx, page)
		cancel()
		if err != nil {
			return nil, ingestion.NewSourceError(name, page, err)
		}
		if len(records) == 0 {
			break
		}
		all = append(all, records...)
	}
	return all, nil
}

func (d *Driver) logStage(stage Stage, tier string) {
	d.logger.Debug().Str("stage", string(stage)).Str("tier", tier).Msg("stage")
}
