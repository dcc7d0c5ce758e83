package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congress-trade-lab/internal/conflict"
	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/ingestion"
	"congress-trade-lab/internal/ingestion/stub"
	"congress-trade-lab/internal/reference"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func houseAdapter(ref *reference.Store) ingestion.Adapter {
	spec, _ := ingestion.BuiltinSpec(ingestion.SpecFMPHouse)
	return ingestion.NewSpecAdapter(spec, ref, conflict.NewDetector(ref, reference.MatchFuzzy))
}

func rec(name, ticker, typ, date, amount string) ingestion.RawRecord {
	return ingestion.RawRecord{
		"representative":  name,
		"ticker":          ticker,
		"type":            typ,
		"transactionDate": date,
		"amount":          amount,
	}
}

func binding(src ingestion.Source, ref *reference.Store) SourceBinding {
	return SourceBinding{Source: src, Adapter: houseAdapter(ref), Timeout: time.Second, MaxPages: 5}
}

type countingRecorder struct {
	mu          sync.Mutex
	fetched     map[string]int
	failures    map[string]int
	dropped     int
	windowedOut int
	tier        string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{fetched: map[string]int{}, failures: map[string]int{}}
}

func (r *countingRecorder) RecordFetched(s string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetched[s] += n
}
func (r *countingRecorder) RecordAdapted(string, int, int) {}
func (r *countingRecorder) RecordSourceFailure(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[s]++
}
func (r *countingRecorder) RecordDedupDropped(n int)     { r.dropped += n }
func (r *countingRecorder) RecordWindowedOut(n int)      { r.windowedOut += n }
func (r *countingRecorder) RecordTierSelected(t string) { r.tier = t }

func TestDriver_EndToEnd(t *testing.T) {
	ref := reference.Default()
	src := stub.NewSource("fmp-house", []ingestion.RawRecord{
		rec("Nancy Pelosi", "NVDA", "Purchase", "2025-01-10", "$1,000,001 - $5,000,000"),
		rec("Michael McCaul", "NVDA", "Purchase", "2025-03-10", "$500,001 - $1,000,000"),
		rec("Nancy Pelosi", "NVDA", "Purchase", "2025-02-10", "$250,001 - $500,000"),
		rec("Michael McCaul", "XOM", "Sale", "2025-04-10", "$1,001 - $15,000"),
		rec("Jane Doe", "--", "Purchase", "2025-04-10", "$1,001 - $15,000"),
	})

	recorder := newCountingRecorder()
	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(src, ref)}}}).
		WithClock(fixedClock).
		WithReference(ref, true).
		WithRecorder(recorder)

	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "live", res.Tier)
	assert.Equal(t, "2024-06-01", res.Cutoff)
	require.Len(t, res.Trades, 4)

	dates := []string{res.Trades[0].TransactionDate, res.Trades[1].TransactionDate, res.Trades[2].TransactionDate, res.Trades[3].TransactionDate}
	assert.Equal(t, []string{"2025-04-10", "2025-03-10", "2025-02-10", "2025-01-10"}, dates)

	require.NotEmpty(t, res.Stats.PopularStocks)
	nvda := res.Stats.PopularStocks[0]
	assert.Equal(t, "NVDA", nvda.Ticker)
	assert.Equal(t, 3, nvda.Count)
	assert.Equal(t, int64(4125000), nvda.Volume)
	assert.Equal(t, 2, nvda.Traders)

	assert.Equal(t, 4, res.Totals.Trades)
	assert.Equal(t, 3, res.Totals.Buys)
	assert.Equal(t, 1, res.Totals.Sells)
	assert.Equal(t, 3, res.Totals.Conflicts, "McCaul and Pelosi NVDA buys conflict, XOM sale does not")

	require.Len(t, res.Sources, 1)
	assert.Equal(t, 5, res.Sources[0].Fetched)
	assert.Equal(t, 1, res.Sources[0].Rejected)

	assert.Len(t, res.PoliticianInfo, 12)
	assert.Equal(t, domain.PartyUnknown, res.PoliticianInfo["Nancy Pelosi"].Party)
	assert.Len(t, res.SectorJurisdiction, 10)

	assert.Equal(t, 5, recorder.fetched["fmp-house"])
	assert.Equal(t, "live", recorder.tier)

	for _, tr := range res.Trades {
		assert.True(t, tr.Direction.IsValid())
		assert.NotEmpty(t, tr.Ticker)
		assert.GreaterOrEqual(t, tr.AmountEstimate, int64(0))
	}
}

func TestDriver_DedupAcrossSourcesFirstWins(t *testing.T) {
	ref := reference.Default()
	first := stub.NewSource("first", []ingestion.RawRecord{
		rec("Nancy Pelosi", "AAPL", "Purchase", "2025-01-10", "$1,001 - $15,000"),
	})
	second := stub.NewSource("second", []ingestion.RawRecord{
		rec("Nancy Pelosi", "AAPL", "Purchase", "2025-01-10", "$15,001 - $50,000"),
		rec("Dan Crenshaw", "XOM", "Purchase", "2025-01-11", "$1,001 - $15,000"),
	})

	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(first, ref), binding(second, ref)}}}).
		WithClock(fixedClock)

	res, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, 1, res.Duplicates)
	for _, tr := range res.Trades {
		if tr.Ticker == "AAPL" {
			assert.Equal(t, "first", tr.Source)
			assert.Equal(t, int64(8000), tr.AmountEstimate)
		}
	}
}

func TestDriver_FailingSourceContributesNothing(t *testing.T) {
	ref := reference.Default()
	bad := stub.NewFailingSource("bad", errors.New("connection refused"))
	good := stub.NewSource("good", []ingestion.RawRecord{
		rec("Ro Khanna", "AAPL", "Purchase", "2025-01-10", "$1,001 - $15,000"),
	})

	recorder := newCountingRecorder()
	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(bad, ref), binding(good, ref)}}}).
		WithClock(fixedClock).
		WithRecorder(recorder)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Trades, 1)
	assert.Equal(t, 1, recorder.failures["bad"])

	var srcErr *ingestion.SourceError
	require.True(t, errors.As(res.Sources[0].Err, &srcErr))
	assert.Equal(t, "bad", srcErr.Source)
}

func TestDriver_PageFailureDiscardsWholeSource(t *testing.T) {
	ref := reference.Default()
	src := stub.NewSource("paged",
		[]ingestion.RawRecord{rec("Ro Khanna", "AAPL", "Purchase", "2025-01-10", "")},
		[]ingestion.RawRecord{rec("Ro Khanna", "MSFT", "Purchase", "2025-01-11", "")},
	).WithErrorOnPage(1, errors.New("503"))
	fallback := stub.NewSource("fallback", []ingestion.RawRecord{
		rec("Lois Frankel", "PFE", "Purchase", "2025-01-12", ""),
	})

	d := NewDriver([]Tier{
		{Name: "live", Sources: []SourceBinding{binding(src, ref)}},
		{Name: "static", Sources: []SourceBinding{binding(fallback, ref)}},
	}).WithClock(fixedClock)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", res.Tier)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, "PFE", res.Trades[0].Ticker)
	assert.Equal(t, []int{0, 1}, src.Calls())
}

func TestDriver_PagingStopsOnEmptyPage(t *testing.T) {
	ref := reference.Default()
	src := stub.NewSource("paged",
		[]ingestion.RawRecord{rec("Ro Khanna", "AAPL", "Purchase", "2025-01-10", "")},
		[]ingestion.RawRecord{rec("Ro Khanna", "MSFT", "Purchase", "2025-01-11", "")},
	)

	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(src, ref)}}}).WithClock(fixedClock)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Trades, 2)
	assert.Equal(t, []int{0, 1, 2}, src.Calls())
}

func TestDriver_FallbackIsNotBlended(t *testing.T) {
	ref := reference.Default()
	live := stub.NewSource("live", []ingestion.RawRecord{
		rec("Ro Khanna", "AAPL", "Purchase", "2025-01-10", ""),
	})
	static := stub.NewSource("static", []ingestion.RawRecord{
		rec("Lois Frankel", "PFE", "Purchase", "2025-01-12", ""),
		rec("Lois Frankel", "LLY", "Purchase", "2025-01-13", ""),
	})

	d := NewDriver([]Tier{
		{Name: "live", Sources: []SourceBinding{binding(live, ref)}},
		{Name: "static", Sources: []SourceBinding{binding(static, ref)}},
	}).WithClock(fixedClock).WithMinRecords(2)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", res.Tier)
	require.Len(t, res.Trades, 2)
	for _, tr := range res.Trades {
		assert.Equal(t, "static", tr.Source)
	}
}

func TestDriver_NoData(t *testing.T) {
	ref := reference.Default()
	d := NewDriver([]Tier{
		{Name: "live", Sources: []SourceBinding{binding(stub.NewFailingSource("a", errors.New("down")), ref)}},
		{Name: "static", Sources: []SourceBinding{binding(stub.NewSource("b"), ref)}},
	}).WithClock(fixedClock)

	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDriver_WindowBoundary(t *testing.T) {
	ref := reference.Default()
	day365 := fixedNow.AddDate(0, 0, -365).Format("2006-01-02")
	day366 := fixedNow.AddDate(0, 0, -366).Format("2006-01-02")

	src := stub.NewSource("s", []ingestion.RawRecord{
		rec("Ro Khanna", "AAPL", "Purchase", day365, ""),
		rec("Ro Khanna", "MSFT", "Purchase", day366, ""),
		rec("Ro Khanna", "GOOG", "Purchase", "", ""),
	})

	recorder := newCountingRecorder()
	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(src, ref)}}}).
		WithClock(fixedClock).
		WithRecorder(recorder)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, "AAPL", res.Trades[0].Ticker)
	assert.Equal(t, 2, res.WindowedOut)
	assert.Equal(t, 2, recorder.windowedOut)
}

func TestDriver_LocationShiftsRunDate(t *testing.T) {
	ref := reference.Default()
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 2025-05-31 20:00 UTC is already 2025-06-01 in Seoul.
	clock := func() time.Time { return time.Date(2025, 5, 31, 20, 0, 0, 0, time.UTC) }
	src := stub.NewSource("s", []ingestion.RawRecord{rec("Ro Khanna", "AAPL", "Purchase", "2025-01-10", "")})

	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(src, ref)}}}).
		WithClock(clock).
		WithLocation(seoul)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", res.Cutoff)
	assert.Equal(t, seoul, res.RunDate.Location())
}

type blockingSource struct{}

func (blockingSource) Name() string { return "slow" }

func (blockingSource) Fetch(ctx context.Context, _ int) ([]ingestion.RawRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDriver_FetchTimeout(t *testing.T) {
	ref := reference.Default()
	good := stub.NewSource("good", []ingestion.RawRecord{rec("Ro Khanna", "AAPL", "Purchase", "2025-01-10", "")})

	slow := binding(blockingSource{}, ref)
	slow.Timeout = 20 * time.Millisecond

	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{slow, binding(good, ref)}}}).WithClock(fixedClock)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Trades, 1)
	assert.ErrorIs(t, res.Sources[0].Err, context.DeadlineExceeded)
}

func TestDriver_MinDelayBetweenPages(t *testing.T) {
	ref := reference.Default()
	src := stub.NewSource("paged",
		[]ingestion.RawRecord{rec("Ro Khanna", "AAPL", "Purchase", "2025-01-10", "")},
		[]ingestion.RawRecord{rec("Ro Khanna", "MSFT", "Purchase", "2025-01-11", "")},
	)
	b := binding(src, ref)
	b.MinDelay = 30 * time.Millisecond

	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{b}}}).WithClock(fixedClock)

	start := time.Now()
	_, err := d.Run(context.Background())
	require.NoError(t, err)

	// Three requests (two pages plus the empty terminator) need two gaps.
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestDriver_Idempotent(t *testing.T) {
	ref := reference.Default()
	records := []ingestion.RawRecord{
		rec("Nancy Pelosi", "NVDA", "Purchase", "2025-01-10", "$1,000,001 - $5,000,000"),
		rec("Dan Crenshaw", "XOM", "Sale", "2025-02-10", "$1,001 - $15,000"),
		rec("Jane Doe", "AAPL", "Purchase", "2025-02-10", "$15,001 - $50,000"),
	}

	run := func() *Result {
		d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(stub.NewSource("s", records), ref)}}}).
			WithClock(fixedClock)
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Stats, b.Stats)
	assert.Equal(t, a.Trades, b.Trades)
}

func TestDriver_CanceledContext(t *testing.T) {
	ref := reference.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDriver([]Tier{{Name: "live", Sources: []SourceBinding{binding(stub.NewSource("s"), ref)}}}).WithClock(fixedClock)

	_, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
