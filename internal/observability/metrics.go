// Package observability provides Prometheus metrics for pipeline runs.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"congress-trade-lab/internal/pipeline"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "congress_trades"

// Run status label values.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Metrics is the per-process metric set, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RecordsFetched *prometheus.CounterVec
	RecordsAdapted *prometheus.CounterVec
	SourceFailures *prometheus.CounterVec

	DedupDropped  prometheus.Counter
	WindowedOut   prometheus.Counter
	TierSelected  *prometheus.CounterVec
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	TradesInRun   prometheus.Gauge
	ConflictTotal prometheus.Gauge

	ObjectsPublished *prometheus.CounterVec
	PersistErrors    *prometheus.CounterVec

	LastSuccessfulRun prometheus.Gauge
}

// opts binds a namespace to a registry.
type opts struct {
	f  promauto.Factory
	ns string
}

func (o opts) counterVec(sub, name, help string, labels ...string) *prometheus.CounterVec {
	return o.f.NewCounterVec(prometheus.CounterOpts{Namespace: o.ns, Subsystem: sub, Name: name, Help: help}, labels)
}

func (o opts) counter(sub, name, help string) prometheus.Counter {
	return o.f.NewCounter(prometheus.CounterOpts{Namespace: o.ns, Subsystem: sub, Name: name, Help: help})
}

func (o opts) gauge(sub, name, help string) prometheus.Gauge {
	return o.f.NewGauge(prometheus.GaugeOpts{Namespace: o.ns, Subsystem: sub, Name: name, Help: help})
}

// runBuckets spans a cached fixture run up to a slow paginated live fetch.
var runBuckets = []float64{0.5, 2, 5, 15, 30, 60, 180, 600}

// NewMetrics registers every metric on a fresh registry under namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	o := opts{f: promauto.With(reg), ns: namespace}

	return &Metrics{
		registry: reg,

		RecordsFetched: o.counterVec("ingestion", "records_fetched_total", "Raw records fetched per source", "source"),
		RecordsAdapted: o.counterVec("ingestion", "records_adapted_total", "Raw records adapted per source, by outcome", "source", "outcome"),
		SourceFailures: o.counterVec("ingestion", "source_failures_total", "Sources that failed and contributed no records", "source"),

		DedupDropped: o.counter("pipeline", "dedup_dropped_total", "Trades dropped as duplicates"),
		WindowedOut:  o.counter("pipeline", "windowed_out_total", "Trades older than the trailing window"),
		TierSelected: o.counterVec("pipeline", "tier_selected_total", "Runs served by each source tier", "tier"),
		RunsTotal:    o.counterVec("pipeline", "runs_total", "Pipeline runs by status", "status"),
		RunDuration: o.f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Wall time of a pipeline run",
			Buckets:   runBuckets,
		}),
		TradesInRun:   o.gauge("pipeline", "trades", "Trades in the last published artifact"),
		ConflictTotal: o.gauge("pipeline", "conflicts", "Conflict-flagged trades in the last published artifact"),

		ObjectsPublished: o.counterVec("publish", "objects_total", "Objects published, by name", "object"),
		PersistErrors:    o.counterVec("storage", "persist_errors_total", "Failed persistence attempts, by store", "store"),

		LastSuccessfulRun: o.gauge("health", "last_successful_run_timestamp", "Unix time of the last successful run"),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFetched implements pipeline.Recorder.
func (m *Metrics) RecordFetched(source string, n int) {
	m.RecordsFetched.WithLabelValues(source).Add(float64(n))
}

// RecordAdapted implements pipeline.Recorder.
func (m *Metrics) RecordAdapted(source string, accepted, rejected int) {
	m.RecordsAdapted.WithLabelValues(source, "accepted").Add(float64(accepted))
	m.RecordsAdapted.WithLabelValues(source, "rejected").Add(float64(rejected))
}

// RecordSourceFailure implements pipeline.Recorder.
func (m *Metrics) RecordSourceFailure(source string) {
	m.SourceFailures.WithLabelValues(source).Inc()
}

// RecordDedupDropped implements pipeline.Recorder.
func (m *Metrics) RecordDedupDropped(n int) {
	m.DedupDropped.Add(float64(n))
}

// RecordWindowedOut implements pipeline.Recorder.
func (m *Metrics) RecordWindowedOut(n int) {
	m.WindowedOut.Add(float64(n))
}

// RecordTierSelected implements pipeline.Recorder.
func (m *Metrics) RecordTierSelected(tier string) {
	m.TierSelected.WithLabelValues(tier).Inc()
}

// RecordRun records a finished run. Success also updates the health gauge
// and the last-run trade gauges.
func (m *Metrics) RecordRun(status string, duration time.Duration, finished time.Time, trades, conflicts int) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
	if status == StatusSucceeded {
		m.LastSuccessfulRun.Set(float64(finished.Unix()))
		m.TradesInRun.Set(float64(trades))
		m.ConflictTotal.Set(float64(conflicts))
	}
}

// RecordPublished counts a published object.
func (m *Metrics) RecordPublished(object string) {
	m.ObjectsPublished.WithLabelValues(object).Inc()
}

// RecordPersistError counts a failed write to a store.
func (m *Metrics) RecordPersistError(store string) {
	m.PersistErrors.WithLabelValues(store).Inc()
}

// Push sends all metrics to a Prometheus pushgateway, replacing the job's group.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

var _ pipeline.Recorder = (*Metrics)(nil)
