// Package observe provides application-wide observability primitives for
// fluentlab: OpenTelemetry metrics, tracing, and trace-aware logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all fluentlab
// metrics.
const meterName = "github.com/fluentlab/fluentlab"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// IngestDuration tracks stream loading and validation latency.
	IngestDuration metric.Float64Histogram

	// AlignDuration tracks dual-pass alignment latency.
	AlignDuration metric.Float64Histogram

	// MetricsDuration tracks per-speaker metric computation latency.
	MetricsDuration metric.Float64Histogram

	// ReportDuration tracks report assembly and sink write latency.
	ReportDuration metric.Float64Histogram

	// --- Counters ---

	// SessionsProcessed counts completed sessions. Use with attribute:
	//   attribute.String("status", "ok"|"invalid"|"error")
	SessionsProcessed metric.Int64Counter

	// AlignmentAnomalies counts words attributed by the zero-overlap
	// fallback or labeled unknown.
	AlignmentAnomalies metric.Int64Counter

	// MalformedSegments counts out-of-order diarization segment pairs
	// repaired before alignment.
	MalformedSegments metric.Int64Counter

	// MetricsUnavailable counts sub-records that could not be computed.
	// Use with attribute: attribute.String("metric", ...)
	MetricsUnavailable metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of sessions currently in the
	// pipeline.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// batch stages over hour-long session transcripts.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.IngestDuration, err = m.Float64Histogram("fluentlab.ingest.duration",
		metric.WithDescription("Latency of stream loading and validation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AlignDuration, err = m.Float64Histogram("fluentlab.align.duration",
		metric.WithDescription("Latency of dual-pass alignment."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MetricsDuration, err = m.Float64Histogram("fluentlab.metrics.duration",
		metric.WithDescription("Latency of per-speaker metric computation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ReportDuration, err = m.Float64Histogram("fluentlab.report.duration",
		metric.WithDescription("Latency of report assembly and sink write."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.SessionsProcessed, err = m.Int64Counter("fluentlab.sessions.processed",
		metric.WithDescription("Total sessions processed by completion status."),
	); err != nil {
		return nil, err
	}
	if met.AlignmentAnomalies, err = m.Int64Counter("fluentlab.align.anomalies",
		metric.WithDescription("Total words attributed via the zero-overlap fallback or labeled unknown."),
	); err != nil {
		return nil, err
	}
	if met.MalformedSegments, err = m.Int64Counter("fluentlab.align.malformed_segments",
		metric.WithDescription("Total out-of-order diarization segment pairs repaired before alignment."),
	); err != nil {
		return nil, err
	}
	if met.MetricsUnavailable, err = m.Int64Counter("fluentlab.metrics.unavailable",
		metric.WithDescription("Total metric sub-records that could not be computed, by metric name."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("fluentlab.active_sessions",
		metric.WithDescription("Number of sessions currently in the pipeline."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordSession records one completed session with the given status
// ("ok", "invalid", or "error").
func (m *Metrics) RecordSession(ctx context.Context, status string) {
	m.SessionsProcessed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordUnavailable records one uncomputable metric sub-record by name.
func (m *Metrics) RecordUnavailable(ctx context.Context, name string) {
	m.MetricsUnavailable.Add(ctx, 1,
		metric.WithAttributes(attribute.String("metric", name)),
	)
}
