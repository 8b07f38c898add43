package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestStageHistograms(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.IngestDuration.Record(ctx, 0.002)
	m.AlignDuration.Record(ctx, 0.014)
	m.MetricsDuration.Record(ctx, 0.120)
	m.ReportDuration.Record(ctx, 0.003)

	rm := collect(t, reader)
	for _, name := range []string{
		"fluentlab.ingest.duration",
		"fluentlab.align.duration",
		"fluentlab.metrics.duration",
		"fluentlab.report.duration",
	} {
		t.Run(name, func(t *testing.T) {
			md := findMetric(rm, name)
			if md == nil {
				t.Fatalf("metric %q not collected", name)
			}
			hist, ok := md.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("metric %q is %T, want histogram", name, md.Data)
			}
			if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
				t.Errorf("metric %q data points = %+v", name, hist.DataPoints)
			}
		})
	}
}

func TestRecordSession_StatusAttribute(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSession(ctx, "ok")
	m.RecordSession(ctx, "ok")
	m.RecordSession(ctx, "invalid")

	md := findMetric(collect(t, reader), "fluentlab.sessions.processed")
	if md == nil {
		t.Fatal("sessions.processed not collected")
	}
	sum, ok := md.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data is %T, want sum", md.Data)
	}

	byStatus := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		byStatus[status.AsString()] = dp.Value
	}
	if byStatus["ok"] != 2 || byStatus["invalid"] != 1 {
		t.Errorf("counts by status = %v", byStatus)
	}
}

func TestRecordUnavailable(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordUnavailable(context.Background(), "pos")

	md := findMetric(collect(t, reader), "fluentlab.metrics.unavailable")
	if md == nil {
		t.Fatal("metrics.unavailable not collected")
	}
	sum, ok := md.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("data = %+v", md.Data)
	}
}
