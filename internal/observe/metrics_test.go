package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *metric.ManualReader) {
	t.Helper()
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *metric.ManualReader) metricdata.ResourceMetrics {
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

func TestRecordFileResult(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFileResult(ctx, "a.wav", 16000, 5, 2, 1)
	m.RecordFileResult(ctx, "b.wav", 8000, 3, 0, 0)

	rm := collect(t, reader)

	counters := map[string]int64{
		"cadenza.samples.processed": 24000,
		"cadenza.events.detected":   8,
		"cadenza.events.accented":   2,
		"cadenza.events.dropped":    1,
	}
	for name, want := range counters {
		md := findMetric(rm, name)
		if md == nil {
			t.Errorf("metric %s not found", name)
			continue
		}
		sum, ok := md.Data.(metricdata.Sum[int64])
		if !ok {
			t.Errorf("metric %s is not an int64 sum", name)
			continue
		}
		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		if total != want {
			t.Errorf("metric %s total = %d, want %d", name, total, want)
		}
	}
}

func TestRecordDecodeError(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordDecodeError(context.Background(), "broken.wav")

	rm := collect(t, reader)
	md := findMetric(rm, "cadenza.decode.errors")
	if md == nil {
		t.Fatal("metric cadenza.decode.errors not found")
	}
	sum, ok := md.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric cadenza.decode.errors is not an int64 sum")
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Fatalf("unexpected data points: %+v", sum.DataPoints)
	}
}

func TestAnalysisDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.AnalysisDuration.Record(ctx, 0.2)
	m.AnalysisDuration.Record(ctx, 1.5)

	rm := collect(t, reader)
	md := findMetric(rm, "cadenza.analysis.duration")
	if md == nil {
		t.Fatal("metric cadenza.analysis.duration not found")
	}
	hist, ok := md.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric cadenza.analysis.duration is not a float64 histogram")
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Fatalf("histogram count = %d, want 2", count)
	}
}

func TestDefaultMetricsIsSingleton(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Fatal("DefaultMetrics returned different instances")
	}
}
