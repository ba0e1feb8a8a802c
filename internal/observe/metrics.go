// Package observe provides observability primitives for cadenza:
// OpenTelemetry metrics with a Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all cadenza metrics.
const meterName = "github.com/mlindstr/cadenza"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// AnalysisDuration tracks wall-clock time spent analysing one file.
	AnalysisDuration metric.Float64Histogram

	// SamplesProcessed counts audio samples pushed through detectors.
	SamplesProcessed metric.Int64Counter

	// EventsDetected counts committed nucleus events. Use with attribute:
	//   attribute.String("file", ...)
	EventsDetected metric.Int64Counter

	// AccentedEvents counts events whose prominence score crossed the
	// accent cutoff.
	AccentedEvents metric.Int64Counter

	// EventsDropped counts events lost to output-buffer overflow.
	EventsDropped metric.Int64Counter

	// DecodeErrors counts files that failed to decode. Use with attribute:
	//   attribute.String("file", ...)
	DecodeErrors metric.Int64Counter

	// ActiveAnalyses tracks the number of files currently being analysed.
	ActiveAnalyses metric.Int64UpDownCounter
}

// durationBuckets defines histogram bucket boundaries (in seconds) sized for
// offline file analysis, which runs much faster than realtime.
var durationBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisDuration, err = m.Float64Histogram("cadenza.analysis.duration",
		metric.WithDescription("Wall-clock time spent analysing one audio file."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SamplesProcessed, err = m.Int64Counter("cadenza.samples.processed",
		metric.WithDescription("Total audio samples pushed through detectors."),
	); err != nil {
		return nil, err
	}
	if met.EventsDetected, err = m.Int64Counter("cadenza.events.detected",
		metric.WithDescription("Total committed nucleus events by file."),
	); err != nil {
		return nil, err
	}
	if met.AccentedEvents, err = m.Int64Counter("cadenza.events.accented",
		metric.WithDescription("Total events flagged as accented."),
	); err != nil {
		return nil, err
	}
	if met.EventsDropped, err = m.Int64Counter("cadenza.events.dropped",
		metric.WithDescription("Total events lost to output-buffer overflow."),
	); err != nil {
		return nil, err
	}
	if met.DecodeErrors, err = m.Int64Counter("cadenza.decode.errors",
		metric.WithDescription("Total files that failed to decode."),
	); err != nil {
		return nil, err
	}
	if met.ActiveAnalyses, err = m.Int64UpDownCounter("cadenza.active_analyses",
		metric.WithDescription("Number of files currently being analysed."),
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

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordFileResult records the counters for one completed file analysis.
func (m *Metrics) RecordFileResult(ctx context.Context, file string, samples, events, accented, dropped int64) {
	attrs := metric.WithAttributes(attribute.String("file", file))
	m.SamplesProcessed.Add(ctx, samples, attrs)
	m.EventsDetected.Add(ctx, events, attrs)
	m.AccentedEvents.Add(ctx, accented, attrs)
	m.EventsDropped.Add(ctx, dropped, attrs)
}

// RecordDecodeError records a decode failure for the given file.
func (m *Metrics) RecordDecodeError(ctx context.Context, file string) {
	m.DecodeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("file", file)))
}
