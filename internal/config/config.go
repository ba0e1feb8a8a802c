// Package config provides the configuration schema and loader for the
// cadenza analysis tool.
package config

import "github.com/mlindstr/cadenza/pkg/syllable"

// LogLevel controls log verbosity for the cadenza CLI.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// OutputFormat selects how detected events are written to stdout.
type OutputFormat string

const (
	// FormatJSON writes one JSON object per event (JSON lines).
	FormatJSON OutputFormat = "json"

	// FormatText writes a human-readable line per event.
	FormatText OutputFormat = "text"
)

// IsValid reports whether f is a recognised output format.
func (f OutputFormat) IsValid() bool {
	return f == FormatJSON || f == FormatText
}

// Config is the root configuration structure for cadenza.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Detector DetectorConfig `yaml:"detector"`
}

// RuntimeConfig holds settings of the CLI run itself, as opposed to the
// detection algorithm.
type RuntimeConfig struct {
	// LogLevel controls verbosity. Defaults to "info".
	LogLevel LogLevel `yaml:"log_level"`

	// OutputFormat selects the event output encoding. Defaults to "json".
	OutputFormat OutputFormat `yaml:"output_format"`

	// BlockSize is the number of samples read from a WAV file per decode
	// call. Defaults to 4096.
	BlockSize int `yaml:"block_size"`

	// Concurrency bounds how many files are analysed in parallel.
	// Defaults to the number of CPUs.
	Concurrency int `yaml:"concurrency"`

	// MetricsAddr, when non-empty, starts an HTTP server exposing
	// Prometheus metrics at /metrics on this address (e.g., ":9090").
	MetricsAddr string `yaml:"metrics_addr"`
}

// DetectorConfig holds overrides for the detection algorithm. Zero values
// mean "use the default for the file's sample rate"; see [syllable.DefaultConfig].
type DetectorConfig struct {
	TrendWindowMs       float64  `yaml:"trend_window_ms"`
	BandpassMinHz       float64  `yaml:"bandpass_min_hz"`
	BandpassMaxHz       float64  `yaml:"bandpass_max_hz"`
	MinDistanceMs       float64  `yaml:"min_distance_ms"`
	Threshold           float64  `yaml:"threshold"`
	AdaptiveK           *float64 `yaml:"adaptive_k"`
	AdaptiveTauMs       float64  `yaml:"adaptive_tau_ms"`
	VoicedHoldMs        float64  `yaml:"voiced_hold_ms"`
	HysteresisOnFactor  float64  `yaml:"hysteresis_on_factor"`
	HysteresisOffFactor float64  `yaml:"hysteresis_off_factor"`
	ContextSize         int      `yaml:"context_size"`

	// EnableAGC toggles input gain normalisation. Unset means enabled.
	EnableAGC *bool `yaml:"enable_agc"`

	// AccentCutoff is the prominence score at or above which an event is
	// flagged accented. Zero means the library default.
	AccentCutoff float64 `yaml:"accent_cutoff"`
}

// Apply overlays the non-zero overrides in d onto base and returns the
// result. AdaptiveK and EnableAGC use pointers so that explicit zero/false
// can be distinguished from "not set".
func (d DetectorConfig) Apply(base syllable.Config) syllable.Config {
	if d.TrendWindowMs > 0 {
		base.TrendWindowMs = d.TrendWindowMs
	}
	if d.BandpassMinHz > 0 {
		base.PeakRateBandMin = d.BandpassMinHz
	}
	if d.BandpassMaxHz > 0 {
		base.PeakRateBandMax = d.BandpassMaxHz
	}
	if d.MinDistanceMs > 0 {
		base.MinSyllableDistMs = d.MinDistanceMs
	}
	if d.Threshold > 0 {
		base.ThresholdPeakRate = d.Threshold
	}
	if d.AdaptiveK != nil {
		base.AdaptivePeakRateK = *d.AdaptiveK
	}
	if d.AdaptiveTauMs > 0 {
		base.AdaptivePeakRateTauMs = d.AdaptiveTauMs
	}
	if d.VoicedHoldMs > 0 {
		base.VoicedHoldMs = d.VoicedHoldMs
	}
	if d.HysteresisOnFactor > 0 {
		base.HysteresisOnFactor = d.HysteresisOnFactor
	}
	if d.HysteresisOffFactor > 0 {
		base.HysteresisOffFactor = d.HysteresisOffFactor
	}
	if d.ContextSize > 0 {
		base.ContextSize = d.ContextSize
	}
	if d.EnableAGC != nil {
		base.EnableAGC = *d.EnableAGC
	}
	if d.AccentCutoff > 0 {
		base.AccentCutoff = d.AccentCutoff
	}
	return base
}
