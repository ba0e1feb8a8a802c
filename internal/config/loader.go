package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			LogLevel:     LogInfo,
			OutputFormat: FormatJSON,
			BlockSize:    4096,
			Concurrency:  runtime.NumCPU(),
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills in runtime defaults,
// and validates the result. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Runtime.LogLevel == "" {
		cfg.Runtime.LogLevel = LogInfo
	}
	if cfg.Runtime.OutputFormat == "" {
		cfg.Runtime.OutputFormat = FormatJSON
	}
	if cfg.Runtime.BlockSize == 0 {
		cfg.Runtime.BlockSize = 4096
	}
	if cfg.Runtime.Concurrency == 0 {
		cfg.Runtime.Concurrency = runtime.NumCPU()
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Runtime.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("runtime.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Runtime.LogLevel))
	}
	if !cfg.Runtime.OutputFormat.IsValid() {
		errs = append(errs, fmt.Errorf("runtime.output_format %q is invalid; valid values: json, text", cfg.Runtime.OutputFormat))
	}
	if cfg.Runtime.BlockSize < 0 {
		errs = append(errs, fmt.Errorf("runtime.block_size %d must not be negative", cfg.Runtime.BlockSize))
	}
	if cfg.Runtime.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("runtime.concurrency %d must not be negative", cfg.Runtime.Concurrency))
	}

	d := cfg.Detector
	if d.BandpassMinHz > 0 && d.BandpassMaxHz > 0 && d.BandpassMinHz >= d.BandpassMaxHz {
		errs = append(errs, fmt.Errorf("detector.bandpass_min_hz %.1f must be below detector.bandpass_max_hz %.1f", d.BandpassMinHz, d.BandpassMaxHz))
	}
	if d.HysteresisOnFactor > 0 && d.HysteresisOffFactor > 0 && d.HysteresisOffFactor >= d.HysteresisOnFactor {
		errs = append(errs, fmt.Errorf("detector.hysteresis_off_factor %.2f must be below detector.hysteresis_on_factor %.2f", d.HysteresisOffFactor, d.HysteresisOnFactor))
	}
	for name, v := range map[string]float64{
		"detector.trend_window_ms": d.TrendWindowMs,
		"detector.min_distance_ms": d.MinDistanceMs,
		"detector.threshold":       d.Threshold,
		"detector.adaptive_tau_ms": d.AdaptiveTauMs,
		"detector.voiced_hold_ms":  d.VoicedHoldMs,
		"detector.accent_cutoff":   d.AccentCutoff,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s %.2f must not be negative", name, v))
		}
	}
	if d.AdaptiveK != nil && *d.AdaptiveK < 0 {
		errs = append(errs, fmt.Errorf("detector.adaptive_k %.2f must not be negative", *d.AdaptiveK))
	}
	if d.ContextSize < 0 {
		errs = append(errs, fmt.Errorf("detector.context_size %d must not be negative", d.ContextSize))
	}

	return errors.Join(errs...)
}

// SlogLevel translates a [LogLevel] into its log/slog equivalent.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
