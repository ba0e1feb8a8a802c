package config_test

import (
	"strings"
	"testing"

	"github.com/mlindstr/cadenza/internal/config"
	"github.com/mlindstr/cadenza/pkg/syllable"
)

const sampleYAML = `
runtime:
  log_level: debug
  output_format: text
  block_size: 2048
  concurrency: 2
  metrics_addr: ":9090"
detector:
  threshold: 25.0
  min_distance_ms: 80
  adaptive_k: 0
  enable_agc: false
`

func TestLoadFromReader(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Runtime.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.Runtime.LogLevel)
	}
	if cfg.Runtime.OutputFormat != config.FormatText {
		t.Errorf("OutputFormat = %q, want text", cfg.Runtime.OutputFormat)
	}
	if cfg.Runtime.BlockSize != 2048 {
		t.Errorf("BlockSize = %d, want 2048", cfg.Runtime.BlockSize)
	}
	if cfg.Runtime.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", cfg.Runtime.MetricsAddr)
	}
	if cfg.Detector.Threshold != 25.0 {
		t.Errorf("Detector.Threshold = %v, want 25", cfg.Detector.Threshold)
	}
	if cfg.Detector.AdaptiveK == nil || *cfg.Detector.AdaptiveK != 0 {
		t.Errorf("Detector.AdaptiveK = %v, want explicit 0", cfg.Detector.AdaptiveK)
	}
	if cfg.Detector.EnableAGC == nil || *cfg.Detector.EnableAGC {
		t.Errorf("Detector.EnableAGC = %v, want explicit false", cfg.Detector.EnableAGC)
	}
}

func TestLoadFromReaderAppliesDefaults(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader("detector:\n  threshold: 10\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Runtime.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q, want info", cfg.Runtime.LogLevel)
	}
	if cfg.Runtime.OutputFormat != config.FormatJSON {
		t.Errorf("OutputFormat = %q, want json", cfg.Runtime.OutputFormat)
	}
	if cfg.Runtime.BlockSize != 4096 {
		t.Errorf("BlockSize = %d, want 4096", cfg.Runtime.BlockSize)
	}
	if cfg.Runtime.Concurrency < 1 {
		t.Errorf("Concurrency = %d, want at least 1", cfg.Runtime.Concurrency)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader("runtime:\n  not_a_field: true\n"))
	if err == nil {
		t.Fatal("LoadFromReader accepted an unknown field")
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	cfg := config.Default()
	cfg.Runtime.LogLevel = "loud"
	cfg.Runtime.OutputFormat = "xml"
	cfg.Detector.BandpassMinHz = 3000
	cfg.Detector.BandpassMaxHz = 500

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("Validate accepted a config with multiple violations")
	}
	for _, want := range []string{"runtime.log_level", "runtime.output_format", "detector.bandpass_min_hz"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestDetectorConfigApply(t *testing.T) {
	base := syllable.DefaultConfig(16000)

	zero := 0.0
	off := false
	overrides := config.DetectorConfig{
		Threshold:     42,
		MinDistanceMs: 75,
		AdaptiveK:     &zero,
		EnableAGC:     &off,
	}

	got := overrides.Apply(base)
	if got.ThresholdPeakRate != 42 {
		t.Errorf("ThresholdPeakRate = %v, want 42", got.ThresholdPeakRate)
	}
	if got.MinSyllableDistMs != 75 {
		t.Errorf("MinSyllableDistMs = %v, want 75", got.MinSyllableDistMs)
	}
	if got.AdaptivePeakRateK != 0 {
		t.Errorf("AdaptivePeakRateK = %v, want 0 (explicit override)", got.AdaptivePeakRateK)
	}
	if got.EnableAGC {
		t.Error("EnableAGC = true, want false (explicit override)")
	}
	// Untouched fields keep their defaults.
	if got.PeakRateBandMin != base.PeakRateBandMin {
		t.Errorf("PeakRateBandMin changed: %v != %v", got.PeakRateBandMin, base.PeakRateBandMin)
	}
}

func TestDetectorConfigApplyLeavesDefaults(t *testing.T) {
	base := syllable.DefaultConfig(44100)
	got := config.DetectorConfig{}.Apply(base)
	if got != base {
		t.Fatalf("empty overrides changed the config: %+v != %+v", got, base)
	}
}
