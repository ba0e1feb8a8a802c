package syllable

import (
	"errors"
	"fmt"
)

// Default parameter values. Peak-rate quantities are expressed in envelope
// units per second, so thresholds carry the same meaning at every sample
// rate.
const (
	DefaultSampleRate = 44100

	defaultTrendWindowMs     = 10.0
	defaultBandMinHz         = 500.0
	defaultBandMaxHz         = 3200.0
	defaultMinSyllableDistMs = 100.0
	defaultThresholdPeakRate = 15.0
	defaultAdaptiveK         = 4.0
	defaultAdaptiveTauMs     = 500.0
	defaultVoicedHoldMs      = 30.0
	defaultHysteresisOn      = 1.3
	defaultHysteresisOff     = 0.7
	defaultAccentCutoff      = 0.5
)

// Config holds the tunable parameters for a Detector. It is resolved once at
// construction and never mutated afterwards; the same Config value can be
// reused to build any number of independent detectors.
type Config struct {
	// SampleRate is the input rate in samples per second. All time-based
	// parameters are converted to sample counts against it.
	SampleRate int

	// TrendWindowMs is the window length for the zero-frequency filter's
	// trend removal, in milliseconds.
	TrendWindowMs float64

	// PeakRateBandMin and PeakRateBandMax bound the band-pass filter (Hz)
	// whose envelope drives the peak-rate signal. Energy outside the band
	// is attenuated, not hard-clipped.
	PeakRateBandMin float64
	PeakRateBandMax float64

	// MinSyllableDistMs is the refractory period: a new candidate cannot
	// open until this much time has passed since the last emitted event's
	// timestamp.
	MinSyllableDistMs float64

	// ThresholdPeakRate is the static floor for the detection threshold,
	// in envelope units per second. The adaptive threshold never drops
	// below it.
	ThresholdPeakRate float64

	// AdaptivePeakRateK and AdaptivePeakRateTauMs control the adaptive
	// threshold: an exponential estimate of the peak-rate mean and
	// deviation with time constant tau, combined as mean + k·std.
	// Setting either to zero (or below) disables adaptation.
	AdaptivePeakRateK     float64
	AdaptivePeakRateTauMs float64

	// VoicedHoldMs is the minimum time a candidate must stay open before
	// it can be promoted to an event. Shorter candidates are treated as
	// noise and dropped.
	VoicedHoldMs float64

	// HysteresisOnFactor and HysteresisOffFactor multiply the adaptive
	// threshold to form the separate opening and closing trip points. The
	// off factor must be below the on factor or the gate could never
	// close once opened.
	HysteresisOnFactor  float64
	HysteresisOffFactor float64

	// ContextSize is the capacity, in samples, of the retained peak-rate
	// history ring used for slope estimation across block boundaries.
	ContextSize int

	// EnableAGC inserts an automatic gain control stage in front of the
	// detector so thresholds behave consistently across recording levels.
	EnableAGC bool

	// AccentCutoff is the prominence score at or above which an event is
	// classified as accented.
	AccentCutoff float64
}

// DefaultConfig returns the recommended configuration for the given sample
// rate. A non-positive sampleRate falls back to DefaultSampleRate.
func DefaultConfig(sampleRate int) Config {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return Config{
		SampleRate:            sampleRate,
		TrendWindowMs:         defaultTrendWindowMs,
		PeakRateBandMin:       defaultBandMinHz,
		PeakRateBandMax:       defaultBandMaxHz,
		MinSyllableDistMs:     defaultMinSyllableDistMs,
		ThresholdPeakRate:     defaultThresholdPeakRate,
		AdaptivePeakRateK:     defaultAdaptiveK,
		AdaptivePeakRateTauMs: defaultAdaptiveTauMs,
		VoicedHoldMs:          defaultVoicedHoldMs,
		HysteresisOnFactor:    defaultHysteresisOn,
		HysteresisOffFactor:   defaultHysteresisOff,
		ContextSize:           sampleRate / 100, // 10 ms of history
		EnableAGC:             true,
		AccentCutoff:          defaultAccentCutoff,
	}
}

// Validate checks the configuration invariants. It returns a joined error
// listing every violation found, or nil if the configuration is usable.
func (c Config) Validate() error {
	var errs []error

	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate %d must be positive", c.SampleRate))
	}
	if c.PeakRateBandMin <= 0 {
		errs = append(errs, fmt.Errorf("peak_rate_band_min %.1f must be positive", c.PeakRateBandMin))
	}
	if c.PeakRateBandMin >= c.PeakRateBandMax {
		errs = append(errs, fmt.Errorf("peak_rate_band_min %.1f must be below peak_rate_band_max %.1f",
			c.PeakRateBandMin, c.PeakRateBandMax))
	}
	if c.SampleRate > 0 && c.PeakRateBandMax >= float64(c.SampleRate)/2 {
		errs = append(errs, fmt.Errorf("peak_rate_band_max %.1f must be below the Nyquist frequency %.1f",
			c.PeakRateBandMax, float64(c.SampleRate)/2))
	}
	if c.HysteresisOnFactor <= 0 || c.HysteresisOffFactor <= 0 {
		errs = append(errs, fmt.Errorf("hysteresis factors (on %.2f, off %.2f) must be positive",
			c.HysteresisOnFactor, c.HysteresisOffFactor))
	}
	if c.HysteresisOffFactor >= c.HysteresisOnFactor {
		errs = append(errs, fmt.Errorf("hysteresis_off_factor %.2f must be below hysteresis_on_factor %.2f",
			c.HysteresisOffFactor, c.HysteresisOnFactor))
	}
	if c.TrendWindowMs < 0 {
		errs = append(errs, fmt.Errorf("trend_window_ms %.1f must not be negative", c.TrendWindowMs))
	}
	if c.MinSyllableDistMs < 0 {
		errs = append(errs, fmt.Errorf("min_syllable_dist_ms %.1f must not be negative", c.MinSyllableDistMs))
	}
	if c.VoicedHoldMs < 0 {
		errs = append(errs, fmt.Errorf("voiced_hold_ms %.1f must not be negative", c.VoicedHoldMs))
	}
	if c.AdaptivePeakRateTauMs < 0 {
		errs = append(errs, fmt.Errorf("adaptive_peak_rate_tau_ms %.1f must not be negative", c.AdaptivePeakRateTauMs))
	}
	if c.ThresholdPeakRate < 0 {
		errs = append(errs, fmt.Errorf("threshold_peak_rate %.3f must not be negative", c.ThresholdPeakRate))
	}
	if c.ContextSize <= 0 {
		errs = append(errs, fmt.Errorf("context_size %d must be positive", c.ContextSize))
	}
	if c.AccentCutoff < 0 {
		errs = append(errs, fmt.Errorf("accent_cutoff %.2f must not be negative", c.AccentCutoff))
	}

	return errors.Join(errs...)
}
