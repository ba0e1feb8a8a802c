package syllable

import "math"

// Scoring weights. The weighted sum of saturating terms keeps the score
// monotonic (non-decreasing) in every contributing factor while bounding it
// to [0, 1). Energy and peak rate dominate because they carry most of the
// perceptual prominence signal; slope, duration and pitch movement refine it.
const (
	weightPeakRate = 0.30
	weightPRSlope  = 0.15
	weightEnergy   = 0.25
	weightDuration = 0.15
	weightDeltaF0  = 0.15

	// Fixed reference scales for the factors whose natural scale does not
	// depend on configuration.
	refEnergy    = 1e-3
	refDurationS = 0.15
	refDeltaF0Hz = 40.0
)

// Scorer computes prominence scores from per-event acoustic features. The
// reference scales for peak rate and slope derive from the configured
// detection threshold, so scores stay comparable across sample rates; they
// never depend on the scored factors themselves.
type Scorer struct {
	refPeakRate float64
	refPRSlope  float64
	cutoff      float64
}

// NewScorer builds a Scorer from the detector configuration.
func NewScorer(cfg Config) Scorer {
	refPR := 2 * cfg.ThresholdPeakRate * cfg.HysteresisOnFactor
	if refPR <= 0 {
		refPR = 1
	}
	return Scorer{
		refPeakRate: refPR,
		refPRSlope:  refPR * 20,
		cutoff:      cfg.AccentCutoff,
	}
}

// sat maps [0, ∞) onto [0, 1) monotonically.
func sat(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x / (1 + x)
}

// Score combines the five per-event features into a single prominence score.
// The function is deterministic and monotonic non-decreasing in each
// argument with the others held fixed. Only a rising DeltaF0 contributes;
// falling pitch is treated as no pitch cue.
func (s Scorer) Score(peakRate, prSlope, energy, durationS, deltaF0 float64) float64 {
	return weightPeakRate*sat(peakRate/s.refPeakRate) +
		weightPRSlope*sat(prSlope/s.refPRSlope) +
		weightEnergy*sat(energy/refEnergy) +
		weightDuration*sat(durationS/refDurationS) +
		weightDeltaF0*sat(math.Max(deltaF0, 0)/refDeltaF0Hz)
}

// IsAccented reports whether score reaches the configured accent cutoff.
func (s Scorer) IsAccented(score float64) bool {
	return score >= s.cutoff
}
