package dsp

import "math"

// EnvelopeFollower tracks the amplitude envelope of a signal with separate
// attack and release time constants: a fast attack keeps onsets sharp while
// a slower release smooths the decay between glottal pulses.
type EnvelopeFollower struct {
	attackCoeff  float64
	releaseCoeff float64
	output       float64
}

// NewEnvelopeFollower returns a follower for the given sample rate with the
// given attack and release times in milliseconds. Times are floored at 10µs
// to keep the exponential coefficients finite.
func NewEnvelopeFollower(sampleRate, attackMs, releaseMs float64) *EnvelopeFollower {
	tAttack := math.Max(attackMs*0.001, 1e-5)
	tRelease := math.Max(releaseMs*0.001, 1e-5)

	return &EnvelopeFollower{
		attackCoeff:  math.Exp(-1 / (sampleRate * tAttack)),
		releaseCoeff: math.Exp(-1 / (sampleRate * tRelease)),
	}
}

// Process feeds one sample and returns the updated envelope value.
func (e *EnvelopeFollower) Process(in float64) float64 {
	absIn := math.Abs(in)

	coeff := e.releaseCoeff
	if absIn > e.output {
		coeff = e.attackCoeff
	}
	e.output = coeff*e.output + (1-coeff)*absIn

	return e.output
}

// Output returns the current envelope value without consuming a sample.
func (e *EnvelopeFollower) Output() float64 { return e.output }

// Reset clears the envelope back to zero.
func (e *EnvelopeFollower) Reset() { e.output = 0 }
