package dsp

import "math"

// AGC time constants: fast envelope attack to catch peaks, slow release to
// ride out pauses, and gain smoothing to prevent zipper noise.
const (
	agcAttackS  = 0.005
	agcReleaseS = 0.500
	agcGainS    = 0.100

	// agcMinGain bounds attenuation so the AGC never fully ducks the signal.
	agcMinGain = 0.1
)

// AGC is an automatic gain control stage that steers the signal envelope
// toward a target level. It normalises recording-level differences before
// detection so fixed thresholds behave consistently across inputs.
type AGC struct {
	targetLevel float64
	maxGain     float64

	currentGain float64
	envelope    float64

	attackCoeff  float64
	releaseCoeff float64
	gainCoeff    float64
}

// NewAGC returns an AGC for the given sample rate targeting targetDB
// (envelope level in dBFS) with gain capped at maxGainDB.
func NewAGC(sampleRate int, targetDB, maxGainDB float64) *AGC {
	sr := float64(sampleRate)
	return &AGC{
		targetLevel:  math.Pow(10, targetDB/20),
		maxGain:      math.Pow(10, maxGainDB/20),
		currentGain:  1,
		attackCoeff:  1 - math.Exp(-1/(agcAttackS*sr)),
		releaseCoeff: 1 - math.Exp(-1/(agcReleaseS*sr)),
		gainCoeff:    1 - math.Exp(-1/(agcGainS*sr)),
	}
}

// Process feeds one sample and returns it with the current gain applied.
func (a *AGC) Process(sample float64) float64 {
	absSample := math.Abs(sample)

	coeff := a.releaseCoeff
	if absSample > a.envelope {
		coeff = a.attackCoeff
	}
	a.envelope += coeff * (absSample - a.envelope)

	envSafe := math.Max(a.envelope, 1e-6)
	targetGain := a.targetLevel / envSafe
	if targetGain > a.maxGain {
		targetGain = a.maxGain
	}
	if targetGain < agcMinGain {
		targetGain = agcMinGain
	}

	a.currentGain += a.gainCoeff * (targetGain - a.currentGain)

	return sample * a.currentGain
}

// Gain returns the current smoothed gain.
func (a *AGC) Gain() float64 { return a.currentGain }

// Reset restores unity gain and clears the envelope estimate.
func (a *AGC) Reset() {
	a.currentGain = 1
	a.envelope = 0
}
