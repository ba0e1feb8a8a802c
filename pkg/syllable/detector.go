// Package syllable implements streaming detection of syllable-nucleus events
// and their prosodic prominence from mono float32 PCM.
//
// A Detector is fed sample blocks incrementally through Process and keeps
// all state across calls, so events spanning block boundaries are detected
// exactly as if the stream had been processed in one piece. The pipeline per
// sample is: optional AGC → band-pass filter → envelope follower → half-wave
// rectified envelope derivative with peak-hold smoothing (the "peak rate") →
// adaptive hysteresis gate → event segmentation, with a zero-frequency
// filter running in parallel for pitch epochs.
//
// A Detector is a unit of exclusive mutable state: never share one across
// goroutines. Independent detectors are fully isolated and may run
// concurrently.
package syllable

import (
	"errors"
	"fmt"
	"math"

	"github.com/mlindstr/cadenza/pkg/dsp"
)

// ErrInvalidConfig is wrapped by New when the configuration violates an
// invariant; use errors.Is to distinguish it from resource errors.
var ErrInvalidConfig = errors.New("syllable: invalid config")

// Internal stage constants. The envelope follower times match the original
// detector tuning; the peak-rate release sets how long the rate signal stays
// elevated after an onset, which bounds sub-syllabic flutter.
const (
	envAttackMs  = 5.0
	envReleaseMs = 20.0

	peakRateReleaseMs = 30.0

	agcTargetDB  = -20.0
	agcMaxGainDB = 30.0
)

type gateState int

const (
	gateIdle gateState = iota
	gateCandidateOpen
)

// Detector is the streaming syllable-nucleus detection engine. Create one
// per audio stream with New; feed it with Process, resolve the tail with
// Flush, and reuse it for a new stream with Reset.
type Detector struct {
	cfg    Config
	scorer Scorer

	// DSP chain.
	agc      *dsp.AGC
	bandpass dsp.Biquad
	env      *dsp.EnvelopeFollower
	f0       *f0Tracker

	// Peak-rate state.
	prevEnv  float64
	peakRate float64
	prDecay  float64

	// Ring context of recent peak-rate values for slope estimation.
	prHistory []float64
	prPos     int
	prFill    int

	// Adaptive threshold state.
	adaptiveEnabled bool
	adaptiveAlpha   float64
	adaptiveMean    float64
	adaptiveVar     float64

	// Gate state.
	state           gateState
	openSample      uint64
	hasEvent        bool
	lastEventSample uint64
	minDistSamples  uint64
	holdSamples     uint64

	// Candidate accumulators, valid while the gate is open.
	candMaxPR    float64
	candMaxSlope float64
	candEnergy   float64
	candF0Sum    float64
	candF0Count  int

	prevEventF0 float64

	totalSamples uint64
	dropped      uint64
}

// New builds a Detector for the given configuration. It returns an error
// wrapping ErrInvalidConfig if the configuration violates an invariant; no
// detector is produced in that case.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	sr := float64(cfg.SampleRate)

	d := &Detector{
		cfg:       cfg,
		scorer:    NewScorer(cfg),
		env:       dsp.NewEnvelopeFollower(sr, envAttackMs, envReleaseMs),
		f0:        newF0Tracker(cfg.SampleRate, cfg.TrendWindowMs),
		prHistory: make([]float64, cfg.ContextSize),
		prDecay:   math.Exp(-1 / (peakRateReleaseMs * 0.001 * sr)),
	}

	if cfg.EnableAGC {
		d.agc = dsp.NewAGC(cfg.SampleRate, agcTargetDB, agcMaxGainDB)
	}

	center := (cfg.PeakRateBandMin + cfg.PeakRateBandMax) / 2
	bandwidth := math.Max(cfg.PeakRateBandMax-cfg.PeakRateBandMin, 1)
	q := math.Max(center/bandwidth, 0.1)
	d.bandpass.ConfigBandpass(sr, center, q)

	d.minDistSamples = uint64(cfg.MinSyllableDistMs * 0.001 * sr)
	d.holdSamples = uint64(cfg.VoicedHoldMs * 0.001 * sr)
	if d.holdSamples < 1 {
		d.holdSamples = 1
	}

	d.adaptiveEnabled = cfg.AdaptivePeakRateK > 0 && cfg.AdaptivePeakRateTauMs > 0
	if d.adaptiveEnabled {
		d.adaptiveAlpha = 1 / (cfg.AdaptivePeakRateTauMs * 0.001 * sr)
		if d.adaptiveAlpha > 1 {
			d.adaptiveAlpha = 1
		}
	}

	return d, nil
}

// Config returns the configuration the detector was built with.
func (d *Detector) Config() Config { return d.cfg }

// TotalSamples returns the number of samples consumed since construction or
// the last Reset. It defines the global timestamp base for events.
func (d *Detector) TotalSamples() uint64 { return d.totalSamples }

// Dropped returns the cumulative number of committed events discarded
// because the caller's output buffer was already full (see Process).
func (d *Detector) Dropped() uint64 { return d.dropped }

// Process feeds a block of mono samples and appends any events committed
// during the block to out, returning the number written.
//
// Overflow policy: drop newest-in-call. Once out is full, further events
// committed in the same call are discarded and counted in Dropped; the
// detector's clock, gate, and refractory state still advance exactly as if
// every event had been written, so subsequent calls neither re-emit nor
// shift the skipped events.
func (d *Detector) Process(samples []float32, out []Event) int {
	written := 0

	for _, s := range samples {
		x := float64(s)
		if d.agc != nil {
			x = d.agc.Process(x)
		}

		curIdx := d.totalSamples
		d.totalSamples++

		// Pitch epochs run on the raw (post-AGC) signal in parallel
		// with the detection chain.
		f0, fresh := d.f0.Process(x)
		if fresh && d.state == gateCandidateOpen {
			d.candF0Sum += f0
			d.candF0Count++
		}

		// Envelope and peak rate, in envelope units per second.
		env := d.env.Process(d.bandpass.Process(x))
		diff := (env - d.prevEnv) * float64(d.cfg.SampleRate)
		d.prevEnv = env

		r := math.Max(diff, 0)
		d.peakRate = math.Max(r, d.peakRate*d.prDecay)

		slope := d.currentSlope()
		d.pushPeakRate(d.peakRate)

		threshold := d.updateThreshold()

		switch d.state {
		case gateIdle:
			if d.peakRate > threshold*d.cfg.HysteresisOnFactor && d.refractoryElapsed(curIdx) {
				d.state = gateCandidateOpen
				d.openSample = curIdx
				d.candMaxPR = d.peakRate
				d.candMaxSlope = math.Abs(slope)
				d.candEnergy = x * x
				d.candF0Sum = 0
				d.candF0Count = 0
			}

		case gateCandidateOpen:
			d.candEnergy += x * x
			if d.peakRate > d.candMaxPR {
				d.candMaxPR = d.peakRate
			}
			if abs := math.Abs(slope); abs > d.candMaxSlope {
				d.candMaxSlope = abs
			}

			if d.peakRate < threshold*d.cfg.HysteresisOffFactor {
				if curIdx-d.openSample >= d.holdSamples {
					ev := d.commit(curIdx)
					if written < len(out) {
						out[written] = ev
						written++
					} else {
						d.dropped++
					}
				}
				d.state = gateIdle
			}
		}
	}

	return written
}

// Flush resolves a still-open candidate at end of stream without consuming
// further samples: the candidate is promoted to an event if its accumulated
// open duration already meets the hold time, and discarded otherwise. The
// same overflow policy as Process applies.
func (d *Detector) Flush(out []Event) int {
	if d.state != gateCandidateOpen {
		return 0
	}
	d.state = gateIdle

	closeIdx := d.totalSamples - 1
	if closeIdx-d.openSample < d.holdSamples {
		return 0
	}

	ev := d.commit(closeIdx)
	if len(out) == 0 {
		d.dropped++
		return 0
	}
	out[0] = ev
	return 1
}

// Reset restores the detector to its post-New state, retaining the
// configuration. Buffers are reused, not reallocated.
func (d *Detector) Reset() {
	if d.agc != nil {
		d.agc.Reset()
	}
	d.bandpass.Reset()
	d.env.Reset()
	d.f0.Reset()

	d.prevEnv = 0
	d.peakRate = 0
	for i := range d.prHistory {
		d.prHistory[i] = 0
	}
	d.prPos = 0
	d.prFill = 0

	d.adaptiveMean = 0
	d.adaptiveVar = 0

	d.state = gateIdle
	d.openSample = 0
	d.hasEvent = false
	d.lastEventSample = 0

	d.candMaxPR = 0
	d.candMaxSlope = 0
	d.candEnergy = 0
	d.candF0Sum = 0
	d.candF0Count = 0
	d.prevEventF0 = 0

	d.totalSamples = 0
	d.dropped = 0
}

// commit finalises the open candidate as an event closing at closeIdx and
// updates the refractory anchor. The caller owns the gate state transition.
func (d *Detector) commit(closeIdx uint64) Event {
	sr := float64(d.cfg.SampleRate)
	spanSamples := closeIdx - d.openSample

	f0 := 0.0
	if d.candF0Count > 0 {
		f0 = d.candF0Sum / float64(d.candF0Count)
	}
	deltaF0 := 0.0
	if d.hasEvent && f0 > 0 && d.prevEventF0 > 0 {
		deltaF0 = f0 - d.prevEventF0
	}

	ev := Event{
		TimestampSamples: d.openSample,
		TimeSeconds:      float64(d.openSample) / sr,
		PeakRate:         d.candMaxPR,
		PRSlope:          d.candMaxSlope,
		Energy:           d.candEnergy / float64(spanSamples+1),
		F0:               f0,
		DeltaF0:          deltaF0,
		DurationS:        float64(spanSamples) / sr,
	}
	ev.ProminenceScore = d.scorer.Score(ev.PeakRate, ev.PRSlope, ev.Energy, ev.DurationS, ev.DeltaF0)
	ev.IsAccented = d.scorer.IsAccented(ev.ProminenceScore)

	d.hasEvent = true
	d.lastEventSample = d.openSample
	d.prevEventF0 = f0

	return ev
}

// updateThreshold advances the adaptive estimate by one sample and returns
// the effective threshold, floored at the static minimum. The estimate
// updates every sample regardless of gate state so it keeps tracking
// ambient level through events.
func (d *Detector) updateThreshold() float64 {
	threshold := d.cfg.ThresholdPeakRate
	if !d.adaptiveEnabled {
		return threshold
	}

	delta := d.peakRate - d.adaptiveMean
	d.adaptiveMean += d.adaptiveAlpha * delta
	d.adaptiveVar = (1 - d.adaptiveAlpha) * (d.adaptiveVar + d.adaptiveAlpha*delta*delta)

	std := 0.0
	if d.adaptiveVar > 0 {
		std = math.Sqrt(d.adaptiveVar)
	}
	if adaptive := d.adaptiveMean + d.cfg.AdaptivePeakRateK*std; adaptive > threshold {
		threshold = adaptive
	}
	return threshold
}

func (d *Detector) refractoryElapsed(curIdx uint64) bool {
	return !d.hasEvent || curIdx-d.lastEventSample >= d.minDistSamples
}

// currentSlope estimates the peak-rate slope over the ring context window,
// in envelope units per second squared. Near stream start, before the ring
// has filled, it uses whatever history exists.
func (d *Detector) currentSlope() float64 {
	if d.prFill == 0 {
		return 0
	}
	capLen := len(d.prHistory)
	oldest := d.prHistory[(d.prPos-d.prFill+capLen)%capLen]
	return (d.peakRate - oldest) * float64(d.cfg.SampleRate) / float64(d.prFill)
}

func (d *Detector) pushPeakRate(v float64) {
	d.prHistory[d.prPos] = v
	d.prPos++
	if d.prPos >= len(d.prHistory) {
		d.prPos = 0
	}
	if d.prFill < len(d.prHistory) {
		d.prFill++
	}
}
