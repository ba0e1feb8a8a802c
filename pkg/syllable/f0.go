package syllable

import (
	"math"

	"github.com/mlindstr/cadenza/pkg/dsp"
)

// Plausible fundamental frequency range for voiced speech. Epoch spacings
// outside it are discarded as noise rather than reported.
const (
	f0MinHz = 50.0
	f0MaxHz = 600.0
)

// f0Tracker estimates the local fundamental frequency from zero-frequency
// filtered epochs. Each positive-going zero crossing of the ZFF output marks
// a glottal epoch; the spacing between consecutive epochs gives one period
// estimate.
// f0SpacingTolerance is the maximum relative change between consecutive
// epoch spacings for an estimate to count as periodic. Isolated crossings
// (filter transients, decay tails) never repeat a spacing and are dropped.
const f0SpacingTolerance = 0.2

type f0Tracker struct {
	zff        *dsp.ZFF
	sampleRate float64

	prevOut     float64
	sinceEpoch  int
	prevSpacing int
	current     float64
}

func newF0Tracker(sampleRate int, trendWindowMs float64) *f0Tracker {
	return &f0Tracker{
		zff:        dsp.NewZFF(sampleRate, trendWindowMs),
		sampleRate: float64(sampleRate),
	}
}

// Process consumes one sample. It returns the f0 estimate and true when this
// sample completed an epoch whose spacing falls in the plausible range and is
// consistent with the preceding spacing; otherwise it returns 0 and false.
func (t *f0Tracker) Process(x float64) (float64, bool) {
	out := t.zff.Process(x)

	isEpoch := t.prevOut < 0 && out >= 0
	t.prevOut = out

	if !isEpoch {
		t.sinceEpoch++
		return 0, false
	}

	spacing := t.sinceEpoch
	t.sinceEpoch = 0
	if spacing <= 0 {
		return 0, false
	}

	prev := t.prevSpacing
	t.prevSpacing = spacing

	f0 := t.sampleRate / float64(spacing)
	if f0 < f0MinHz || f0 > f0MaxHz {
		return 0, false
	}
	if prev <= 0 || math.Abs(float64(spacing-prev)) > float64(prev)*f0SpacingTolerance {
		return 0, false
	}
	t.current = f0
	return f0, true
}

// Current returns the last accepted f0 estimate, or 0 if none has been seen
// since the last reset.
func (t *f0Tracker) Current() float64 { return t.current }

func (t *f0Tracker) Reset() {
	t.zff.Reset()
	t.prevOut = 0
	t.sinceEpoch = 0
	t.prevSpacing = 0
	t.current = 0
}
