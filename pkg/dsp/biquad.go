// Package dsp provides the sample-level signal processing primitives behind
// the syllable detection engine: a biquad filter section, an attack/release
// envelope follower, a zero-frequency filter for glottal epoch extraction,
// and an automatic gain control stage.
//
// Everything here is strictly causal and processes one sample per call, so a
// stream fed in one large block produces bit-identical results to the same
// stream fed in many small blocks. None of the types are safe for concurrent
// use; create one instance per audio stream.
package dsp

import "math"

// Biquad is a second-order IIR filter section in Direct Form I. Coefficients
// follow the RBJ audio EQ cookbook.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// ConfigBandpass configures the section as a band-pass filter with constant
// skirt gain (peak gain = q) centered at centerHz. Sample history is
// preserved, so coefficients can be updated mid-stream without a click.
func (f *Biquad) ConfigBandpass(sampleRate, centerHz, q float64) {
	w0 := 2 * math.Pi * centerHz / sampleRate
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	inv := 1 / a0

	f.b0 = alpha * inv
	f.b1 = 0
	f.b2 = -alpha * inv
	f.a1 = -2 * math.Cos(w0) * inv
	f.a2 = (1 - alpha) * inv
}

// Reset clears the filter's sample history, keeping the coefficients.
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// Process filters a single sample.
func (f *Biquad) Process(in float64) float64 {
	out := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

	// Flush denormals so long silent stretches stay cheap.
	if math.Abs(out) < 1e-15 {
		out = 0
	}

	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, out
	return out
}
