package dsp

// zffLeak keeps the double integrator marginally stable for unbounded
// streams. A pure zero-frequency resonator accumulates without bound in
// floating point; the leak turns it into a resonator with very high but
// finite Q, which is what epoch extraction needs in practice.
const zffLeak = 0.999

// ZFF is a zero-frequency filter for glottal epoch extraction (Murty &
// Yegnanarayana): a leaky double integrator followed by moving-average trend
// removal over a short window. Positive-going zero crossings of the output
// mark epochs, whose spacing gives the local fundamental period.
type ZFF struct {
	int1, int2 float64

	trend      []float64
	trendPos   int
	trendAccum float64
}

// NewZFF returns a filter for the given sample rate whose trend-removal
// window spans trendWindowMs milliseconds (at least one sample).
func NewZFF(sampleRate int, trendWindowMs float64) *ZFF {
	size := int(float64(sampleRate) * trendWindowMs * 0.001)
	if size < 1 {
		size = 1
	}
	return &ZFF{trend: make([]float64, size)}
}

// Process feeds one sample and returns the trend-removed resonator output.
// Before the trend window has filled, the moving average is computed over
// the full (zero-initialised) window; output quality near stream start is
// lower but never an error.
func (z *ZFF) Process(in float64) float64 {
	z.int1 = z.int1*zffLeak + in
	z.int2 = z.int2*zffLeak + z.int1

	val := z.int2

	old := z.trend[z.trendPos]
	z.trend[z.trendPos] = val
	z.trendAccum += val - old
	z.trendPos++
	if z.trendPos >= len(z.trend) {
		z.trendPos = 0
	}

	return val - z.trendAccum/float64(len(z.trend))
}

// Reset clears all integrator and trend state, reusing the trend buffer.
func (z *ZFF) Reset() {
	z.int1, z.int2 = 0, 0
	for i := range z.trend {
		z.trend[i] = 0
	}
	z.trendPos = 0
	z.trendAccum = 0
}
