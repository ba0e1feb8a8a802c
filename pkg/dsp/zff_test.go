package dsp_test

import (
	"math"
	"testing"

	"github.com/mlindstr/cadenza/pkg/dsp"
)

// positiveCrossings counts positive-going zero crossings of the ZFF output
// over the last half of the input, skipping the startup transient.
func positiveCrossings(z *dsp.ZFF, in []float64) int {
	crossings := 0
	prev := 0.0
	for i, v := range in {
		out := z.Process(v)
		if i >= len(in)/2 && prev < 0 && out >= 0 {
			crossings++
		}
		prev = out
	}
	return crossings
}

func TestZFFEpochRateMatchesFundamental(t *testing.T) {
	const sampleRate = 16000
	const f0 = 100.0

	z := dsp.NewZFF(sampleRate, 10)
	in := make([]float64, sampleRate) // 1 s
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * f0 * float64(i) / float64(sampleRate))
	}

	// Counting window is the last 0.5 s, so ≈ 50 epochs at 100 Hz.
	got := positiveCrossings(z, in)
	if got < 45 || got > 55 {
		t.Fatalf("epoch count over 0.5 s of 100 Hz = %d, want ≈ 50", got)
	}
}

func TestZFFTracksLowestComponent(t *testing.T) {
	const sampleRate = 16000
	const f0 = 120.0

	// Fundamental plus a strong high-frequency component: the double
	// integration must suppress the latter so epochs follow f0.
	z := dsp.NewZFF(sampleRate, 10)
	in := make([]float64, sampleRate)
	for i := range in {
		ts := float64(i) / float64(sampleRate)
		in[i] = 0.4*math.Sin(2*math.Pi*f0*ts) + 0.6*math.Sin(2*math.Pi*1850*ts)
	}

	got := positiveCrossings(z, in)
	if got < 54 || got > 66 {
		t.Fatalf("epoch count over 0.5 s of 120 Hz+1850 Hz mix = %d, want ≈ 60", got)
	}
}

func TestZFFSilenceProducesNoOutput(t *testing.T) {
	z := dsp.NewZFF(16000, 10)
	for i := 0; i < 1000; i++ {
		if out := z.Process(0); out != 0 {
			t.Fatalf("sample %d: silence produced %v", i, out)
		}
	}
}

func TestZFFResetRestoresInitialState(t *testing.T) {
	z := dsp.NewZFF(16000, 10)
	in := make([]float64, 512)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 16000)
	}

	first := make([]float64, len(in))
	for i, v := range in {
		first[i] = z.Process(v)
	}
	z.Reset()
	for i, v := range in {
		if out := z.Process(v); out != first[i] {
			t.Fatalf("sample %d: got %v after reset, want %v", i, out, first[i])
		}
	}
}
