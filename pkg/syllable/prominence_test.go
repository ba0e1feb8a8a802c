package syllable_test

import (
	"testing"

	"github.com/mlindstr/cadenza/pkg/syllable"
)

func baseScorer() syllable.Scorer {
	return syllable.NewScorer(testConfig())
}

func TestScoreIsMonotonicPerFactor(t *testing.T) {
	s := baseScorer()

	type features struct {
		peakRate, prSlope, energy, durationS, deltaF0 float64
	}
	base := features{peakRate: 5, prSlope: 50, energy: 1e-3, durationS: 0.1, deltaF0: 10}
	score := func(f features) float64 {
		return s.Score(f.peakRate, f.prSlope, f.energy, f.durationS, f.deltaF0)
	}

	bumps := map[string]func(f features) features{
		"peak_rate":  func(f features) features { f.peakRate *= 2; return f },
		"pr_slope":   func(f features) features { f.prSlope *= 2; return f },
		"energy":     func(f features) features { f.energy *= 2; return f },
		"duration_s": func(f features) features { f.durationS *= 2; return f },
		"delta_f0":   func(f features) features { f.deltaF0 *= 2; return f },
	}

	baseScore := score(base)
	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			if got := score(bump(base)); got < baseScore {
				t.Errorf("score decreased when raising %s: %v < %v", name, got, baseScore)
			}
		})
	}
}

func TestScoreIsBounded(t *testing.T) {
	s := baseScorer()

	if got := s.Score(0, 0, 0, 0, 0); got != 0 {
		t.Errorf("score of all-zero features = %v, want 0", got)
	}
	if got := s.Score(1e12, 1e12, 1e12, 1e12, 1e12); got >= 1 {
		t.Errorf("score of extreme features = %v, want < 1", got)
	}
}

func TestFallingPitchDoesNotContribute(t *testing.T) {
	s := baseScorer()

	flat := s.Score(5, 50, 1e-3, 0.1, 0)
	falling := s.Score(5, 50, 1e-3, 0.1, -80)
	if falling != flat {
		t.Errorf("falling pitch changed score: %v != %v", falling, flat)
	}
}

func TestIsAccentedUsesCutoff(t *testing.T) {
	cfg := testConfig()
	cfg.AccentCutoff = 0.5
	s := syllable.NewScorer(cfg)

	if s.IsAccented(0.49) {
		t.Error("score below cutoff classified as accented")
	}
	if !s.IsAccented(0.5) {
		t.Error("score at cutoff not classified as accented")
	}
}

func TestDetectedEventScoreMatchesScorer(t *testing.T) {
	cfg := testConfig()
	signal := make([]float32, testRate)
	addRampBurst(signal, testRate/10, testRate/20, 1850, 0.8)

	events := detectAll(t, cfg, signal)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]

	s := syllable.NewScorer(cfg)
	want := s.Score(ev.PeakRate, ev.PRSlope, ev.Energy, ev.DurationS, ev.DeltaF0)
	if ev.ProminenceScore != want {
		t.Errorf("event score %v does not match scorer output %v", ev.ProminenceScore, want)
	}
	if ev.IsAccented != s.IsAccented(ev.ProminenceScore) {
		t.Errorf("IsAccented %v inconsistent with score %v and cutoff %v",
			ev.IsAccented, ev.ProminenceScore, cfg.AccentCutoff)
	}
}
