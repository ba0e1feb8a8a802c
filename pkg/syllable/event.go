package syllable

// Event is one detected syllable nucleus. Events are plain values: the
// detector copies them into the caller's buffer and retains no reference
// after Process or Flush returns.
type Event struct {
	// TimestampSamples is the global sample index at which the candidate
	// opened, counted across every block the detector has ever processed.
	TimestampSamples uint64 `json:"timestamp_samples"`

	// TimeSeconds is TimestampSamples divided by the sample rate.
	TimeSeconds float64 `json:"time_seconds"`

	// PeakRate is the maximum peak-rate value observed during the
	// candidate span, in envelope units per second.
	PeakRate float64 `json:"peak_rate"`

	// PRSlope is the maximum magnitude of the peak-rate slope observed
	// during the span.
	PRSlope float64 `json:"pr_slope"`

	// Energy is the mean squared input level over the span.
	Energy float64 `json:"energy"`

	// F0 is the mean epoch-derived fundamental frequency over the span,
	// in Hz. Zero is the sentinel for "no periodic pitch detectable"
	// (unvoiced or noisy span) — a defined outcome, not an error.
	F0 float64 `json:"f0"`

	// DeltaF0 is F0 minus the previous event's F0. Zero when there is no
	// prior event in the stream or when either estimate is the sentinel.
	DeltaF0 float64 `json:"delta_f0"`

	// DurationS is the time the candidate stayed open, in seconds.
	DurationS float64 `json:"duration_s"`

	// ProminenceScore is the combined accentedness score; see Scorer for
	// the exact formula.
	ProminenceScore float64 `json:"prominence_score"`

	// IsAccented reports whether ProminenceScore reached the configured
	// accent cutoff.
	IsAccented bool `json:"is_accented"`
}
