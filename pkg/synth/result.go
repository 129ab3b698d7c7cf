// ABOUTME: Generator result type
// ABOUTME: Bundles samples, diagnostics and the observed peak
package synth

import "github.com/tonewright/seqgen/pkg/audio"

// Result is the output of one generator call.
// Diagnostics is populated even when the call fails.
type Result struct {
	Waveform    *audio.Waveform
	Diagnostics Diagnostics
	Peak        float64
}

// Len returns the number of generated samples
func (r Result) Len() int {
	return r.Waveform.Len()
}

// PeakDB returns the peak in decibels (10*log10)
func (r Result) PeakDB() float64 {
	return audio.Decibels(r.Peak)
}
