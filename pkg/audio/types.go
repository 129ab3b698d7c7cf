// ABOUTME: Audio type definitions
// ABOUTME: Defines sample rates, waveform buffers, and stream formats
package audio

import (
	"fmt"
	"math"
)

// SampleRate is the number of samples generated per second.
type SampleRate uint32

// Supported sample rates
const (
	SampleRate7200  SampleRate = 7200
	SampleRate8000  SampleRate = 8000
	SampleRate9600  SampleRate = 9600
	SampleRate10000 SampleRate = 10000
	SampleRate11050 SampleRate = 11050
	SampleRate22100 SampleRate = 22100

	DefaultSampleRate = SampleRate9600
	InvalidSampleRate SampleRate = 0
)

var validRates = []SampleRate{
	SampleRate7200,
	SampleRate8000,
	SampleRate9600,
	SampleRate10000,
	SampleRate11050,
	SampleRate22100,
}

// SupportedSampleRates returns the allowed sample rates in ascending order
func SupportedSampleRates() []SampleRate {
	out := make([]SampleRate, len(validRates))
	copy(out, validRates)
	return out
}

// Valid reports whether r is one of the supported rates
func (r SampleRate) Valid() bool {
	for _, v := range validRates {
		if r == v {
			return true
		}
	}
	return false
}

// SamplesFor returns the number of samples covering ms milliseconds, truncated
func (r SampleRate) SamplesFor(ms uint) uint {
	return uint(uint64(ms) * uint64(r) / 1000)
}

// MillisFor returns the duration in milliseconds of n samples, truncated
func (r SampleRate) MillisFor(n uint) uint {
	if r == 0 {
		return 0
	}
	return uint(1000 * uint64(n) / uint64(r))
}

// ParseSampleRate converts an integer to a SampleRate, rejecting unsupported values
func ParseSampleRate(v int) (SampleRate, error) {
	if v < 0 || !SampleRate(v).Valid() {
		return InvalidSampleRate, fmt.Errorf("unsupported sample rate: %d (supported: %v)", v, validRates)
	}
	return SampleRate(v), nil
}

// Format describes an encoded sample stream
type Format struct {
	Codec      string
	SampleRate SampleRate
	Channels   int
	BitDepth   int
}

// Waveform is an append-only run of normalized samples.
// The zero value is an empty waveform ready for use.
type Waveform struct {
	samples []float64
}

// NewWaveform creates an empty waveform with room for capacity samples
func NewWaveform(capacity int) *Waveform {
	return &Waveform{samples: make([]float64, 0, capacity)}
}

// WaveformFrom wraps an existing sample slice
func WaveformFrom(samples []float64) *Waveform {
	return &Waveform{samples: samples}
}

// Append adds samples to the end of the waveform
func (w *Waveform) Append(samples ...float64) {
	w.samples = append(w.samples, samples...)
}

// AppendSilence adds n zero samples
func (w *Waveform) AppendSilence(n uint) {
	w.Grow(int(n))
	for i := uint(0); i < n; i++ {
		w.samples = append(w.samples, 0)
	}
}

// Extend appends every sample of other
func (w *Waveform) Extend(other *Waveform) {
	if other == nil {
		return
	}
	w.samples = append(w.samples, other.samples...)
}

// Grow makes room for n more samples without reallocating
func (w *Waveform) Grow(n int) {
	if n <= 0 || cap(w.samples)-len(w.samples) >= n {
		return
	}
	grown := make([]float64, len(w.samples), len(w.samples)+n)
	copy(grown, w.samples)
	w.samples = grown
}

// Len returns the number of samples
func (w *Waveform) Len() int {
	if w == nil {
		return 0
	}
	return len(w.samples)
}

// Samples returns the samples. Callers must not modify the returned slice.
func (w *Waveform) Samples() []float64 {
	if w == nil {
		return nil
	}
	return w.samples
}

// Peak returns the largest absolute sample value
func (w *Waveform) Peak() float64 {
	return PeakOf(w.Samples())
}

// Duration returns the waveform length in milliseconds at rate r
func (w *Waveform) Duration(r SampleRate) float64 {
	if r == 0 {
		return 0
	}
	return 1000.0 * float64(w.Len()) / float64(r)
}

// PeakOf returns the largest absolute value in samples
func PeakOf(samples []float64) float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Decibels converts a linear amplitude to 10*log10(amp).
// Zero amplitude yields -Inf.
func Decibels(amp float64) float64 {
	return 10 * math.Log10(amp)
}

// SampleToFloat32 narrows a sample for 32-bit output
func SampleToFloat32(sample float64) float32 {
	return float32(sample)
}

// SampleFromFloat32 widens a 32-bit sample
func SampleFromFloat32(sample float32) float64 {
	return float64(sample)
}
