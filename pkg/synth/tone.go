// ABOUTME: Single sinusoid with integer harmonics
// ABOUTME: Computes one enveloped sample of a tone at a given angle
package synth

import (
	"fmt"
	"math"
)

// ToneDescriptor describes one sinusoid as delivered by a loader.
// Harmonics and HarmonicAmps are parallel lists.
type ToneDescriptor struct {
	Amplitude    float64
	Frequency    float64 // Hz
	Phase        float64 // degrees
	Harmonics    []uint
	HarmonicAmps []float64
}

// Harmonic is an integer-multiple overtone of a tone
type Harmonic struct {
	Multiplier uint
	Amplitude  float64
}

// Tone is a validated ToneDescriptor with its phase in radians
type Tone struct {
	Amplitude    float64
	Frequency    float64
	PhaseDegrees float64
	Harmonics    []Harmonic

	phase float64
}

// ResolveTone pairs up the harmonic lists. When their lengths differ both
// are dropped and the tone keeps only its fundamental. Pairs with a zero
// multiplier are dropped individually.
func ResolveTone(d ToneDescriptor, source string) (Tone, Diagnostics) {
	t := Tone{
		Amplitude:    d.Amplitude,
		Frequency:    d.Frequency,
		PhaseDegrees: d.Phase,
		phase:        math.Pi * d.Phase / 180.0,
	}

	if len(d.Harmonics) != len(d.HarmonicAmps) {
		return t, Diagnostics{{
			Kind:   KindHarmonicCountMismatch,
			Source: source,
			Message: fmt.Sprintf("number of harmonics (%d) doesn't match number of amplitudes (%d) for %g Hz tone",
				len(d.Harmonics), len(d.HarmonicAmps), d.Frequency),
		}}
	}

	var diags Diagnostics
	for k, m := range d.Harmonics {
		if m == 0 {
			diags = append(diags, Diagnostic{
				Kind:    KindInvalidHarmonic,
				Source:  source,
				Message: fmt.Sprintf("harmonic multiplier 0 (amplitude %g) dropped from %g Hz tone", d.HarmonicAmps[k], d.Frequency),
			})
			continue
		}
		t.Harmonics = append(t.Harmonics, Harmonic{Multiplier: m, Amplitude: d.HarmonicAmps[k]})
	}
	return t, diags
}

// finite reports whether every numeric field of the tone is a real number
func (d ToneDescriptor) finite() bool {
	if !isFinite(d.Amplitude) || !isFinite(d.Frequency) || !isFinite(d.Phase) {
		return false
	}
	for _, a := range d.HarmonicAmps {
		if !isFinite(a) {
			return false
		}
	}
	return true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Sample returns the tone's contribution at angle x = 2*pi*i/sampleRate
// scaled by the envelope gain.
func (t Tone) Sample(x, gain float64) float64 {
	h := gain * t.Amplitude * math.Sin(t.Frequency*x+t.phase)
	for _, hm := range t.Harmonics {
		h += hm.Amplitude * gain * math.Sin(float64(hm.Multiplier)*t.Frequency*x+t.phase)
	}
	return h
}

// TotalAmplitude is the base amplitude plus every harmonic amplitude
func (t Tone) TotalAmplitude() float64 {
	sum := t.Amplitude
	for _, hm := range t.Harmonics {
		sum += hm.Amplitude
	}
	return sum
}

// Radians returns the phase in radians
func (t Tone) Radians() float64 {
	return t.phase
}

func (t Tone) String() string {
	s := fmt.Sprintf("%4.2f %7.2f %.2f, Harmonics: ", t.Amplitude, t.Frequency, t.PhaseDegrees)
	for _, hm := range t.Harmonics {
		s += fmt.Sprintf("%d@%4.2f  ", hm.Multiplier, hm.Amplitude)
	}
	return s
}
