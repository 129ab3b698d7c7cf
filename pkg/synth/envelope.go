// ABOUTME: Linear rise/fall amplitude envelope
// ABOUTME: Computes the gain applied to each sample of a signal
package synth

import "math"

// Envelope factor bounds, as fractions of the signal length
const (
	EnvelopeFactorMin     = 0.0
	EnvelopeFactorMax     = 0.8
	EnvelopeFactorDefault = 0.0
)

// Envelope ramps gain linearly from 0 to 1 over the first RiseSamples samples,
// holds at 1, then ramps down by 1/FallSamples per sample after FallStart.
type Envelope struct {
	n         uint
	rise      uint
	fall      uint
	fallStart uint
	decayFrom uint
}

// NewEnvelope builds the envelope for n samples. Factors are fractions of n.
func NewEnvelope(n uint, riseFactor, fallFactor float64) Envelope {
	rise := uint(riseFactor * float64(n))
	fall := uint(fallFactor * float64(n))
	if fall > n {
		fall = n
	}
	e := Envelope{
		n:         n,
		rise:      rise,
		fall:      fall,
		fallStart: n - fall,
	}
	// The hold value of 1.0 is reached at index rise and is still in effect
	// at fallStart+1; the ramp down starts from whichever comes later.
	e.decayFrom = e.fallStart + 1
	if rise > e.decayFrom {
		e.decayFrom = rise
	}
	return e
}

// Gain returns the multiplier for sample index i.
// A zero-length rise starts at full gain and a zero-length fall never decays.
func (e Envelope) Gain(i uint) float64 {
	if e.rise > 0 && i <= e.rise {
		return float64(i) / float64(e.rise)
	}
	if e.fall > 0 && i > e.decayFrom {
		return math.Max(0, 1.0-float64(i-e.decayFrom)/float64(e.fall))
	}
	return 1.0
}

// Len returns the number of samples the envelope covers
func (e Envelope) Len() uint { return e.n }

// RiseSamples returns floor(riseFactor*n)
func (e Envelope) RiseSamples() uint { return e.rise }

// FallSamples returns floor(fallFactor*n)
func (e Envelope) FallSamples() uint { return e.fall }

// FallStart returns n - FallSamples
func (e Envelope) FallStart() uint { return e.fallStart }

// validFactor reports whether f is inside [EnvelopeFactorMin, EnvelopeFactorMax]
func validFactor(f float64) bool {
	return !math.IsNaN(f) && f >= EnvelopeFactorMin && f <= EnvelopeFactorMax
}
