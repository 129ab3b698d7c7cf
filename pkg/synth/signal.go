// ABOUTME: Composite signal generator
// ABOUTME: Resolves signal descriptors and sums their tones under an envelope
package synth

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tonewright/seqgen/pkg/audio"
	"go.uber.org/zap"
)

// MaxTones is the largest number of tones one signal may hold
const MaxTones = 64

// SignalDescriptor describes a sum of tones over a fixed span.
// Exactly one of DurationMs and Samples is expected to be set; when both are,
// Samples wins. Rise and fall factors are fractions of the span.
type SignalDescriptor struct {
	Name        string
	Description string
	SampleRate  audio.SampleRate
	DurationMs  uint
	Samples     uint
	RiseFactor  float64
	FallFactor  float64
	Tones       []ToneDescriptor

	// LoadErr is set by the loader when the descriptor's source could not be
	// read completely.
	LoadErr error
}

// WithSampleRate returns a copy of d generated at rate r
func (d SignalDescriptor) WithSampleRate(r audio.SampleRate) SignalDescriptor {
	d.SampleRate = r
	return d
}

// ResolvedSignal is a validated signal ready for generation
type ResolvedSignal struct {
	Name         string
	Description  string
	SampleRate   audio.SampleRate
	Samples      uint
	DurationMs   uint
	RiseFactor   float64
	FallFactor   float64
	MaxAmplitude float64
	Tones        []Tone

	envelope Envelope
}

// ResolveSignal validates d, corrects recoverable anomalies and derives the
// sample count, duration and normalization divisor. Diagnostics are returned
// even when err is non-nil.
func ResolveSignal(d SignalDescriptor) (*ResolvedSignal, Diagnostics, error) {
	var diags Diagnostics

	r := &ResolvedSignal{
		Name:        d.Name,
		Description: d.Description,
		SampleRate:  d.SampleRate,
		Samples:     d.Samples,
		DurationMs:  d.DurationMs,
		RiseFactor:  d.RiseFactor,
		FallFactor:  d.FallFactor,
	}

	if !validFactor(r.RiseFactor) {
		diags = append(diags, Diagnostic{
			Kind:    KindInvalidEnvelopeFactor,
			Source:  d.Name,
			Message: fmt.Sprintf("bad rise factor %g%%, using %g%%", r.RiseFactor*100, EnvelopeFactorDefault*100),
		})
		r.RiseFactor = EnvelopeFactorDefault
	}
	if !validFactor(r.FallFactor) {
		diags = append(diags, Diagnostic{
			Kind:    KindInvalidEnvelopeFactor,
			Source:  d.Name,
			Message: fmt.Sprintf("bad fall factor %g%%, using %g%%", r.FallFactor*100, EnvelopeFactorDefault*100),
		})
		r.FallFactor = EnvelopeFactorDefault
	}

	r.Tones = make([]Tone, 0, len(d.Tones))
	for _, td := range d.Tones {
		t, toneDiags := ResolveTone(td, d.Name)
		diags = append(diags, toneDiags...)
		r.Tones = append(r.Tones, t)
		r.MaxAmplitude += t.TotalAmplitude()
	}

	var errs []error
	if d.LoadErr != nil {
		errs = append(errs, invalid(KindUnloadedDescriptor, "signal %q: %v", d.Name, d.LoadErr))
	}
	if !d.SampleRate.Valid() {
		errs = append(errs, invalid(KindInvalidSampleRate, "bad sample rate %d", d.SampleRate))
	}
	nonFinite := false
	for n, td := range d.Tones {
		if !td.finite() {
			nonFinite = true
			errs = append(errs, invalid(KindNonFiniteValue, "tone %d of %q has a NaN or infinite field", n+1, d.Name))
		}
	}
	switch {
	case len(d.Tones) < 1 || len(d.Tones) > MaxTones:
		errs = append(errs, invalid(KindInvalidToneCount, "invalid number of tones %d (allowed 1..%d)", len(d.Tones), MaxTones))
	case nonFinite:
	case !isFinite(r.MaxAmplitude):
		errs = append(errs, invalid(KindNonFiniteValue, "tone amplitudes of %q overflow", d.Name))
	case r.MaxAmplitude == 0:
		errs = append(errs, invalid(KindZeroAmplitude, "tone amplitudes of %q sum to zero", d.Name))
	}
	if len(errs) > 0 {
		return nil, diags, errors.Join(errs...)
	}

	if r.Samples == 0 {
		r.Samples = r.SampleRate.SamplesFor(r.DurationMs)
	} else if r.DurationMs == 0 {
		r.DurationMs = r.SampleRate.MillisFor(r.Samples)
	}
	r.envelope = NewEnvelope(r.Samples, r.RiseFactor, r.FallFactor)

	return r, diags, nil
}

// Envelope returns the envelope applied to the signal
func (r *ResolvedSignal) Envelope() Envelope {
	return r.envelope
}

// SampleAt returns the normalized sample for index i
func (r *ResolvedSignal) SampleAt(i uint) float64 {
	x := 2.0 * math.Pi * float64(i) / float64(r.SampleRate)
	gain := r.envelope.Gain(i)

	h := 0.0
	for _, t := range r.Tones {
		h += t.Sample(x, gain)
	}
	return h / r.MaxAmplitude
}

// AppendTo appends every sample of the signal to w and returns the largest
// absolute sample value. Samples outside [-1, 1] are left as they are.
func (r *ResolvedSignal) AppendTo(w *audio.Waveform) float64 {
	w.Grow(int(r.Samples))
	peak := 0.0
	for i := uint(0); i < r.Samples; i++ {
		h := r.SampleAt(i)
		if a := math.Abs(h); a > peak {
			peak = a
		}
		w.Append(h)
	}
	return peak
}

// Generate returns the signal's samples in a new waveform
func (r *ResolvedSignal) Generate() (*audio.Waveform, float64) {
	w := audio.NewWaveform(int(r.Samples))
	peak := r.AppendTo(w)
	return w, peak
}

// Info returns a summary of the resolved signal
func (r *ResolvedSignal) Info() SignalInfo {
	return SignalInfo{
		Name:         r.Name,
		Description:  r.Description,
		SampleRate:   r.SampleRate,
		Samples:      r.Samples,
		DurationMs:   r.DurationMs,
		RiseFactor:   r.RiseFactor,
		FallFactor:   r.FallFactor,
		MaxAmplitude: r.MaxAmplitude,
		Tones:        r.Tones,
	}
}

// Info summarizes the descriptor. Fields that depend on a valid sample rate
// stay zero when the descriptor does not resolve.
func (d SignalDescriptor) Info() SignalInfo {
	if r, _, err := ResolveSignal(d); err == nil {
		return r.Info()
	}
	info := SignalInfo{
		Name:        d.Name,
		Description: d.Description,
		SampleRate:  d.SampleRate,
		Samples:     d.Samples,
		DurationMs:  d.DurationMs,
		RiseFactor:  d.RiseFactor,
		FallFactor:  d.FallFactor,
	}
	for _, td := range d.Tones {
		t, _ := ResolveTone(td, d.Name)
		info.Tones = append(info.Tones, t)
		info.MaxAmplitude += t.TotalAmplitude()
	}
	return info
}

// SignalInfo is a human-readable summary of a signal
type SignalInfo struct {
	Name         string
	Description  string
	SampleRate   audio.SampleRate
	Samples      uint
	DurationMs   uint
	RiseFactor   float64
	FallFactor   float64
	MaxAmplitude float64
	Tones        []Tone
}

func (i SignalInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Signal: %s\n", i.Name)
	fmt.Fprintf(&b, "  Description: %s\n", i.Description)
	fmt.Fprintf(&b, "  Sample Rate: %d\n", i.SampleRate)
	fmt.Fprintf(&b, "  Number of tones: %d\n", len(i.Tones))
	fmt.Fprintf(&b, "  Number of Samples: %d = %d mS\n", i.Samples, i.DurationMs)
	fmt.Fprintf(&b, "  Rise time: %g%% of duration = %g mS\n", i.RiseFactor*100, i.RiseFactor*float64(i.DurationMs))
	fmt.Fprintf(&b, "  Fall time: %g%% of duration = %g mS\n", i.FallFactor*100, i.FallFactor*float64(i.DurationMs))
	fmt.Fprintf(&b, "  Maximum amplitude: %.2f\n", i.MaxAmplitude)
	b.WriteString("  Tones:\n")
	for n, t := range i.Tones {
		fmt.Fprintf(&b, "    %3d | %s\n", n+1, t)
	}
	return b.String()
}

// SignalGenerator generates composite signals
type SignalGenerator struct {
	logger *zap.Logger
}

// NewSignalGenerator creates a signal generator
func NewSignalGenerator(opts ...Option) *SignalGenerator {
	o := buildOptions(opts)
	return &SignalGenerator{logger: o.logger}
}

// Generate resolves d and synthesizes it. On error no samples are produced.
func (g *SignalGenerator) Generate(d SignalDescriptor) (Result, error) {
	logger := g.logger.With(zap.String("signal", d.Name))

	r, diags, err := ResolveSignal(d)
	for _, diag := range diags {
		logger.Warn("corrected signal descriptor",
			zap.String("kind", string(diag.Kind)),
			zap.String("detail", diag.Message))
	}
	if err != nil {
		return Result{Diagnostics: diags}, fmt.Errorf("signal %q: %w", d.Name, err)
	}

	w, peak := r.Generate()
	logger.Info("signal generated",
		zap.Uint("samples", r.Samples),
		zap.Float64("peak", peak),
		zap.Float64("peakDB", audio.Decibels(peak)))

	return Result{Waveform: w, Diagnostics: diags, Peak: peak}, nil
}
