// ABOUTME: Additive waveform synthesis: tones, envelopes, signals, DTMF and silence
// ABOUTME: Turns validated descriptors into normalized sample runs
// Package synth generates normalized sample runs from declarative descriptors.
//
// Generation is two-phase. ResolveSignal validates a SignalDescriptor, corrects
// recoverable anomalies (reported as Diagnostics), derives the sample count or
// duration, and precomputes the normalization divisor. The resulting
// ResolvedSignal is immutable and Generate on it is a pure function: calling it
// twice yields bit-identical samples.
//
// Recoverable anomalies never abort generation:
//   - harmonic multiplier/amplitude lists of different length are both cleared
//   - rise/fall factors outside [0, 0.8] are reset to 0
//   - unknown DTMF digits produce a silent burst
//
// Precondition failures (bad sample rate, tone count, unloaded descriptor, zero
// total amplitude) return a *ValidationError and produce no samples.
//
// Example:
//
//	gen := synth.NewSignalGenerator(synth.WithLogger(logger))
//	res, err := gen.Generate(synth.SignalDescriptor{
//	    Name:       "A4",
//	    SampleRate: audio.SampleRate9600,
//	    DurationMs: 250,
//	    Tones:      []synth.ToneDescriptor{{Amplitude: 1, Frequency: 440}},
//	})
package synth
