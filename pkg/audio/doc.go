// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines SampleRate, Waveform, Format and sample conversions
// Package audio provides the fundamental types shared by the synthesis packages.
//
// This package defines:
//   - SampleRate: the fixed set of supported generation rates
//   - Waveform: an append-only buffer of normalized float64 samples
//   - Format: describes an encoded sample stream (codec, rate, bit depth)
//
// Example:
//
//	rate, err := audio.ParseSampleRate(9600)
//	w := audio.NewWaveform(int(rate.SamplesFor(100)))
//	w.AppendSilence(rate.SamplesFor(100)) // 960 zero samples
package audio
