// ABOUTME: Audio encoder package for serializing waveforms
// ABOUTME: Provides Encoder interface and implementations for raw floats and text
// Package encode provides waveform encoders.
//
// Supports: raw little-endian float32/float64, text (one sample per line)
//
// All encoders accept float64 samples as produced by the synth package.
//
// Example:
//
//	encoder, err := encode.NewRaw(audio.Format{Codec: "raw", BitDepth: 32})
//	data, err := encoder.Encode(w.Samples())
package encode
