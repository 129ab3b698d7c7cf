// ABOUTME: Audio decoder package for reading serialized waveforms
// ABOUTME: Provides Decoder interface and the raw float implementation
// Package decode provides waveform decoders.
//
// Supports: raw little-endian float32/float64
//
// Example:
//
//	decoder, err := decode.NewRaw(audio.Format{Codec: "raw", BitDepth: 64})
//	samples, err := decoder.Decode(data)
package decode
