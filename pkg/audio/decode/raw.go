// ABOUTME: Raw float audio decoder
// ABOUTME: Decodes little-endian float32 or float64 bytes to samples
package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tonewright/seqgen/pkg/audio"
)

// RawDecoder decodes raw float audio
type RawDecoder struct {
	bitDepth int
}

// NewRaw creates a new raw decoder
func NewRaw(format audio.Format) (Decoder, error) {
	if format.Codec != "raw" {
		return nil, fmt.Errorf("invalid codec for raw decoder: %s", format.Codec)
	}

	if format.BitDepth != 32 && format.BitDepth != 64 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 32, 64)", format.BitDepth)
	}

	return &RawDecoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Decode converts raw float bytes to samples
func (d *RawDecoder) Decode(data []byte) ([]float64, error) {
	width := d.bitDepth / 8
	if len(data)%width != 0 {
		return nil, fmt.Errorf("truncated raw data: %d bytes is not a multiple of %d", len(data), width)
	}

	numSamples := len(data) / width
	samples := make([]float64, numSamples)
	if d.bitDepth == 64 {
		for i := 0; i < numSamples; i++ {
			samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return samples, nil
	}

	for i := 0; i < numSamples; i++ {
		sample32 := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		samples[i] = audio.SampleFromFloat32(sample32)
	}
	return samples, nil
}

// Close releases resources
func (d *RawDecoder) Close() error {
	return nil
}
