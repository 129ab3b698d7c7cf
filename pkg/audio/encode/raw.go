// ABOUTME: Raw float audio encoder
// ABOUTME: Encodes samples to little-endian float32 or float64 bytes
package encode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tonewright/seqgen/pkg/audio"
)

// CodecRaw names headerless little-endian IEEE-754 samples
const CodecRaw = "raw"

// RawEncoder encodes raw float audio
type RawEncoder struct {
	bitDepth int
}

// NewRaw creates a new raw encoder
func NewRaw(format audio.Format) (Encoder, error) {
	if format.Codec != CodecRaw {
		return nil, fmt.Errorf("invalid codec for raw encoder: %s", format.Codec)
	}

	if format.BitDepth != 32 && format.BitDepth != 64 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 32, 64)", format.BitDepth)
	}

	return &RawEncoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Encode converts samples to raw float bytes
func (e *RawEncoder) Encode(samples []float64) ([]byte, error) {
	if e.bitDepth == 64 {
		output := make([]byte, len(samples)*8)
		for i, sample := range samples {
			binary.LittleEndian.PutUint64(output[i*8:], math.Float64bits(sample))
		}
		return output, nil
	}

	output := make([]byte, len(samples)*4)
	for i, sample := range samples {
		binary.LittleEndian.PutUint32(output[i*4:], math.Float32bits(audio.SampleToFloat32(sample)))
	}
	return output, nil
}

// Close releases resources
func (e *RawEncoder) Close() error {
	return nil
}
