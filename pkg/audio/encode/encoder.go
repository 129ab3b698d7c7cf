// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for all waveform encoders
package encode

import (
	"fmt"

	"github.com/tonewright/seqgen/pkg/audio"
)

// Encoder encodes float64 samples to bytes
type Encoder interface {
	// Encode converts samples to encoded data
	Encode(samples []float64) ([]byte, error)

	// Close releases encoder resources
	Close() error
}

// New returns the encoder matching format.Codec
func New(format audio.Format) (Encoder, error) {
	switch format.Codec {
	case CodecRaw:
		return NewRaw(format)
	case CodecText:
		return NewText(format)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", format.Codec)
	}
}
