// ABOUTME: Text waveform encoder
// ABOUTME: Writes one fixed-precision sample per line
package encode

import (
	"bytes"
	"fmt"

	"github.com/tonewright/seqgen/pkg/audio"
)

// CodecText names the line-per-sample text dump
const CodecText = "text"

// TextEncoder formats each sample as "%11.8f\n" after narrowing to float32,
// so the text matches the 32-bit raw output value for value.
type TextEncoder struct{}

// NewText creates a new text encoder
func NewText(format audio.Format) (Encoder, error) {
	if format.Codec != CodecText {
		return nil, fmt.Errorf("invalid codec for text encoder: %s", format.Codec)
	}
	return &TextEncoder{}, nil
}

// Encode converts samples to text lines
func (e *TextEncoder) Encode(samples []float64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(samples) * 12)
	for _, sample := range samples {
		fmt.Fprintf(&buf, "%11.8f\n", audio.SampleToFloat32(sample))
	}
	return buf.Bytes(), nil
}

// Close releases resources
func (e *TextEncoder) Close() error {
	return nil
}
