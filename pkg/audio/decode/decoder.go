// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all waveform decoders
package decode

// Decoder decodes encoded waveform data to float64 samples
type Decoder interface {
	// Decode converts encoded data to samples
	Decode(data []byte) ([]float64, error)

	// Close releases decoder resources
	Close() error
}
