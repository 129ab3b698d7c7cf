// ABOUTME: DTMF dual-tone burst generator
// ABOUTME: Maps keypad digits to tone pairs and emits tone plus gap
package synth

import (
	"fmt"
	"math"

	"github.com/tonewright/seqgen/pkg/audio"
	"go.uber.org/zap"
)

// DefaultDTMFDuration is the on and off time used when a loader gives none
const DefaultDTMFDuration = 50 // milliseconds

// DTMFDescriptor describes one keypad digit burst followed by a silent gap
type DTMFDescriptor struct {
	Digit byte
	OnMs  uint
	OffMs uint
}

// DTMFDigits lists every recognized digit
const DTMFDigits = "0123456789*#ABCD"

// DTMFFrequencies returns the low- and high-band frequencies for digit
func DTMFFrequencies(digit byte) (low, high float64, ok bool) {
	switch digit {
	case '1', '2', '3', 'A':
		low = 697
	case '4', '5', '6', 'B':
		low = 770
	case '7', '8', '9', 'C':
		low = 852
	case '*', '0', '#', 'D':
		low = 941
	default:
		return 0, 0, false
	}

	switch digit {
	case '1', '4', '7', '*':
		high = 1209
	case '2', '5', '8', '0':
		high = 1336
	case '3', '6', '9', '#':
		high = 1477
	case 'A', 'B', 'C', 'D':
		high = 1633
	}
	return low, high, true
}

// DTMFGenerator generates DTMF bursts
type DTMFGenerator struct {
	logger *zap.Logger
}

// NewDTMFGenerator creates a DTMF generator
func NewDTMFGenerator(opts ...Option) *DTMFGenerator {
	o := buildOptions(opts)
	return &DTMFGenerator{logger: o.logger}
}

// Generate emits OnMs of (sin(low)+sin(high))/2 followed by OffMs of zeros.
// An unrecognized digit yields a silent burst of the same length and an
// UnrecognizedDtmfDigit diagnostic.
func (g *DTMFGenerator) Generate(d DTMFDescriptor, rate audio.SampleRate) (Result, error) {
	if !rate.Valid() {
		return Result{}, fmt.Errorf("dtmf %q: %w", d.Digit, invalid(KindInvalidSampleRate, "bad sample rate %d", rate))
	}

	var diags Diagnostics
	low, high, ok := DTMFFrequencies(d.Digit)
	if !ok {
		diag := Diagnostic{
			Kind:    KindUnrecognizedDTMFDigit,
			Source:  string(d.Digit),
			Message: fmt.Sprintf("invalid DTMF tone specified: %q", d.Digit),
		}
		diags = append(diags, diag)
		g.logger.Warn("unrecognized dtmf digit", zap.String("digit", string(d.Digit)))
	}

	onSamples := rate.SamplesFor(d.OnMs)
	offSamples := rate.SamplesFor(d.OffMs)
	w := audio.NewWaveform(int(onSamples + offSamples))

	lowStep := 2.0 * math.Pi * low / float64(rate)
	highStep := 2.0 * math.Pi * high / float64(rate)
	peak := 0.0
	for i := uint(0); i < onSamples; i++ {
		h := (math.Sin(float64(i)*lowStep) + math.Sin(float64(i)*highStep)) / 2.0
		if a := math.Abs(h); a > peak {
			peak = a
		}
		w.Append(h)
	}
	w.AppendSilence(offSamples)

	return Result{Waveform: w, Diagnostics: diags, Peak: peak}, nil
}
