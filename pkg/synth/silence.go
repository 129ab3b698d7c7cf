// ABOUTME: Silence generator
// ABOUTME: Emits runs of zero samples
package synth

import (
	"fmt"

	"github.com/tonewright/seqgen/pkg/audio"
	"go.uber.org/zap"
)

// SilenceGenerator generates silent gaps
type SilenceGenerator struct {
	logger *zap.Logger
}

// NewSilenceGenerator creates a silence generator
func NewSilenceGenerator(opts ...Option) *SilenceGenerator {
	o := buildOptions(opts)
	return &SilenceGenerator{logger: o.logger}
}

// Generate returns floor(durationMs*rate/1000) zero samples
func (g *SilenceGenerator) Generate(durationMs uint, rate audio.SampleRate) (Result, error) {
	if !rate.Valid() {
		return Result{}, fmt.Errorf("silence: %w", invalid(KindInvalidSampleRate, "bad sample rate %d", rate))
	}

	n := rate.SamplesFor(durationMs)
	w := audio.NewWaveform(int(n))
	w.AppendSilence(n)
	g.logger.Debug("silence generated", zap.Uint("ms", durationMs), zap.Uint("samples", n))

	return Result{Waveform: w}, nil
}
