// ABOUTME: Description loader entry points
// ABOUTME: Picks the XML or YAML decoder for a file and applies rate propagation
package describe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tonewright/seqgen/pkg/audio"
	"github.com/tonewright/seqgen/pkg/sequence"
	"github.com/tonewright/seqgen/pkg/synth"
	"go.uber.org/zap"
)

// MaxDepth bounds how deeply sequences may nest in one document
const MaxDepth = 16

// Format of a description document
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// FormatFor picks a format from a file extension. Unknown extensions are XML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatXML
	}
}

// Loader turns description documents into sequences
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadFile reads path and returns the sequence it describes along with the
// raw document bytes
func (l *Loader) LoadFile(path string) (*sequence.Sequence, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read description: %w", err)
	}

	seq, err := l.Parse(data, FormatFor(path))
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return seq, data, nil
}

// Parse decodes data in the given format
func (l *Loader) Parse(data []byte, format Format) (*sequence.Sequence, error) {
	switch format {
	case FormatYAML:
		return l.ParseYAML(data)
	case FormatXML:
		return l.ParseXML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported description format: %s", format)
	}
}

func (l *Loader) wrapSignal(sig synth.SignalDescriptor) (*sequence.Sequence, error) {
	return sequence.New(sig.Name, sig.Description, sig.SampleRate, sequence.Signal(sig))
}

// propagateRate gives a sequence without a valid rate the rate of its first
// signal
func (l *Loader) propagateRate(seq *sequence.Sequence) {
	rate, adopted := seq.ResolveRate()
	if !adopted {
		return
	}
	l.logger.Warn("sequence is missing a sample rate, using signal's",
		zap.String("sequence", seq.Name),
		zap.Uint32("rate", uint32(rate)))
	seq.SampleRate = rate
}

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func parseUintList(s string) ([]uint, error) {
	var out []uint
	for _, f := range splitList(s) {
		v, err := parseUint(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	var out []float64
	for _, f := range splitList(s) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// rateOf converts a document rate, leaving unsupported values as they are so
// the generator reports them
func rateOf(v uint) audio.SampleRate {
	return audio.SampleRate(v)
}
