// ABOUTME: YAML description loader
// ABOUTME: Maps a YAML document onto the same sequence model as the XML loader
package describe

import (
	"errors"
	"fmt"

	"github.com/tonewright/seqgen/pkg/sequence"
	"github.com/tonewright/seqgen/pkg/synth"
	"gopkg.in/yaml.v3"
)

type yamlSequence struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	SampleRate  uint          `yaml:"sampleRate"`
	Segments    []yamlSegment `yaml:"segments"`
}

// yamlSegment holds exactly one of its fields
type yamlSegment struct {
	Silence  *uint         `yaml:"silence"`
	Signal   *yamlSignal   `yaml:"signal"`
	DTMF     *yamlDTMF     `yaml:"dtmf"`
	Sequence *yamlSequence `yaml:"sequence"`
}

type yamlSignal struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	SampleRate  uint       `yaml:"sampleRate"`
	Duration    uint       `yaml:"duration"`
	Samples     uint       `yaml:"samples"`
	RiseFactor  float64    `yaml:"riseFactor"`
	FallFactor  float64    `yaml:"fallFactor"`
	Tones       []yamlTone `yaml:"tones"`
}

type yamlTone struct {
	Amp          *float64  `yaml:"amp"`
	Freq         *float64  `yaml:"freq"`
	Phase        float64   `yaml:"phase"`
	Harmonics    []uint    `yaml:"harmonics"`
	HarmonicAmps []float64 `yaml:"harmonicAmps"`
}

type yamlDTMF struct {
	Digits  string `yaml:"digits"`
	OnTime  *uint  `yaml:"onTime"`
	OffTime *uint  `yaml:"offTime"`
}

type yamlDocument struct {
	yamlSequence `yaml:",inline"`
	Signal       *yamlSignal `yaml:"signal"`
}

// ParseYAML reads a YAML description. A document with a top-level "signal"
// key and no segments is wrapped as a one-segment sequence.
func (l *Loader) ParseYAML(data []byte) (*sequence.Sequence, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML description: %w", err)
	}

	if doc.Signal != nil && len(doc.Segments) == 0 {
		sig := doc.Signal.descriptor()
		if sig.LoadErr != nil {
			return nil, fmt.Errorf("signal description: %w", sig.LoadErr)
		}
		return l.wrapSignal(sig)
	}
	return l.buildSequence(&doc.yamlSequence, 0)
}

func (l *Loader) buildSequence(ys *yamlSequence, depth int) (*sequence.Sequence, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("sequences nested deeper than %d", MaxDepth)
	}
	if ys.Name == "" {
		return nil, errors.New("the specified sequence is missing the 'name' field")
	}
	if ys.Description == "" {
		return nil, fmt.Errorf("sequence %q is missing the 'description' field", ys.Name)
	}

	seq := &sequence.Sequence{
		Name:        ys.Name,
		Description: ys.Description,
		SampleRate:  rateOf(ys.SampleRate),
	}

	for i, seg := range ys.Segments {
		segs, err := l.buildSegments(seg, depth)
		if err != nil {
			return nil, fmt.Errorf("sequence %q segment %d: %w", ys.Name, i+1, err)
		}
		for _, s := range segs {
			if err := seq.Add(s); err != nil {
				return nil, err
			}
		}
	}

	l.propagateRate(seq)
	return seq, nil
}

func (l *Loader) buildSegments(seg yamlSegment, depth int) ([]sequence.Segment, error) {
	var out []sequence.Segment
	set := 0

	if seg.Silence != nil {
		set++
		out = append(out, sequence.Silence(*seg.Silence))
	}
	if seg.Signal != nil {
		set++
		out = append(out, sequence.Signal(seg.Signal.descriptor()))
	}
	if seg.DTMF != nil {
		set++
		if seg.DTMF.Digits == "" {
			return nil, errors.New("couldn't get DTMF digits")
		}
		on, off := uint(synth.DefaultDTMFDuration), uint(synth.DefaultDTMFDuration)
		if seg.DTMF.OnTime != nil {
			on = *seg.DTMF.OnTime
		}
		if seg.DTMF.OffTime != nil {
			off = *seg.DTMF.OffTime
		}
		out = append(out, sequence.DTMFString(seg.DTMF.Digits, on, off)...)
	}
	if seg.Sequence != nil {
		set++
		child, err := l.buildSequence(seg.Sequence, depth+1)
		if err != nil {
			return nil, fmt.Errorf("nested sequence: %w", err)
		}
		out = append(out, sequence.Nested(child))
	}

	if set != 1 {
		return nil, fmt.Errorf("segment must set exactly one of silence, signal, dtmf or sequence (got %d)", set)
	}
	return out, nil
}

// descriptor never fails. Missing fields are recorded in LoadErr.
func (ys *yamlSignal) descriptor() synth.SignalDescriptor {
	sig := synth.SignalDescriptor{
		Name:        ys.Name,
		Description: ys.Description,
		SampleRate:  rateOf(ys.SampleRate),
		DurationMs:  ys.Duration,
		Samples:     ys.Samples,
		RiseFactor:  ys.RiseFactor / 100.0,
		FallFactor:  ys.FallFactor / 100.0,
	}

	var errs []error
	if ys.Name == "" {
		errs = append(errs, errors.New("the specified signal is missing the 'name' field"))
	}
	if ys.Description == "" {
		errs = append(errs, errors.New("the specified signal is missing the 'description' field"))
	}
	for i, t := range ys.Tones {
		if t.Amp == nil || t.Freq == nil {
			errs = append(errs, fmt.Errorf("tone %d is missing 'amp' or 'freq'", i+1))
			continue
		}
		sig.Tones = append(sig.Tones, synth.ToneDescriptor{
			Amplitude:    *t.Amp,
			Frequency:    *t.Freq,
			Phase:        t.Phase,
			Harmonics:    t.Harmonics,
			HarmonicAmps: t.HarmonicAmps,
		})
	}
	sig.LoadErr = errors.Join(errs...)
	return sig
}
