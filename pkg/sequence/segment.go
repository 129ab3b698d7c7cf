// ABOUTME: Segment sum type and the Sequence container
// ABOUTME: Defines the four segment cases and sequence summaries
package sequence

import (
	"fmt"
	"strings"

	"github.com/tonewright/seqgen/pkg/audio"
	"github.com/tonewright/seqgen/pkg/synth"
)

// MaxSegments is the largest number of segments one sequence may hold
const MaxSegments = 64

// Kind identifies a segment case
type Kind int

const (
	KindSequence Kind = iota
	KindSignal
	KindDTMF
	KindSilence

	// KindMissing marks a nil entry in a segment list
	KindMissing Kind = -1
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindSignal:
		return "signal"
	case KindDTMF:
		return "dtmf"
	case KindSilence:
		return "silence"
	case KindMissing:
		return "missing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Segment is one element of a sequence. The set of implementations is closed.
type Segment interface {
	Kind() Kind
	Label() string
	isSegment()
}

// SequenceSegment nests another sequence
type SequenceSegment struct {
	Sequence *Sequence
}

// SignalSegment holds a composite signal
type SignalSegment struct {
	Signal synth.SignalDescriptor
}

// DTMFSegment holds one DTMF digit burst
type DTMFSegment struct {
	DTMF synth.DTMFDescriptor
}

// SilenceSegment holds a silent gap
type SilenceSegment struct {
	DurationMs uint
}

func (SequenceSegment) Kind() Kind { return KindSequence }
func (SignalSegment) Kind() Kind   { return KindSignal }
func (DTMFSegment) Kind() Kind     { return KindDTMF }
func (SilenceSegment) Kind() Kind  { return KindSilence }

func (SequenceSegment) isSegment() {}
func (SignalSegment) isSegment()   {}
func (DTMFSegment) isSegment()     {}
func (SilenceSegment) isSegment()  {}

func (s SequenceSegment) Label() string {
	if s.Sequence == nil {
		return ""
	}
	return s.Sequence.Name
}
func (s SignalSegment) Label() string  { return s.Signal.Name }
func (s DTMFSegment) Label() string    { return string(s.DTMF.Digit) }
func (s SilenceSegment) Label() string { return fmt.Sprintf("%d mS", s.DurationMs) }

// Nested wraps a sequence as a segment
func Nested(s *Sequence) Segment { return SequenceSegment{Sequence: s} }

// Signal wraps a signal descriptor as a segment
func Signal(d synth.SignalDescriptor) Segment { return SignalSegment{Signal: d} }

// DTMF builds a single-digit DTMF segment
func DTMF(digit byte, onMs, offMs uint) Segment {
	return DTMFSegment{DTMF: synth.DTMFDescriptor{Digit: digit, OnMs: onMs, OffMs: offMs}}
}

// DTMFString builds one DTMF segment per character of digits
func DTMFString(digits string, onMs, offMs uint) []Segment {
	out := make([]Segment, 0, len(digits))
	for i := 0; i < len(digits); i++ {
		out = append(out, DTMF(digits[i], onMs, offMs))
	}
	return out
}

// Silence builds a silent gap segment
func Silence(ms uint) Segment { return SilenceSegment{DurationMs: ms} }

// Sequence is a named, ordered list of segments sharing a sample rate
type Sequence struct {
	Name        string
	Description string
	SampleRate  audio.SampleRate
	Segments    []Segment
}

// New creates a sequence, refusing more than MaxSegments segments
func New(name, description string, rate audio.SampleRate, segments ...Segment) (*Sequence, error) {
	s := &Sequence{Name: name, Description: description, SampleRate: rate}
	for _, seg := range segments {
		if err := s.Add(seg); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a segment
func (s *Sequence) Add(seg Segment) error {
	if len(s.Segments) >= MaxSegments {
		return fmt.Errorf("sequence %q: %w", s.Name, &synth.ValidationError{
			Kind:   synth.KindTooManySegments,
			Detail: fmt.Sprintf("more than %d segments", MaxSegments),
		})
	}
	s.Segments = append(s.Segments, seg)
	return nil
}

// Len returns the number of direct segments
func (s *Sequence) Len() int { return len(s.Segments) }

// ResolveRate returns the rate the sequence generates at. A sequence without a
// valid rate adopts the first signal's valid rate; adopted reports that case.
func (s *Sequence) ResolveRate() (rate audio.SampleRate, adopted bool) {
	if s.SampleRate.Valid() {
		return s.SampleRate, false
	}
	for _, seg := range s.Segments {
		if sig, ok := seg.(SignalSegment); ok && sig.Signal.SampleRate.Valid() {
			return sig.Signal.SampleRate, true
		}
	}
	return s.SampleRate, false
}

// Info returns a summary of the sequence
func (s *Sequence) Info() Info {
	info := Info{
		Name:        s.Name,
		Description: s.Description,
		SampleRate:  s.SampleRate,
		Segments:    len(s.Segments),
	}
	for _, seg := range s.Segments {
		info.Kinds = append(info.Kinds, seg.Kind())
	}
	return info
}

// Info is a human-readable summary of a sequence
type Info struct {
	Name        string
	Description string
	SampleRate  audio.SampleRate
	Segments    int
	Kinds       []Kind
}

func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sequence: %s\n", i.Name)
	fmt.Fprintf(&b, "  Description: %s\n", i.Description)
	fmt.Fprintf(&b, "  Sample Rate: %d\n", i.SampleRate)
	fmt.Fprintf(&b, "  Segments   : %d\n", i.Segments)
	return b.String()
}
