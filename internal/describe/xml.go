// ABOUTME: XML description loader
// ABOUTME: Decodes <Sequence> and <Signal> documents into segments in document order
package describe

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tonewright/seqgen/pkg/sequence"
	"github.com/tonewright/seqgen/pkg/synth"
	"go.uber.org/zap"
)

// ParseXML reads a description whose root element is <Sequence> or <Signal>.
// A bare signal is wrapped in a one-segment sequence at the signal's rate.
func (l *Loader) ParseXML(r io.Reader) (*sequence.Sequence, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("empty description document")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read description: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "Sequence":
			return l.decodeSequence(dec, start, 0)
		case "Signal":
			sig := l.decodeSignal(dec, start)
			if sig.LoadErr != nil {
				return nil, fmt.Errorf("signal description: %w", sig.LoadErr)
			}
			return l.wrapSignal(sig)
		default:
			return nil, fmt.Errorf("unsupported root element <%s> (want Sequence or Signal)", start.Name.Local)
		}
	}
}

func (l *Loader) decodeSequence(dec *xml.Decoder, start xml.StartElement, depth int) (*sequence.Sequence, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("sequences nested deeper than %d", MaxDepth)
	}

	seq := &sequence.Sequence{}
	var haveName, haveDescription bool

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read sequence: %w", err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if !haveName {
				return nil, errors.New("the specified sequence is missing the 'Name' element")
			}
			if !haveDescription {
				return nil, fmt.Errorf("sequence %q is missing the 'Description' element", seq.Name)
			}
			l.propagateRate(seq)
			return seq, nil

		case xml.StartElement:
			switch t.Name.Local {
			case "Name":
				if seq.Name, err = decodeText(dec, t); err != nil {
					return nil, err
				}
				haveName = true

			case "Description":
				if seq.Description, err = decodeText(dec, t); err != nil {
					return nil, err
				}
				haveDescription = true

			case "SampleRate":
				rate, err := decodeUint(dec, t)
				if err != nil {
					return nil, err
				}
				seq.SampleRate = rateOf(rate)

			case "Signal":
				if err := seq.Add(sequence.Signal(l.decodeSignal(dec, t))); err != nil {
					return nil, err
				}

			case "Silence":
				ms, err := decodeUint(dec, t)
				if err != nil {
					return nil, err
				}
				if err := seq.Add(sequence.Silence(ms)); err != nil {
					return nil, err
				}

			case "DTMF":
				segs, err := l.decodeDTMF(dec, t)
				if err != nil {
					return nil, err
				}
				for _, seg := range segs {
					if err := seq.Add(seg); err != nil {
						return nil, err
					}
				}

			case "Sequence":
				child, err := l.decodeSequence(dec, t, depth+1)
				if err != nil {
					return nil, fmt.Errorf("nested sequence: %w", err)
				}
				if err := seq.Add(sequence.Nested(child)); err != nil {
					return nil, err
				}

			default:
				l.logger.Debug("ignoring unknown element", zap.String("element", t.Name.Local))
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		}
	}
}

// decodeSignal never fails outright. Problems in the signal body are recorded
// in LoadErr so the segment keeps its place and fails at generation time.
func (l *Loader) decodeSignal(dec *xml.Decoder, start xml.StartElement) synth.SignalDescriptor {
	var sig synth.SignalDescriptor
	var errs []error
	var haveName, haveDescription bool

	for {
		tok, err := dec.Token()
		if err != nil {
			sig.LoadErr = fmt.Errorf("failed to read signal: %w", err)
			return sig
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if !haveName {
				errs = append(errs, errors.New("the specified signal is missing the 'Name' element"))
			}
			if !haveDescription {
				errs = append(errs, errors.New("the specified signal is missing the 'Description' element"))
			}
			sig.LoadErr = errors.Join(errs...)
			return sig

		case xml.StartElement:
			var err error
			switch t.Name.Local {
			case "Name":
				sig.Name, err = decodeText(dec, t)
				haveName = err == nil
			case "Description":
				sig.Description, err = decodeText(dec, t)
				haveDescription = err == nil
			case "SampleRate":
				var rate uint
				rate, err = decodeUint(dec, t)
				sig.SampleRate = rateOf(rate)
			case "Duration":
				sig.DurationMs, err = decodeUint(dec, t)
				sig.Samples = 0
			case "Samples":
				sig.Samples, err = decodeUint(dec, t)
				sig.DurationMs = 0
			case "RiseFactor":
				sig.RiseFactor, err = decodePercent(dec, t)
			case "FallFactor":
				sig.FallFactor, err = decodePercent(dec, t)
			case "Tone":
				var tone synth.ToneDescriptor
				tone, err = decodeTone(dec, t)
				if err == nil {
					sig.Tones = append(sig.Tones, tone)
				}
			default:
				err = dec.Skip()
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
}

type xmlTone struct {
	Amp          *string `xml:"amp"`
	Freq         *string `xml:"freq"`
	Phase        *string `xml:"phase"`
	Harmonics    *string `xml:"harmonics"`
	HarmonicAmps *string `xml:"harmonicAmps"`
}

func decodeTone(dec *xml.Decoder, start xml.StartElement) (synth.ToneDescriptor, error) {
	var raw xmlTone
	if err := dec.DecodeElement(&raw, &start); err != nil {
		return synth.ToneDescriptor{}, fmt.Errorf("failed to read tone: %w", err)
	}

	var t synth.ToneDescriptor
	var err error
	if t.Amplitude, err = requiredFloat("amp", raw.Amp); err != nil {
		return t, err
	}
	if t.Frequency, err = requiredFloat("freq", raw.Freq); err != nil {
		return t, err
	}
	if t.Phase, err = requiredFloat("phase", raw.Phase); err != nil {
		return t, err
	}
	if raw.Harmonics != nil {
		if t.Harmonics, err = parseUintList(*raw.Harmonics); err != nil {
			return t, fmt.Errorf("tone harmonics: %w", err)
		}
	}
	if raw.HarmonicAmps != nil {
		if t.HarmonicAmps, err = parseFloatList(*raw.HarmonicAmps); err != nil {
			return t, fmt.Errorf("tone harmonicAmps: %w", err)
		}
	}
	return t, nil
}

type xmlDTMF struct {
	Digits  string  `xml:",chardata"`
	OnTime  *string `xml:"OnTime"`
	OffTime *string `xml:"OffTime"`
}

func (l *Loader) decodeDTMF(dec *xml.Decoder, start xml.StartElement) ([]sequence.Segment, error) {
	var raw xmlDTMF
	if err := dec.DecodeElement(&raw, &start); err != nil {
		return nil, fmt.Errorf("failed to read DTMF: %w", err)
	}

	digits := strings.Join(strings.Fields(raw.Digits), "")
	if digits == "" {
		return nil, errors.New("couldn't get DTMF text")
	}

	on, off := uint(synth.DefaultDTMFDuration), uint(synth.DefaultDTMFDuration)
	var err error
	if raw.OnTime != nil {
		if on, err = parseUint(*raw.OnTime); err != nil {
			return nil, fmt.Errorf("DTMF OnTime: %w", err)
		}
	}
	if raw.OffTime != nil {
		if off, err = parseUint(*raw.OffTime); err != nil {
			return nil, fmt.Errorf("DTMF OffTime: %w", err)
		}
	}
	return sequence.DTMFString(digits, on, off), nil
}

func decodeText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var s string
	if err := dec.DecodeElement(&s, &start); err != nil {
		return "", fmt.Errorf("failed to read <%s>: %w", start.Name.Local, err)
	}
	return strings.TrimSpace(s), nil
}

func decodeUint(dec *xml.Decoder, start xml.StartElement) (uint, error) {
	s, err := decodeText(dec, start)
	if err != nil {
		return 0, err
	}
	v, err := parseUint(s)
	if err != nil {
		return 0, fmt.Errorf("<%s>: %w", start.Name.Local, err)
	}
	return v, nil
}

func decodePercent(dec *xml.Decoder, start xml.StartElement) (float64, error) {
	s, err := decodeText(dec, start)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("<%s>: %w", start.Name.Local, err)
	}
	return v / 100.0, nil
}

func requiredFloat(name string, s *string) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("tone is missing <%s>", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return 0, fmt.Errorf("tone <%s>: %w", name, err)
	}
	return v, nil
}
