// ABOUTME: Validation errors and diagnostics for synthesis
// ABOUTME: Separates fatal precondition failures from recovered anomalies
package synth

import "fmt"

// Kind classifies a validation failure or a recovered anomaly
type Kind string

const (
	KindInvalidSampleRate     Kind = "InvalidSampleRate"
	KindInvalidToneCount      Kind = "InvalidToneCount"
	KindHarmonicCountMismatch Kind = "HarmonicCountMismatch"
	KindInvalidHarmonic       Kind = "InvalidHarmonic"
	KindInvalidEnvelopeFactor Kind = "InvalidEnvelopeFactor"
	KindUnrecognizedDTMFDigit Kind = "UnrecognizedDtmfDigit"
	KindUnloadedDescriptor    Kind = "UnloadedDescriptor"
	KindZeroAmplitude         Kind = "ZeroAmplitude"
	KindNonFiniteValue        Kind = "NonFiniteValue"
	KindTooManySegments       Kind = "TooManySegments"
	KindSequenceCycle         Kind = "SequenceCycle"
)

// ValidationError reports a precondition that prevents generation
type ValidationError struct {
	Kind   Kind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is matches any *ValidationError of the same Kind, so the sentinels below
// work with errors.Is regardless of Detail.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrInvalidSampleRate  = &ValidationError{Kind: KindInvalidSampleRate}
	ErrInvalidToneCount   = &ValidationError{Kind: KindInvalidToneCount}
	ErrUnloadedDescriptor = &ValidationError{Kind: KindUnloadedDescriptor}
	ErrZeroAmplitude      = &ValidationError{Kind: KindZeroAmplitude}
	ErrNonFiniteValue     = &ValidationError{Kind: KindNonFiniteValue}
	ErrTooManySegments    = &ValidationError{Kind: KindTooManySegments}
	ErrSequenceCycle      = &ValidationError{Kind: KindSequenceCycle}
)

func invalid(kind Kind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Diagnostic records an anomaly tied to a named descriptor
type Diagnostic struct {
	Kind    Kind
	Source  string
	Message string
}

func (d Diagnostic) String() string {
	if d.Source == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Kind, d.Source, d.Message)
}

// Diagnostics is an ordered list of anomalies
type Diagnostics []Diagnostic

// Has reports whether any diagnostic has kind k
func (ds Diagnostics) Has(k Kind) bool {
	return ds.Count(k) > 0
}

// Count returns how many diagnostics have kind k
func (ds Diagnostics) Count(k Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// FromError converts every ValidationError found in err into a Diagnostic.
// Errors that are not validation errors become a single diagnostic with an
// empty Kind.
func FromError(source string, err error) Diagnostics {
	if err == nil {
		return nil
	}

	var out Diagnostics
	var walk func(error)
	walk = func(e error) {
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, Diagnostic{Kind: ve.Kind, Source: source, Message: ve.Detail})
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
				return
			}
			out = append(out, Diagnostic{Source: source, Message: e.Error()})
		default:
			out = append(out, Diagnostic{Source: source, Message: e.Error()})
		}
	}
	walk(err)
	return out
}
