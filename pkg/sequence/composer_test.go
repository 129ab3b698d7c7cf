// ABOUTME: Tests for sequence composition
// ABOUTME: Checks ordering, best-effort failure handling, nesting and rates
package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonewright/seqgen/pkg/audio"
	"github.com/tonewright/seqgen/pkg/synth"
)

func testSignal(rate audio.SampleRate) synth.SignalDescriptor {
	return synth.SignalDescriptor{
		Name:        "tone",
		Description: "two tones",
		SampleRate:  rate,
		DurationMs:  30,
		RiseFactor:  0.1,
		FallFactor:  0.1,
		Tones: []synth.ToneDescriptor{
			{Amplitude: 1, Frequency: 440},
			{Amplitude: 0.5, Frequency: 660, Phase: 45},
		},
	}
}

type recorder struct {
	segments []SegmentResult
	diags    synth.Diagnostics
}

func (r *recorder) ObserveSegment(result SegmentResult)    { r.segments = append(r.segments, result) }
func (r *recorder) ObserveDiagnostic(diag synth.Diagnostic) { r.diags = append(r.diags, diag) }

func TestCompose_OrderAndLength(t *testing.T) {
	const rate = audio.SampleRate9600
	sig := testSignal(rate)

	silence, err := synth.NewSilenceGenerator().Generate(10, rate)
	require.NoError(t, err)
	signal, err := synth.NewSignalGenerator().Generate(sig)
	require.NoError(t, err)
	dtmf, err := synth.NewDTMFGenerator().Generate(synth.DTMFDescriptor{Digit: '1', OnMs: 50, OffMs: 50}, rate)
	require.NoError(t, err)

	w, report := NewComposer().Compose([]Segment{
		Silence(10),
		Signal(sig),
		DTMF('1', 50, 50),
	}, rate)

	require.NoError(t, report.Err())
	require.Equal(t, silence.Len()+signal.Len()+dtmf.Len(), w.Len())

	var expected []float64
	expected = append(expected, silence.Waveform.Samples()...)
	expected = append(expected, signal.Waveform.Samples()...)
	expected = append(expected, dtmf.Waveform.Samples()...)
	assert.Equal(t, expected, w.Samples())

	require.Len(t, report.Segments, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{report.Segments[0].Path, report.Segments[1].Path, report.Segments[2].Path})
	assert.Equal(t, signal.Peak, report.Segments[1].Peak)
	assert.NotEmpty(t, report.RunID)
}

func TestCompose_ContinuesPastFailures(t *testing.T) {
	obs := &recorder{}
	c := NewComposer(WithObserver(obs))

	bad := testSignal(audio.SampleRate9600)
	bad.Tones = nil

	w, report := c.Compose([]Segment{
		Silence(10),
		Signal(bad),
		DTMF('Z', 10, 10),
		Silence(20),
	}, audio.SampleRate8000)

	// 80 + 0 + 160 (silent burst) + 160
	assert.Equal(t, 400, w.Len())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].Path)
	assert.ErrorIs(t, failed[0].Err, synth.ErrInvalidToneCount)
	assert.ErrorIs(t, report.Err(), synth.ErrInvalidToneCount)

	assert.True(t, report.Diagnostics.Has(synth.KindInvalidToneCount))
	assert.True(t, report.Diagnostics.Has(synth.KindUnrecognizedDTMFDigit))
	assert.Len(t, obs.segments, 4)
	assert.Equal(t, report.Diagnostics, obs.diags)
}

func TestCompose_SequenceRateOverridesSignal(t *testing.T) {
	sig := testSignal(audio.SampleRate22100)

	w, report := NewComposer().Compose([]Segment{Signal(sig)}, audio.SampleRate8000)
	require.NoError(t, report.Err())
	assert.Equal(t, 240, w.Len())
	assert.Equal(t, audio.SampleRate8000, report.Segments[0].Rate)
}

func TestCompose_InvalidRateKeepsSignalRate(t *testing.T) {
	sig := testSignal(audio.SampleRate10000)

	w, report := NewComposer().Compose([]Segment{Signal(sig), Silence(10)}, audio.InvalidSampleRate)

	assert.Equal(t, 300, w.Len())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, KindSilence, failed[0].Kind)
	assert.ErrorIs(t, failed[0].Err, synth.ErrInvalidSampleRate)
}

func TestComposeSequence_Nested(t *testing.T) {
	inner, err := New("inner", "digits", audio.InvalidSampleRate, DTMFString("12", 20, 10)...)
	require.NoError(t, err)

	outer, err := New("outer", "wrapper", audio.SampleRate9600,
		Silence(10),
		Nested(inner),
		Silence(5),
	)
	require.NoError(t, err)

	w, report := NewComposer().ComposeSequence(outer)
	require.NoError(t, report.Err())

	// 96 + 2*(192+96) + 48
	assert.Equal(t, 720, w.Len())

	paths := make([]string, len(report.Segments))
	for i, s := range report.Segments {
		paths[i] = s.Path
	}
	assert.Equal(t, []string{"1", "2", "2.1", "2.2", "3"}, paths)
	assert.Equal(t, KindSequence, report.Segments[1].Kind)
	assert.Equal(t, 576, report.Segments[1].Samples)
	assert.Equal(t, audio.SampleRate9600, report.Segments[1].Rate)
}

func TestComposeSequence_AdoptsSignalRate(t *testing.T) {
	seq, err := New("adopt", "", audio.InvalidSampleRate,
		Silence(10),
		Signal(testSignal(audio.SampleRate11050)),
	)
	require.NoError(t, err)

	rate, adopted := seq.ResolveRate()
	assert.True(t, adopted)
	assert.Equal(t, audio.SampleRate11050, rate)

	w, report := NewComposer().ComposeSequence(seq)
	require.NoError(t, report.Err())
	assert.Equal(t, 110+331, w.Len())
	assert.Equal(t, audio.SampleRate11050, report.Rate)
}

func TestComposeSequence_Cycle(t *testing.T) {
	seq := &Sequence{Name: "loop", SampleRate: audio.SampleRate8000}
	seq.Segments = []Segment{Silence(10), Nested(seq)}

	w, report := NewComposer().ComposeSequence(seq)
	assert.Equal(t, 80, w.Len())
	assert.True(t, report.Diagnostics.Has(synth.KindSequenceCycle))
	assert.ErrorIs(t, report.Err(), synth.ErrSequenceCycle)
}

func TestCompose_NilNestedSequence(t *testing.T) {
	w, report := NewComposer().Compose([]Segment{Nested(nil), Silence(10)}, audio.SampleRate8000)
	assert.Equal(t, 80, w.Len())
	assert.ErrorIs(t, report.Err(), synth.ErrUnloadedDescriptor)
}

func TestCompose_NilSegment(t *testing.T) {
	obs := &recorder{}
	w, report := NewComposer(WithObserver(obs)).Compose([]Segment{Silence(10), nil, Silence(10)}, audio.SampleRate8000)

	assert.Equal(t, 160, w.Len())
	require.Len(t, report.Segments, 3)
	assert.Equal(t, KindMissing, report.Segments[1].Kind)
	assert.Equal(t, "2", report.Segments[1].Path)
	assert.ErrorIs(t, report.Segments[1].Err, synth.ErrUnloadedDescriptor)
	assert.True(t, report.Diagnostics.Has(synth.KindUnloadedDescriptor))
	assert.Len(t, report.Failed(), 1)
	assert.Len(t, obs.segments, 3)
}

func TestCompose_TooManySegments(t *testing.T) {
	segments := make([]Segment, MaxSegments+3)
	for i := range segments {
		segments[i] = Silence(1)
	}

	w, report := NewComposer().Compose(segments, audio.SampleRate8000)
	assert.Equal(t, MaxSegments*8, w.Len())
	assert.Len(t, report.Segments, MaxSegments)
	assert.True(t, report.Diagnostics.Has(synth.KindTooManySegments))
}

func TestCompose_Idempotent(t *testing.T) {
	segments := []Segment{
		Signal(testSignal(audio.SampleRate9600)),
		DTMF('9', 20, 20),
		Silence(3),
	}

	c := NewComposer()
	first, _ := c.Compose(segments, audio.SampleRate9600)
	second, _ := c.Compose(segments, audio.SampleRate9600)
	assert.Equal(t, first.Samples(), second.Samples())
}

func TestComposer_AppendSilence(t *testing.T) {
	c := NewComposer()
	w := audio.NewWaveform(0)

	require.NoError(t, c.AppendSilence(w, 10, audio.SampleRate9600))
	assert.Equal(t, 96, w.Len())
	assert.ErrorIs(t, c.AppendSilence(w, 10, 0), synth.ErrInvalidSampleRate)
	assert.Equal(t, 96, w.Len())
}
