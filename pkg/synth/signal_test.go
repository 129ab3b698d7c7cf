// ABOUTME: Tests for the composite signal generator
// ABOUTME: Covers resolution, validation, normalization and determinism
package synth

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonewright/seqgen/pkg/audio"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sineSignal(amp, freq float64) SignalDescriptor {
	return SignalDescriptor{
		Name:        "sine",
		Description: "single tone",
		SampleRate:  audio.SampleRate9600,
		DurationMs:  100,
		Tones:       []ToneDescriptor{{Amplitude: amp, Frequency: freq}},
	}
}

func TestSignalGenerate_SingleToneIsUnitSine(t *testing.T) {
	gen := NewSignalGenerator()

	for _, amp := range []float64{0.25, 1, 3} {
		res, err := gen.Generate(sineSignal(amp, 440))
		require.NoError(t, err)
		require.Equal(t, 960, res.Len())

		for i, s := range res.Waveform.Samples() {
			want := math.Sin(2 * math.Pi * 440 * float64(i) / 9600)
			require.InDelta(t, want, s, 1e-12, "amp %v sample %d", amp, i)
		}
	}
}

func TestResolveSignal_SampleCountAndDuration(t *testing.T) {
	tests := []struct {
		name         string
		durationMs   uint
		samples      uint
		wantSamples  uint
		wantDuration uint
	}{
		{"from duration", 250, 0, 2400, 250},
		{"from samples", 0, 480, 480, 50},
		{"samples win", 100, 480, 480, 100},
		{"truncated duration", 0, 1000, 1000, 104},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sineSignal(1, 100)
			d.DurationMs = tt.durationMs
			d.Samples = tt.samples

			r, diags, err := ResolveSignal(d)
			require.NoError(t, err)
			assert.Empty(t, diags)
			assert.Equal(t, tt.wantSamples, r.Samples)
			assert.Equal(t, tt.wantDuration, r.DurationMs)
		})
	}
}

func TestResolveSignal_Preconditions(t *testing.T) {
	tooMany := make([]ToneDescriptor, MaxTones+1)
	for i := range tooMany {
		tooMany[i] = ToneDescriptor{Amplitude: 1, Frequency: 100}
	}

	tests := []struct {
		name   string
		mutate func(*SignalDescriptor)
		want   []error
	}{
		{"invalid sample rate", func(d *SignalDescriptor) { d.SampleRate = 44100 }, []error{ErrInvalidSampleRate}},
		{"no tones", func(d *SignalDescriptor) { d.Tones = nil }, []error{ErrInvalidToneCount}},
		{"too many tones", func(d *SignalDescriptor) { d.Tones = tooMany }, []error{ErrInvalidToneCount}},
		{"unloaded", func(d *SignalDescriptor) { d.LoadErr = errors.New("missing Name") }, []error{ErrUnloadedDescriptor}},
		{"zero amplitude", func(d *SignalDescriptor) { d.Tones[0].Amplitude = 0 }, []error{ErrZeroAmplitude}},
		{"NaN amplitude", func(d *SignalDescriptor) { d.Tones[0].Amplitude = math.NaN() }, []error{ErrNonFiniteValue}},
		{"infinite amplitude", func(d *SignalDescriptor) { d.Tones[0].Amplitude = math.Inf(1) }, []error{ErrNonFiniteValue}},
		{"infinite frequency", func(d *SignalDescriptor) { d.Tones[0].Frequency = math.Inf(-1) }, []error{ErrNonFiniteValue}},
		{"NaN phase", func(d *SignalDescriptor) { d.Tones[0].Phase = math.NaN() }, []error{ErrNonFiniteValue}},
		{
			"NaN harmonic amplitude",
			func(d *SignalDescriptor) {
				d.Tones[0].Harmonics = []uint{2}
				d.Tones[0].HarmonicAmps = []float64{math.NaN()}
			},
			[]error{ErrNonFiniteValue},
		},
		{
			"amplitude sum overflows",
			func(d *SignalDescriptor) {
				d.Tones = []ToneDescriptor{
					{Amplitude: math.MaxFloat64, Frequency: 100},
					{Amplitude: math.MaxFloat64, Frequency: 200},
				}
			},
			[]error{ErrNonFiniteValue},
		},
		{
			"several at once",
			func(d *SignalDescriptor) { d.SampleRate = 0; d.Tones = nil },
			[]error{ErrInvalidSampleRate, ErrInvalidToneCount},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sineSignal(1, 100)
			tt.mutate(&d)

			r, _, err := ResolveSignal(d)
			require.Error(t, err)
			assert.Nil(t, r)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}

			res, err := NewSignalGenerator().Generate(d)
			require.Error(t, err)
			assert.Nil(t, res.Waveform)
			assert.Equal(t, 0, res.Len())
		})
	}
}

func TestResolveSignal_ZeroToneMaxTonesAllowed(t *testing.T) {
	d := sineSignal(1, 100)
	d.Tones = make([]ToneDescriptor, MaxTones)
	for i := range d.Tones {
		d.Tones[i] = ToneDescriptor{Amplitude: 0.5, Frequency: float64(100 + i)}
	}

	r, _, err := ResolveSignal(d)
	require.NoError(t, err)
	assert.InDelta(t, 32.0, r.MaxAmplitude, 1e-12)
}

func TestResolveSignal_EnvelopeFactorReset(t *testing.T) {
	d := sineSignal(1, 100)
	d.RiseFactor = 0.9
	d.FallFactor = -0.1

	r, diags, err := ResolveSignal(d)
	require.NoError(t, err)
	assert.Equal(t, EnvelopeFactorDefault, r.RiseFactor)
	assert.Equal(t, EnvelopeFactorDefault, r.FallFactor)
	assert.Equal(t, 2, diags.Count(KindInvalidEnvelopeFactor))
}

func TestResolveSignal_MaxAmplitudeIncludesHarmonics(t *testing.T) {
	d := sineSignal(1, 100)
	d.Tones = []ToneDescriptor{
		{Amplitude: 1, Frequency: 100, Harmonics: []uint{2, 3}, HarmonicAmps: []float64{0.5, 0.25}},
		{Amplitude: 0.5, Frequency: 250},
		// dropped harmonics do not count
		{Amplitude: 0.25, Frequency: 400, Harmonics: []uint{2, 3, 4}, HarmonicAmps: []float64{1, 1}},
	}

	r, diags, err := ResolveSignal(d)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, r.MaxAmplitude, 1e-12)
	assert.True(t, diags.Has(KindHarmonicCountMismatch))
	assert.Empty(t, r.Tones[2].Harmonics)
}

func TestSignalGenerate_Idempotent(t *testing.T) {
	d := SignalDescriptor{
		Name:       "chord",
		SampleRate: audio.SampleRate11050,
		DurationMs: 120,
		RiseFactor: 0.2,
		FallFactor: 0.3,
		Tones: []ToneDescriptor{
			{Amplitude: 1, Frequency: 261.63, Phase: 10, Harmonics: []uint{2}, HarmonicAmps: []float64{0.3}},
			{Amplitude: 0.8, Frequency: 329.63, Phase: 45},
			{Amplitude: 0.6, Frequency: 392.0, Phase: 90},
		},
	}

	gen := NewSignalGenerator()
	first, err := gen.Generate(d)
	require.NoError(t, err)
	second, err := gen.Generate(d)
	require.NoError(t, err)

	assert.Equal(t, first.Waveform.Samples(), second.Waveform.Samples())
	assert.Equal(t, first.Peak, second.Peak)
}

func TestSignalGenerate_EnvelopeApplied(t *testing.T) {
	d := sineSignal(1, 100)
	d.Tones[0].Phase = 90 // cos, so the ramp is visible from sample 0
	d.RiseFactor = 0.1
	d.FallFactor = 0.1

	r, _, err := ResolveSignal(d)
	require.NoError(t, err)
	w, _ := r.Generate()
	samples := w.Samples()

	assert.Equal(t, 0.0, samples[0])
	for _, i := range []uint{10, 48, 500, 900} {
		x := 2 * math.Pi * float64(i) / 9600
		want := r.Envelope().Gain(i) * math.Sin(100*x+math.Pi/2)
		assert.InDelta(t, want, samples[i], 1e-12, "sample %d", i)
	}
}

func TestSignalGenerate_ClippingIsReportedNotCorrected(t *testing.T) {
	d := sineSignal(1, 100)
	d.Tones = []ToneDescriptor{
		{Amplitude: 2, Frequency: 100},
		{Amplitude: -1, Frequency: 300},
	}

	res, err := NewSignalGenerator().Generate(d)
	require.NoError(t, err)
	assert.Greater(t, res.Peak, 1.0)
	assert.Equal(t, res.Waveform.Peak(), res.Peak)
}

func TestSignalGenerate_LogsCorrections(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	gen := NewSignalGenerator(WithLogger(zap.New(core)))

	d := sineSignal(1, 100)
	d.Tones[0].Harmonics = []uint{2}

	res, err := gen.Generate(d)
	require.NoError(t, err)
	assert.True(t, res.Diagnostics.Has(KindHarmonicCountMismatch))
	assert.Equal(t, 1, logs.FilterMessage("corrected signal descriptor").Len())
}

func TestSignalInfo(t *testing.T) {
	d := sineSignal(2, 440)
	d.RiseFactor = 0.2

	info := d.Info()
	assert.Equal(t, uint(960), info.Samples)
	assert.Equal(t, 2.0, info.MaxAmplitude)

	s := info.String()
	assert.True(t, strings.Contains(s, "Signal: sine"))
	assert.True(t, strings.Contains(s, "Number of Samples: 960 = 100 mS"))
	assert.True(t, strings.Contains(s, "Rise time: 20% of duration = 20 mS"))
	assert.True(t, strings.Contains(s, "Maximum amplitude: 2.00"))

	d.SampleRate = 0
	bad := d.Info()
	assert.Equal(t, uint(0), bad.Samples)
	assert.Equal(t, 2.0, bad.MaxAmplitude)
}
