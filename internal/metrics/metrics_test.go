// ABOUTME: Tests for generation metrics
// ABOUTME: Drives the observer through a real composition and inspects counters
package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonewright/seqgen/internal/version"
	"github.com/tonewright/seqgen/pkg/audio"
	"github.com/tonewright/seqgen/pkg/sequence"
	"github.com/tonewright/seqgen/pkg/synth"
)

func TestObserverCountsComposition(t *testing.T) {
	m := New()
	c := sequence.NewComposer(sequence.WithObserver(m))

	_, report := c.Compose([]sequence.Segment{
		sequence.Silence(10),
		sequence.DTMF('Z', 10, 10),
		sequence.Signal(synth.SignalDescriptor{Name: "empty", DurationMs: 10}),
	}, audio.SampleRate8000)
	require.Len(t, report.Segments, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SegmentsTotal.WithLabelValues("silence", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SegmentsTotal.WithLabelValues("dtmf", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SegmentsTotal.WithLabelValues("signal", "failed")))

	assert.Equal(t, 80.0, testutil.ToFloat64(m.SamplesTotal.WithLabelValues("silence")))
	assert.Equal(t, 160.0, testutil.ToFloat64(m.SamplesTotal.WithLabelValues("dtmf")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiagnosticsTotal.WithLabelValues(string(synth.KindUnrecognizedDTMFDigit))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiagnosticsTotal.WithLabelValues(string(synth.KindInvalidToneCount))))
}

func TestObserveRunAndCache(t *testing.T) {
	m := New()
	m.ObserveRun(0, 100, 0.5)
	m.ObserveRun(2, 40, 0.25)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("partial")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.OutputSamples))
	assert.Equal(t, 0.25, testutil.ToFloat64(m.OutputPeak))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheTotal.WithLabelValues("miss")))
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.ObserveRun(0, 96, 1)

	path := filepath.Join(t.TempDir(), "seqgen.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "seqgen_output_samples 96"))
}

func TestBuildInfo(t *testing.T) {
	m := New()
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.BuildInfo.WithLabelValues(version.Product, version.Version, version.Manufacturer)))
}
