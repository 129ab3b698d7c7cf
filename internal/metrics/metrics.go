// ABOUTME: Prometheus metrics for generation runs
// ABOUTME: Implements the composer observer and writes a node-exporter textfile
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tonewright/seqgen/internal/version"
	"github.com/tonewright/seqgen/pkg/sequence"
	"github.com/tonewright/seqgen/pkg/synth"
)

// Metrics records segment outcomes on its own registry
type Metrics struct {
	Registry *prometheus.Registry

	SegmentsTotal    *prometheus.CounterVec
	SamplesTotal     *prometheus.CounterVec
	DiagnosticsTotal *prometheus.CounterVec
	RunsTotal        *prometheus.CounterVec
	CacheTotal       *prometheus.CounterVec
	SegmentPeak      prometheus.Histogram
	OutputSamples    prometheus.Gauge
	OutputPeak       prometheus.Gauge
	BuildInfo        *prometheus.GaugeVec
}

// New creates metrics on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		SegmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seqgen_segments_total",
			Help: "Segments visited by kind and outcome",
		}, []string{"kind", "outcome"}),
		SamplesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seqgen_samples_total",
			Help: "Samples generated by segment kind",
		}, []string{"kind"}),
		DiagnosticsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seqgen_diagnostics_total",
			Help: "Diagnostics recorded by kind",
		}, []string{"kind"}),
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seqgen_runs_total",
			Help: "Generation runs by outcome",
		}, []string{"outcome"}),
		CacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seqgen_cache_lookups_total",
			Help: "Waveform cache lookups by result",
		}, []string{"result"}),
		SegmentPeak: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "seqgen_segment_peak",
			Help:    "Peak absolute sample value of generated leaf segments",
			Buckets: []float64{0.25, 0.5, 0.75, 0.9, 1, 1.25, 2},
		}),
		OutputSamples: f.NewGauge(prometheus.GaugeOpts{
			Name: "seqgen_output_samples",
			Help: "Samples in the last written output",
		}),
		OutputPeak: f.NewGauge(prometheus.GaugeOpts{
			Name: "seqgen_output_peak",
			Help: "Peak absolute sample value of the last written output",
		}),
		BuildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "seqgen_build_info",
			Help: "Generator that produced the outputs, always 1",
		}, []string{"product", "version", "manufacturer"}),
	}
	m.BuildInfo.WithLabelValues(version.Product, version.Version, version.Manufacturer).Set(1)
	return m
}

// ObserveSegment implements sequence.Observer
func (m *Metrics) ObserveSegment(r sequence.SegmentResult) {
	kind := r.Kind.String()
	if r.Err != nil {
		m.SegmentsTotal.WithLabelValues(kind, "failed").Inc()
		return
	}
	m.SegmentsTotal.WithLabelValues(kind, "ok").Inc()
	if r.Kind == sequence.KindSequence {
		return
	}
	m.SamplesTotal.WithLabelValues(kind).Add(float64(r.Samples))
	if r.Samples > 0 {
		m.SegmentPeak.Observe(r.Peak)
	}
}

// ObserveDiagnostic implements sequence.Observer
func (m *Metrics) ObserveDiagnostic(d synth.Diagnostic) {
	m.DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
}

// ObserveRun records a finished run and the output it produced
func (m *Metrics) ObserveRun(failedSegments int, samples int, peak float64) {
	outcome := "ok"
	if failedSegments > 0 {
		outcome = "partial"
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.OutputSamples.Set(float64(samples))
	m.OutputPeak.Set(peak)
}

// ObserveCache records a cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheTotal.WithLabelValues(result).Inc()
}

// WriteFile writes every metric in the text exposition format
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

var _ sequence.Observer = (*Metrics)(nil)
