// ABOUTME: Sequence composer
// ABOUTME: Dispatches each segment to its generator and concatenates the output
package sequence

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tonewright/seqgen/pkg/audio"
	"github.com/tonewright/seqgen/pkg/synth"
	"go.uber.org/zap"
)

// Observer receives per-segment outcomes as composition proceeds
type Observer interface {
	// ObserveSegment is called once for every leaf segment visited and for
	// every nested sequence that could not be entered
	ObserveSegment(result SegmentResult)

	// ObserveDiagnostic is called for every diagnostic recorded
	ObserveDiagnostic(diag synth.Diagnostic)
}

// SegmentResult is the outcome of generating one segment
type SegmentResult struct {
	Path    string // 1-based position, dotted for nested sequences ("2.3")
	Kind    Kind
	Label   string
	Rate    audio.SampleRate
	Samples int
	Peak    float64
	Err     error
}

// Report summarizes one composition run
type Report struct {
	RunID       string
	Rate        audio.SampleRate
	Segments    []SegmentResult
	Diagnostics synth.Diagnostics
}

// Failed returns the results whose generation failed
func (r *Report) Failed() []SegmentResult {
	var out []SegmentResult
	for _, s := range r.Segments {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Err joins every segment error, or returns nil when all succeeded
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Failed() {
		errs = append(errs, fmt.Errorf("segment %s (%s %q): %w", s.Path, s.Kind, s.Label, s.Err))
	}
	return errors.Join(errs...)
}

type composerOptions struct {
	logger   *zap.Logger
	observer Observer
}

// Option configures a Composer
type Option func(*composerOptions)

// WithLogger sets the logger for the composer and its generators
func WithLogger(logger *zap.Logger) Option {
	return func(o *composerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer for segment outcomes
func WithObserver(obs Observer) Option {
	return func(o *composerOptions) {
		o.observer = obs
	}
}

// Composer turns segment lists into a single waveform
type Composer struct {
	logger   *zap.Logger
	observer Observer
	signals  *synth.SignalGenerator
	dtmf     *synth.DTMFGenerator
	silence  *synth.SilenceGenerator
}

// NewComposer creates a composer
func NewComposer(opts ...Option) *Composer {
	o := composerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	genOpt := synth.WithLogger(o.logger)
	return &Composer{
		logger:   o.logger,
		observer: o.observer,
		signals:  synth.NewSignalGenerator(genOpt),
		dtmf:     synth.NewDTMFGenerator(genOpt),
		silence:  synth.NewSilenceGenerator(genOpt),
	}
}

// run carries the state of one composition
type run struct {
	*Composer
	logger *zap.Logger
	out    *audio.Waveform
	report *Report
	active map[*Sequence]bool
}

// Compose generates segments in order at rate and concatenates the results.
// Failed segments are skipped and recorded in the report.
func (c *Composer) Compose(segments []Segment, rate audio.SampleRate) (*audio.Waveform, *Report) {
	r := c.newRun(rate)
	r.composeSegments(segments, rate, "")
	return r.out, r.report
}

// ComposeSequence composes seq at its resolved rate
func (c *Composer) ComposeSequence(seq *Sequence) (*audio.Waveform, *Report) {
	rate, adopted := seq.ResolveRate()
	r := c.newRun(rate)
	if adopted {
		r.logger.Warn("sequence is missing a sample rate, using signal's",
			zap.String("sequence", seq.Name),
			zap.Uint32("rate", uint32(rate)))
	}
	r.active[seq] = true
	r.composeSegments(seq.Segments, rate, "")
	return r.out, r.report
}

// AppendSilence appends a silent gap to w. It is used for padding outside a
// composed sequence.
func (c *Composer) AppendSilence(w *audio.Waveform, ms uint, rate audio.SampleRate) error {
	res, err := c.silence.Generate(ms, rate)
	if err != nil {
		return err
	}
	w.Extend(res.Waveform)
	return nil
}

func (c *Composer) newRun(rate audio.SampleRate) *run {
	id := uuid.NewString()
	return &run{
		Composer: c,
		logger:   c.logger.With(zap.String("run", id)),
		out:      audio.NewWaveform(0),
		report:   &Report{RunID: id, Rate: rate},
		active:   make(map[*Sequence]bool),
	}
}

func (r *run) composeSegments(segments []Segment, rate audio.SampleRate, prefix string) {
	if len(segments) > MaxSegments {
		r.diagnose(synth.Diagnostic{
			Kind:    synth.KindTooManySegments,
			Source:  prefix,
			Message: fmt.Sprintf("%d segments, composing the first %d", len(segments), MaxSegments),
		})
		segments = segments[:MaxSegments]
	}

	for i, seg := range segments {
		path := fmt.Sprintf("%d", i+1)
		if prefix != "" {
			path = prefix + "." + path
		}
		r.composeSegment(seg, rate, path)
	}
}

func (r *run) composeSegment(seg Segment, rate audio.SampleRate, path string) {
	if seg == nil {
		err := &synth.ValidationError{Kind: synth.KindUnloadedDescriptor, Detail: "missing segment"}
		r.logger.Error("segment generation failed", zap.String("segment", path), zap.Error(err))
		r.diagnose(synth.FromError(path, err)...)
		r.record(SegmentResult{Path: path, Kind: KindMissing, Rate: rate, Err: err})
		return
	}

	logger := r.logger.With(
		zap.String("segment", path),
		zap.Stringer("kind", seg.Kind()),
		zap.String("label", seg.Label()))

	switch s := seg.(type) {
	case SequenceSegment:
		r.composeNested(s, rate, path, logger)
		return

	case SignalSegment:
		d := s.Signal
		// A sequence with a valid rate overrides its signals
		if rate.Valid() {
			d = d.WithSampleRate(rate)
		}
		res, err := r.signals.Generate(d)
		r.finish(seg, d.SampleRate, path, res, err, logger)

	case DTMFSegment:
		res, err := r.dtmf.Generate(s.DTMF, rate)
		r.finish(seg, rate, path, res, err, logger)

	case SilenceSegment:
		res, err := r.silence.Generate(s.DurationMs, rate)
		r.finish(seg, rate, path, res, err, logger)

	default:
		err := fmt.Errorf("unknown segment type %T", seg)
		logger.Error("segment skipped", zap.Error(err))
		r.record(SegmentResult{Path: path, Kind: seg.Kind(), Label: seg.Label(), Rate: rate, Err: err})
	}
}

func (r *run) composeNested(s SequenceSegment, rate audio.SampleRate, path string, logger *zap.Logger) {
	result := SegmentResult{Path: path, Kind: KindSequence, Label: s.Label()}

	switch {
	case s.Sequence == nil:
		result.Err = synth.ErrUnloadedDescriptor
	case r.active[s.Sequence]:
		result.Err = &synth.ValidationError{
			Kind:   synth.KindSequenceCycle,
			Detail: fmt.Sprintf("sequence %q contains itself", s.Sequence.Name),
		}
	}
	if result.Err != nil {
		logger.Error("segment generation failed", zap.Error(result.Err))
		r.diagnose(synth.FromError(path, result.Err)...)
		r.record(result)
		return
	}

	childRate := rate
	if !childRate.Valid() {
		childRate, _ = s.Sequence.ResolveRate()
	}
	result.Rate = childRate

	logger.Info("composing nested sequence",
		zap.Int("segments", s.Sequence.Len()),
		zap.Uint32("rate", uint32(childRate)))

	// The nested entry precedes its children in the report
	idx := len(r.report.Segments)
	r.report.Segments = append(r.report.Segments, result)

	start := r.out.Len()
	r.active[s.Sequence] = true
	r.composeSegments(s.Sequence.Segments, childRate, path)
	delete(r.active, s.Sequence)

	result.Samples = r.out.Len() - start
	result.Peak = audio.PeakOf(r.out.Samples()[start:])
	r.report.Segments[idx] = result
}

func (r *run) finish(seg Segment, rate audio.SampleRate, path string, res synth.Result, err error, logger *zap.Logger) {
	for _, d := range res.Diagnostics {
		if d.Source == "" {
			d.Source = path
		} else {
			d.Source = path + ":" + d.Source
		}
		r.diagnose(d)
	}

	result := SegmentResult{
		Path:  path,
		Kind:  seg.Kind(),
		Label: seg.Label(),
		Rate:  rate,
		Err:   err,
	}
	if err != nil {
		logger.Error("segment generation failed", zap.Error(err))
		r.diagnose(synth.FromError(path, err)...)
		r.record(result)
		return
	}

	r.out.Extend(res.Waveform)
	result.Samples = res.Len()
	result.Peak = res.Peak
	logger.Debug("segment generated",
		zap.Int("samples", result.Samples),
		zap.Float64("peak", result.Peak))
	r.record(result)
}

func (r *run) record(result SegmentResult) {
	r.report.Segments = append(r.report.Segments, result)
	if r.observer != nil {
		r.observer.ObserveSegment(result)
	}
}

func (r *run) diagnose(diags ...synth.Diagnostic) {
	r.report.Diagnostics = append(r.report.Diagnostics, diags...)
	if r.observer != nil {
		for _, d := range diags {
			r.observer.ObserveDiagnostic(d)
		}
	}
}
