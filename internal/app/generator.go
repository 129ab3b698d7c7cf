// ABOUTME: Generator application orchestration
// ABOUTME: Coordinates loading, composition, output files, cache and metrics
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonewright/seqgen/internal/cache"
	"github.com/tonewright/seqgen/internal/config"
	"github.com/tonewright/seqgen/internal/describe"
	"github.com/tonewright/seqgen/internal/metrics"
	"github.com/tonewright/seqgen/internal/version"
	"github.com/tonewright/seqgen/pkg/audio"
	"github.com/tonewright/seqgen/pkg/audio/encode"
	"github.com/tonewright/seqgen/pkg/sequence"
	"go.uber.org/zap"
)

// Output file extensions
const (
	TextExt = ".out"
	DataExt = ".dat"
)

// SampleSize is the byte width of one sample in the data file
const SampleSize = 4

// Generator turns description files into waveform files
type Generator struct {
	config   config.Config
	logger   *zap.Logger
	loader   *describe.Loader
	composer *sequence.Composer
	metrics  *metrics.Metrics
	cache    *cache.Cache
	text     encode.Encoder
	data     encode.Encoder
}

// New creates a generator. The cache is opened only when cfg.CacheDir is set.
func New(cfg config.Config, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	text, err := encode.New(audio.Format{Codec: encode.CodecText, Channels: 1, BitDepth: 32})
	if err != nil {
		return nil, err
	}
	data, err := encode.New(audio.Format{Codec: encode.CodecRaw, Channels: 1, BitDepth: SampleSize * 8})
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	g := &Generator{
		config:   cfg,
		logger:   logger,
		loader:   describe.NewLoader(logger.Named("describe")),
		composer: sequence.NewComposer(sequence.WithLogger(logger.Named("compose")), sequence.WithObserver(m)),
		metrics:  m,
		text:     text,
		data:     data,
	}

	if cfg.CacheDir != "" {
		g.cache, err = cache.Open(cfg.CacheDir, logger.Named("cache"))
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Summary describes one generated output
type Summary struct {
	Name       string
	RunID      string
	Rate       audio.SampleRate
	Samples    int
	DurationMs float64
	Peak       float64
	Cached     bool
	TextPath   string
	DataPath   string

	// Report is nil when the waveform came from the cache
	Report *sequence.Report
}

// PeakDB returns the output peak in decibels
func (s *Summary) PeakDB() float64 {
	return audio.Decibels(s.Peak)
}

func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sequence %q\n", s.Name)
	fmt.Fprintf(&b, "  Total samples: %d\n", s.Samples)
	fmt.Fprintf(&b, "  Duration: %.1f mS\n", s.DurationMs)
	fmt.Fprintf(&b, "  Sample size: %d bytes\n", SampleSize)
	fmt.Fprintf(&b, "  Peak: %.4f (%.2f dB)\n", s.Peak, s.PeakDB())
	if s.Report != nil {
		if failed := s.Report.Failed(); len(failed) > 0 {
			fmt.Fprintf(&b, "  Failed segments: %d\n", len(failed))
			for _, f := range failed {
				fmt.Fprintf(&b, "    %s %s %q: %v\n", f.Path, f.Kind, f.Label, f.Err)
			}
		}
		for _, d := range s.Report.Diagnostics {
			fmt.Fprintf(&b, "  Warning: %s\n", d)
		}
	}
	if s.Cached {
		b.WriteString("  (from cache)\n")
	}
	fmt.Fprintf(&b, "  Wrote %s and %s\n", s.TextPath, s.DataPath)
	fmt.Fprintf(&b, "  Generator: %s (%s)\n", version.String(), version.Manufacturer)
	return b.String()
}

// Generate loads the description at path, composes it between the configured
// lead and trail silences and writes the text and data files. Segment failures
// do not fail the run; they are listed in the summary's report.
func (g *Generator) Generate(ctx context.Context, path string) (*Summary, error) {
	seq, raw, err := g.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}

	rate, _ := seq.ResolveRate()
	if !rate.Valid() {
		return nil, fmt.Errorf("sequence %q has no valid sample rate (supported: %v)", seq.Name, audio.SupportedSampleRates())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{Name: seq.Name, Rate: rate}
	logger := g.logger.With(zap.String("sequence", seq.Name))

	var key []byte
	var w *audio.Waveform
	if g.cache != nil {
		key = cache.Key(raw, g.config.LeadSilenceMs, g.config.TrailSilenceMs)
		cached, cachedRate, ok, err := g.cache.Get(key)
		if err != nil {
			logger.Warn("cache lookup failed, composing", zap.Error(err))
		}
		hit := ok && cachedRate == rate
		g.metrics.ObserveCache(hit)
		if hit {
			w = cached
			summary.Cached = true
		}
	}

	if w == nil {
		w, summary.Report, err = g.compose(seq, rate)
		if err != nil {
			return nil, err
		}
		summary.RunID = summary.Report.RunID
		if g.cache != nil {
			if err := g.cache.Put(key, w, rate); err != nil {
				logger.Warn("failed to cache waveform", zap.Error(err))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary.Samples = w.Len()
	summary.DurationMs = w.Duration(rate)
	summary.Peak = w.Peak()

	if err := g.write(seq.Name, path, w, summary); err != nil {
		return nil, err
	}

	failed := 0
	if summary.Report != nil {
		failed = len(summary.Report.Failed())
	}
	g.metrics.ObserveRun(failed, summary.Samples, summary.Peak)
	if g.config.MetricsFile != "" {
		if err := g.metrics.WriteFile(g.config.MetricsFile); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}

	logger.Info("sequence generated",
		zap.String("run", summary.RunID),
		zap.Int("samples", summary.Samples),
		zap.Float64("durationMs", summary.DurationMs),
		zap.Float64("peak", summary.Peak),
		zap.Int("failed", failed),
		zap.Bool("cached", summary.Cached))

	return summary, nil
}

func (g *Generator) compose(seq *sequence.Sequence, rate audio.SampleRate) (*audio.Waveform, *sequence.Report, error) {
	w := audio.NewWaveform(0)
	if err := g.composer.AppendSilence(w, g.config.LeadSilenceMs, rate); err != nil {
		return nil, nil, fmt.Errorf("lead silence: %w", err)
	}

	body, report := g.composer.ComposeSequence(seq)
	w.Extend(body)

	if err := g.composer.AppendSilence(w, g.config.TrailSilenceMs, rate); err != nil {
		return nil, nil, fmt.Errorf("trail silence: %w", err)
	}
	return w, report, nil
}

func (g *Generator) write(name, source string, w *audio.Waveform, summary *Summary) error {
	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := outputBase(name, source)
	summary.TextPath = filepath.Join(g.config.OutputDir, base+TextExt)
	summary.DataPath = filepath.Join(g.config.OutputDir, base+DataExt)

	text, err := g.text.Encode(w.Samples())
	if err != nil {
		return fmt.Errorf("failed to encode text output: %w", err)
	}
	data, err := g.data.Encode(w.Samples())
	if err != nil {
		return fmt.Errorf("failed to encode data output: %w", err)
	}

	if err := os.WriteFile(summary.TextPath, text, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", summary.TextPath, err)
	}
	if err := os.WriteFile(summary.DataPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", summary.DataPath, err)
	}
	return nil
}

// outputBase names output files after the sequence, falling back to the
// description file's name
func outputBase(name, source string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return base
}

// Describe loads the description at path and returns its summary
func (g *Generator) Describe(path string) (string, error) {
	seq, _, err := g.loader.LoadFile(path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	describeSequence(&b, seq, "")
	return b.String(), nil
}

func describeSequence(b *strings.Builder, seq *sequence.Sequence, indent string) {
	writeIndented(b, seq.Info().String(), indent)
	for i, seg := range seq.Segments {
		fmt.Fprintf(b, "%s  [%d] %s\n", indent, i+1, seg.Kind())
		switch s := seg.(type) {
		case sequence.SignalSegment:
			d := s.Signal
			if seq.SampleRate.Valid() {
				d = d.WithSampleRate(seq.SampleRate)
			}
			writeIndented(b, d.Info().String(), indent+"    ")
			if d.LoadErr != nil {
				fmt.Fprintf(b, "%s    Not loaded: %v\n", indent, d.LoadErr)
			}
		case sequence.DTMFSegment:
			fmt.Fprintf(b, "%s    Digit %c, on %d mS, off %d mS\n", indent, s.DTMF.Digit, s.DTMF.OnMs, s.DTMF.OffMs)
		case sequence.SilenceSegment:
			fmt.Fprintf(b, "%s    %d mS\n", indent, s.DurationMs)
		case sequence.SequenceSegment:
			if s.Sequence != nil {
				describeSequence(b, s.Sequence, indent+"    ")
			}
		}
	}
}

func writeIndented(b *strings.Builder, text, indent string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(indent)
		b.WriteString(line)
	}
}

// Close releases the cache and encoders
func (g *Generator) Close() error {
	var errs []error
	if g.cache != nil {
		errs = append(errs, g.cache.Close())
	}
	errs = append(errs, g.text.Close(), g.data.Close())
	return errors.Join(errs...)
}
