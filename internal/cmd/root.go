// ABOUTME: Root command and shared flags
// ABOUTME: Loads SEQGEN_* configuration, applies flag overrides and builds the logger
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tonewright/seqgen/internal/config"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	flagOutputDir   string
	flagCacheDir    string
	flagLogLevel    string
	flagMetricsFile string
	flagLeadMs      uint
	flagTrailMs     uint
)

var rootCmd = &cobra.Command{
	Use:   "seqgen",
	Short: "Generate test waveforms from sequence descriptions",
	Long: `seqgen composes tones, DTMF digits and silences described in XML or YAML
into a single waveform, written as a text dump (.out) and raw float32 samples (.dat).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagOutputDir, "output-dir", "o", ".", "Directory for .out and .dat files (env SEQGEN_OUTPUT_DIR)")
	pf.StringVar(&flagCacheDir, "cache-dir", "", "Waveform cache directory, empty to disable (env SEQGEN_CACHE_DIR)")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error (env SEQGEN_LOG_LEVEL)")
	pf.StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file (env SEQGEN_METRICS_FILE)")
	pf.UintVar(&flagLeadMs, "lead-silence", 10, "Silence before the sequence in mS (env SEQGEN_LEAD_SILENCE_MS)")
	pf.UintVar(&flagTrailMs, "trail-silence", 10, "Silence after the sequence in mS (env SEQGEN_TRAIL_SILENCE_MS)")
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		loaded.OutputDir = flagOutputDir
	}
	if flags.Changed("cache-dir") {
		loaded.CacheDir = flagCacheDir
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = flagLogLevel
	}
	if flags.Changed("metrics-file") {
		loaded.MetricsFile = flagMetricsFile
	}
	if flags.Changed("lead-silence") {
		loaded.LeadSilenceMs = flagLeadMs
	}
	if flags.Changed("trail-silence") {
		loaded.TrailSilenceMs = flagTrailMs
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger, err = newLogger(cfg)
	return err
}

func newLogger(c *config.Config) (*zap.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if level == zap.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}
