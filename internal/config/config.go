// ABOUTME: Runtime configuration for the generator
// ABOUTME: Reads SEQGEN_* environment defaults which command-line flags may override
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap/zapcore"
)

// Config holds generator configuration
type Config struct {
	OutputDir      string
	CacheDir       string
	LogLevel       string
	MetricsFile    string
	LeadSilenceMs  uint
	TrailSilenceMs uint
}

// Load reads configuration from the environment. Unparseable numbers keep
// their defaults and are returned as an error alongside the config.
func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		OutputDir:   getEnv("SEQGEN_OUTPUT_DIR", "."),
		CacheDir:    getEnv("SEQGEN_CACHE_DIR", ""),
		LogLevel:    getEnv("SEQGEN_LOG_LEVEL", "info"),
		MetricsFile: getEnv("SEQGEN_METRICS_FILE", ""),
	}

	var err error
	if cfg.LeadSilenceMs, err = getEnvUint("SEQGEN_LEAD_SILENCE_MS", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.TrailSilenceMs, err = getEnvUint("SEQGEN_TRAIL_SILENCE_MS", 10); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvUint(key string, fallback uint) (uint, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return uint(n), nil
}
