// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"fxchain/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Discovery.Roots = []string{filepath.Join(base, "plugins")}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithAnalyzerBinary overrides the analyzer binary on the test config.
func WithAnalyzerBinary(binary string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analyzer.Binary = binary
	}
}

// WithRoots overrides the discovery roots on the test config.
func WithRoots(roots ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Discovery.Roots = roots
	}
}
