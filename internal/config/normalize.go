package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalyzer()
	c.normalizePlayer()
	if err := c.normalizeDiscovery(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalyzer() {
	c.Analyzer.Binary = strings.TrimSpace(c.Analyzer.Binary)
	if c.Analyzer.Binary == "" {
		c.Analyzer.Binary = defaultAnalyzerBinary
	}
	if c.Analyzer.ListTimeout <= 0 {
		c.Analyzer.ListTimeout = defaultListTimeout
	}
}

func (c *Config) normalizePlayer() {
	c.Player.Binary = strings.TrimSpace(c.Player.Binary)
}

func (c *Config) normalizeDiscovery() error {
	if len(c.Discovery.Roots) == 0 {
		c.Discovery.Roots = append([]string(nil), defaultDiscoveryRoots...)
	}
	roots := make([]string, 0, len(c.Discovery.Roots))
	for _, root := range c.Discovery.Roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		expanded, err := ExpandPath(root)
		if err != nil {
			return fmt.Errorf("discovery.roots: %w", err)
		}
		roots = append(roots, expanded)
	}
	c.Discovery.Roots = roots

	if len(c.Discovery.BundleSuffixes) == 0 {
		c.Discovery.BundleSuffixes = append([]string(nil), defaultBundleSuffixes...)
	}
	suffixes := make([]string, 0, len(c.Discovery.BundleSuffixes))
	for _, suffix := range c.Discovery.BundleSuffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" {
			continue
		}
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		suffixes = append(suffixes, suffix)
	}
	c.Discovery.BundleSuffixes = suffixes
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
