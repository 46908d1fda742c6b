package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAnalyzer(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateAnalyzer() error {
	if c.Analyzer.Binary == "" {
		return errors.New("analyzer.binary must be set")
	}
	if c.Analyzer.ListTimeout <= 0 {
		return errors.New("analyzer.list_timeout must be positive")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if len(c.Discovery.BundleSuffixes) == 0 {
		return errors.New("discovery.bundle_suffixes must not be empty")
	}
	for _, suffix := range c.Discovery.BundleSuffixes {
		if suffix == "." {
			return fmt.Errorf("discovery.bundle_suffixes: %q is not a valid suffix", suffix)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
