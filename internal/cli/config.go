// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqmesh.
//
// go-pqmesh is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"io"

	"github.com/jeremyhahn/go-pqmesh/internal/config"
	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the YAML configuration file
	ConfigFile string

	// Provider overrides provider.name from the configuration file
	Provider string

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Verbose enables debug logging and extra output
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: string(OutputFormatText),
	}
}

// Load reads the runtime configuration and applies the command line
// overrides on top of it
func (c *Config) Load() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		return nil, err
	}
	if c.Provider != "" {
		cfg.Provider.Name = c.Provider
	}
	if c.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger returns the logger for a command. Diagnostics go to w so they
// never mix with command output. Without verbose, messages below warn are
// dropped regardless of the configured level.
func (c *Config) NewLogger(cfg *config.Config, w io.Writer) logger.Logger {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil || (!c.Verbose && level < logger.LevelWarn) {
		level = logger.LevelWarn
	}
	return logger.NewSlogAdapter(&logger.SlogConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: w,
	})
}
