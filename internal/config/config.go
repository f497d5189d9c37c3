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

package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/aead"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/provider"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/secure"
)

// Config represents the complete pqmesh configuration
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Storage  StorageConfig  `yaml:"storage"`
	Keys     KeysConfig     `yaml:"keys"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ProviderConfig selects the post-quantum primitive provider and mechanisms
type ProviderConfig struct {
	Name         string `yaml:"name"` // auto, circl, liboqs
	KEMAlgorithm string `yaml:"kem_algorithm"`
	SigAlgorithm string `yaml:"sig_algorithm"`
}

// StorageConfig controls the encrypted in-memory key store
type StorageConfig struct {
	Cipher        string        `yaml:"cipher"` // auto, aes-256-gcm, chacha20-poly1305
	BytesLimit    int64         `yaml:"bytes_limit"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// KeysConfig controls generated key lifetimes
type KeysConfig struct {
	ValidityDays int `yaml:"validity_days"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls metrics collection
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:         provider.NameAuto,
			KEMAlgorithm: pqc.AlgorithmMLKEM768.String(),
			SigAlgorithm: pqc.AlgorithmMLDSA65.String(),
		},
		Storage: StorageConfig{
			Cipher:        aead.Auto,
			BytesLimit:    aead.DefaultBytesLimit,
			SweepInterval: secure.DefaultSweepInterval,
		},
		Keys: KeysConfig{
			ValidityDays: pqc.DefaultValidityDays,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logger.FormatText,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from a YAML file layered over Default, applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies PQMESH_* environment variables
func applyEnvOverrides(cfg *Config) {
	if name := os.Getenv("PQMESH_PROVIDER"); name != "" {
		cfg.Provider.Name = name
	}
	if kem := os.Getenv("PQMESH_KEM_ALGORITHM"); kem != "" {
		cfg.Provider.KEMAlgorithm = kem
	}
	if sig := os.Getenv("PQMESH_SIG_ALGORITHM"); sig != "" {
		cfg.Provider.SigAlgorithm = sig
	}
	if cipher := os.Getenv("PQMESH_STORAGE_CIPHER"); cipher != "" {
		cfg.Storage.Cipher = cipher
	}
	if days := os.Getenv("PQMESH_VALIDITY_DAYS"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			log.Printf("Warning: invalid PQMESH_VALIDITY_DAYS value %q, using %d",
				days, cfg.Keys.ValidityDays)
		} else {
			cfg.Keys.ValidityDays = n
		}
	}
	if level := os.Getenv("PQMESH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("PQMESH_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
}

// Validate checks that every setting names something this build supports
func (c *Config) Validate() error {
	if !slices.Contains(provider.Names(), strings.ToLower(c.Provider.Name)) {
		return fmt.Errorf("invalid provider: %q (must be one of %s)",
			c.Provider.Name, strings.Join(provider.Names(), ", "))
	}

	kem, err := pqc.ParseAlgorithm(c.Provider.KEMAlgorithm)
	if err != nil || !kem.IsKEM() || !kem.IsPostQuantum() {
		return fmt.Errorf("invalid kem_algorithm: %q", c.Provider.KEMAlgorithm)
	}
	sig, err := pqc.ParseAlgorithm(c.Provider.SigAlgorithm)
	if err != nil || !sig.IsSignature() || !sig.IsPostQuantum() {
		return fmt.Errorf("invalid sig_algorithm: %q", c.Provider.SigAlgorithm)
	}

	if _, err := aead.Resolve(c.Storage.Cipher); err != nil {
		return fmt.Errorf("invalid storage cipher: %w", err)
	}
	if c.Storage.BytesLimit < 0 {
		return fmt.Errorf("storage bytes_limit cannot be negative: %d", c.Storage.BytesLimit)
	}
	if c.Storage.SweepInterval < 0 {
		return fmt.Errorf("storage sweep_interval cannot be negative: %s", c.Storage.SweepInterval)
	}

	if c.Keys.ValidityDays < 0 {
		return fmt.Errorf("keys validity_days cannot be negative: %d", c.Keys.ValidityDays)
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	format := strings.ToLower(c.Logging.Format)
	if format != logger.FormatText && format != logger.FormatJSON {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// NewLogger builds the slog-backed logger described by the logging section
func (c *Config) NewLogger() logger.Logger {
	level, err := logger.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logger.LevelInfo
	}
	return logger.NewSlogAdapter(&logger.SlogConfig{
		Level:  level,
		Format: c.Logging.Format,
	})
}
