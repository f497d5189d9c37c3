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
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global configuration
	globalConfig *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pqmesh",
	Short: "go-pqmesh CLI - Hybrid post-quantum key lifecycle tool",
	Long: `pqmesh exercises the go-pqmesh key lifecycle core from the command
line: post-quantum KEM and signature services, the hybrid
X25519+ML-KEM-768 key exchange, the hybrid Ed25519+ML-DSA-65 signature
and the encrypted in-memory key store.

Supported providers:
  - auto:   liboqs when compiled in, otherwise circl
  - circl:  Cloudflare CIRCL (pure Go)
  - liboqs: Open Quantum Safe (requires -tags quantum)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and reports a failure on stderr
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printer := NewPrinter(globalConfig.OutputFormat, os.Stderr)
		_ = printer.PrintError(err) // Error printing to stderr is best-effort
	}
	return err
}

func init() {
	// Initialize global config
	globalConfig = NewConfig()

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&globalConfig.ConfigFile, "config", "",
		"config file (YAML); PQMESH_* environment variables override it")
	rootCmd.PersistentFlags().StringVar(&globalConfig.Provider, "provider", "",
		"provider to use (auto, circl, liboqs); overrides the config file")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.OutputFormat, "output", "o", "text",
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&globalConfig.Verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(algorithmsCmd)
	rootCmd.AddCommand(selftestCmd)
	rootCmd.AddCommand(keygenCmd)
}

// getConfig returns the global configuration
func getConfig() *Config {
	return globalConfig
}

// printVerbose prints a message if verbose mode is enabled
func printVerbose(cmd *cobra.Command, format string, args ...interface{}) {
	if globalConfig.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] "+format+"\n", args...)
	}
}
