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
	"github.com/spf13/cobra"
)

// algorithmsCmd represents the algorithms command
var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "Show the active provider and its mechanisms",
	Long: `Show the provider selected by the configuration, the KEM and signature
mechanisms the services resolved to, and every mechanism the provider
exposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		info := &AlgorithmInfo{
			Provider:      rt.Provider.Name(),
			KEMAlgorithm:  rt.KEM.Algorithm().String(),
			SigAlgorithm:  rt.DSA.Algorithm().String(),
			KEMMechanism:  rt.KEM.Mechanism(),
			SigMechanism:  rt.DSA.Mechanism(),
			EnabledKEMs:   rt.Adapter.SupportedKEMAlgorithms(),
			EnabledSigs:   rt.Adapter.SupportedSigAlgorithms(),
			HybridKEM:     rt.KeyExchange.Algorithm().String(),
			HybridSig:     rt.Signatures.Algorithm().String(),
			StorageCipher: rt.Store.Cipher(),
		}
		return NewPrinter(getConfig().OutputFormat, cmd.OutOrStdout()).PrintAlgorithms(info)
	},
}

// newRuntime loads the configuration for cmd and wires the services
func newRuntime(cmd *cobra.Command) (*Runtime, error) {
	cfg, err := getConfig().Load()
	if err != nil {
		return nil, err
	}
	log := getConfig().NewLogger(cfg, cmd.ErrOrStderr())
	printVerbose(cmd, "Using provider %s (kem=%s, sig=%s, cipher=%s)",
		cfg.Provider.Name, cfg.Provider.KEMAlgorithm, cfg.Provider.SigAlgorithm, cfg.Storage.Cipher)
	return NewRuntime(cfg, log)
}
