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

	"github.com/spf13/cobra"
)

// Key kinds accepted by keygen --kind
const (
	KindKEM       = "kem"
	KindSig       = "sig"
	KindHybridKEM = "hybrid-kem"
	KindHybridSig = "hybrid-sig"
)

var keygenOpts struct {
	kind         string
	keyID        string
	validityDays int
}

// keygenCmd represents the keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key pair and print its public record",
	Long: `Generate a key pair of the given kind and print its public record.
Secret keys never leave the process; they are held in encrypted memory
until the command exits.

Kinds:
  - kem:        configured KEM (default ML-KEM-768)
  - sig:        configured signature (default ML-DSA-65)
  - hybrid-kem: X25519 + ML-KEM-768
  - hybrid-sig: Ed25519 + ML-DSA-65`,
	Example: `  pqmesh keygen --kind hybrid-kem --key-id node-1 -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		validity := keygenOpts.validityDays
		if validity <= 0 {
			validity = rt.Config.Keys.ValidityDays
		}
		printer := NewPrinter(getConfig().OutputFormat, cmd.OutOrStdout())

		switch keygenOpts.kind {
		case KindKEM, KindSig:
			generate := rt.KEM.GenerateKeyPair
			if keygenOpts.kind == KindSig {
				generate = rt.DSA.GenerateKeyPair
			}
			kp, err := generate(keygenOpts.keyID, validity)
			if err != nil {
				return fmt.Errorf("failed to generate key pair: %w", err)
			}
			defer kp.Zeroize()
			printVerbose(cmd, "Generated %s", kp)
			return printer.PrintKeyPair(kp.Record(false))

		case KindHybridKEM, KindHybridSig:
			generate := rt.KeyExchange.GenerateKeyPair
			if keygenOpts.kind == KindHybridSig {
				generate = rt.Signatures.GenerateKeyPair
			}
			kp, err := generate(keygenOpts.keyID, validity)
			if err != nil {
				return fmt.Errorf("failed to generate key pair: %w", err)
			}
			defer kp.Zeroize()
			printVerbose(cmd, "Generated %s", kp)
			return printer.PrintHybridKeyPair(kp.Record())

		default:
			return fmt.Errorf("unknown key kind: %q (must be %s, %s, %s or %s)",
				keygenOpts.kind, KindKEM, KindSig, KindHybridKEM, KindHybridSig)
		}
	},
}

func init() {
	keygenCmd.Flags().StringVar(&keygenOpts.kind, "kind", KindHybridKEM,
		"key kind (kem, sig, hybrid-kem, hybrid-sig)")
	keygenCmd.Flags().StringVar(&keygenOpts.keyID, "key-id", "",
		"key identifier (default derived from the public key)")
	keygenCmd.Flags().IntVar(&keygenOpts.validityDays, "validity-days", 0,
		"validity period in days (default from config)")
}
