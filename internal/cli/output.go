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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jeremyhahn/go-pqmesh/pkg/health"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/hybrid"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// IsJSON reports whether the printer emits JSON
func (p *Printer) IsJSON() bool {
	return p.format == OutputFormatJSON
}

// AlgorithmInfo describes the active provider and what it exposes
type AlgorithmInfo struct {
	Provider      string   `json:"provider"`
	KEMAlgorithm  string   `json:"kem_algorithm"`
	SigAlgorithm  string   `json:"sig_algorithm"`
	KEMMechanism  string   `json:"kem_mechanism"`
	SigMechanism  string   `json:"sig_mechanism"`
	EnabledKEMs   []string `json:"enabled_kems"`
	EnabledSigs   []string `json:"enabled_sigs"`
	HybridKEM     string   `json:"hybrid_kem"`
	HybridSig     string   `json:"hybrid_sig"`
	StorageCipher string   `json:"storage_cipher"`
}

// PrintAlgorithms prints provider and mechanism information
func (p *Printer) PrintAlgorithms(info *AlgorithmInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(info)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Provider:       %s\n", info.Provider)
		fmt.Fprintf(p.writer, "KEM:            %s (%s)\n", info.KEMAlgorithm, info.KEMMechanism)
		fmt.Fprintf(p.writer, "Signature:      %s (%s)\n", info.SigAlgorithm, info.SigMechanism)
		fmt.Fprintf(p.writer, "Hybrid KEM:     %s\n", info.HybridKEM)
		fmt.Fprintf(p.writer, "Hybrid Sig:     %s\n", info.HybridSig)
		fmt.Fprintf(p.writer, "Storage Cipher: %s\n", info.StorageCipher)
		fmt.Fprintln(p.writer, "\nEnabled KEMs:")
		for _, name := range info.EnabledKEMs {
			fmt.Fprintf(p.writer, "  - %s\n", name)
		}
		fmt.Fprintln(p.writer, "\nEnabled Signatures:")
		for _, name := range info.EnabledSigs {
			fmt.Fprintf(p.writer, "  - %s\n", name)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSelfTest prints selftest results
func (p *Printer) PrintSelfTest(results []health.CheckResult) error {
	passed := 0
	for _, r := range results {
		if r.Passed() {
			passed++
		}
	}

	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": health.AggregateStatus(results),
			"passed": passed,
			"total":  len(results),
			"checks": results,
		})
	case OutputFormatText:
		for _, r := range results {
			status := "PASS"
			switch r.Status {
			case health.StatusDegraded:
				status = "WARN"
			case health.StatusUnhealthy:
				status = "FAIL"
			}
			fmt.Fprintf(p.writer, "[%s] %-22s %s", status, r.Name, r.Latency.Round(time.Microsecond))
			if len(r.Details) > 0 {
				fmt.Fprintf(p.writer, "  %s", formatDetails(r.Details))
			}
			if r.Message != "" {
				fmt.Fprintf(p.writer, "  (%s)", r.Message)
			}
			if r.Error != "" {
				fmt.Fprintf(p.writer, "  error: %s", r.Error)
			}
			fmt.Fprintln(p.writer)
		}
		fmt.Fprintf(p.writer, "\n%d/%d checks passed\n", passed, len(results))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyPair prints the public record of a post-quantum key pair
func (p *Printer) PrintKeyPair(record *pqc.KeyPairRecord) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(record)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Key ID:     %s\n", record.KeyID)
		fmt.Fprintf(p.writer, "Algorithm:  %s\n", record.Algorithm)
		fmt.Fprintf(p.writer, "Created:    %s\n", record.CreatedAt.Format(time.RFC3339))
		if record.ExpiresAt != nil {
			fmt.Fprintf(p.writer, "Expires:    %s\n", record.ExpiresAt.Format(time.RFC3339))
		}
		fmt.Fprintf(p.writer, "Public Key: %s\n", record.PublicKeyHex)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintHybridKeyPair prints the public record of a hybrid key pair
func (p *Printer) PrintHybridKeyPair(record *hybrid.KeyPairRecord) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(record)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Key ID:           %s\n", record.KeyID)
		fmt.Fprintf(p.writer, "Algorithm:        %s\n", record.Algorithm)
		fmt.Fprintf(p.writer, "Classical Key ID: %s\n", record.ClassicalKeyID)
		fmt.Fprintf(p.writer, "PQC Key ID:       %s\n", record.PQCKeyID)
		fmt.Fprintf(p.writer, "Created:          %s\n", record.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(p.writer, "Expires:          %s\n", record.ExpiresAt.Format(time.RFC3339))
		fmt.Fprintf(p.writer, "Public Key:       %s\n", record.PublicKeyHex)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func formatDetails(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+details[k])
	}
	return strings.Join(parts, " ")
}
