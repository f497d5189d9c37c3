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
	"context"
	"fmt"

	"github.com/jeremyhahn/go-pqmesh/internal/config"
	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/adapter"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/dsa"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/hybrid"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/kem"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/provider"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/secure"
)

// Runtime is the fully wired key lifecycle core used by the commands. The
// KEM and DSA services use the configured mechanisms; the hybrid schemes
// always run on ML-KEM-768 and ML-DSA-65. Every service shares one Store.
type Runtime struct {
	Config      *config.Config
	Logger      logger.Logger
	Provider    provider.Provider
	Adapter     *adapter.Adapter
	Store       *secure.Store
	KEM         *kem.Service
	DSA         *dsa.Service
	KeyExchange *hybrid.KeyExchange
	Signatures  *hybrid.SignatureScheme

	cancel context.CancelFunc
}

// NewRuntime builds the provider, adapters, secure store and services
// described by cfg. The caller must Close the runtime.
func NewRuntime(cfg *config.Config, log logger.Logger) (*Runtime, error) {
	log = logger.OrNoOp(log)

	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	p, err := provider.New(cfg.Provider.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	a, err := adapter.New(p, cfg.Provider.KEMAlgorithm, cfg.Provider.SigAlgorithm, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter: %w", err)
	}
	hybridAdapter, err := adapter.New(p, pqc.AlgorithmMLKEM768.String(), pqc.AlgorithmMLDSA65.String(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create hybrid adapter: %w", err)
	}

	store, err := secure.New(&secure.Config{
		Cipher:     cfg.Storage.Cipher,
		BytesLimit: cfg.Storage.BytesLimit,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create secure store: %w", err)
	}

	kx, err := hybrid.NewKeyExchange(kem.New(hybridAdapter, store, log), log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	sigs, err := hybrid.NewSignatureScheme(dsa.New(hybridAdapter, store, log), log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Storage.SweepInterval > 0 {
		store.StartSweeper(ctx, cfg.Storage.SweepInterval)
	}

	return &Runtime{
		Config:      cfg,
		Logger:      log,
		Provider:    p,
		Adapter:     a,
		Store:       store,
		KEM:         kem.New(a, store, log),
		DSA:         dsa.New(a, store, log),
		KeyExchange: kx,
		Signatures:  sigs,
		cancel:      cancel,
	}, nil
}

// Close stops the sweeper and wipes every stored secret
func (r *Runtime) Close() error {
	r.cancel()
	return r.Store.Close()
}
