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
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-pqmesh/pkg/health"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/secure"
)

var selftestMessage = []byte("pqmesh selftest message")

// selftestCmd represents the selftest command
var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run round trips through every service",
	Long: `Run a key generation and round trip through the KEM service, the DSA
service, the hybrid key exchange, the hybrid signature scheme and the
secure key store. Only lengths and key ids are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		results := newSelfTest(rt).Run(cmd.Context())
		if err := NewPrinter(getConfig().OutputFormat, cmd.OutOrStdout()).PrintSelfTest(results); err != nil {
			return err
		}

		if getConfig().Verbose && metrics.IsEnabled() {
			fmt.Fprintln(cmd.ErrOrStderr(), "\nMetrics:")
			if err := metrics.WriteSummary(cmd.ErrOrStderr(), nil); err != nil {
				return err
			}
		}

		failed := 0
		for _, r := range results {
			if !r.Passed() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("selftest: %d of %d checks failed", failed, len(results))
		}
		return nil
	},
}

// newSelfTest registers a check per service of rt
func newSelfTest(rt *Runtime) *health.Checker {
	checker := health.NewChecker()
	checker.RegisterCheck("kem", health.Probe(func(_ context.Context, d map[string]string) error {
		return checkKEM(rt, d)
	}))
	checker.RegisterCheck("dsa", health.Probe(func(_ context.Context, d map[string]string) error {
		return checkDSA(rt, d)
	}))
	checker.RegisterCheck("hybrid-key-exchange", health.Probe(func(_ context.Context, d map[string]string) error {
		return checkHybridKEX(rt, d)
	}))
	checker.RegisterCheck("hybrid-signature", health.Probe(func(_ context.Context, d map[string]string) error {
		return checkHybridSig(rt, d)
	}))
	checker.RegisterCheck("secure-storage", health.Probe(func(_ context.Context, d map[string]string) error {
		return checkStorage(rt, d)
	}))
	return checker
}

func checkKEM(rt *Runtime, d map[string]string) error {
	kp, err := rt.KEM.GenerateKeyPair("selftest-kem", 1)
	if err != nil {
		return err
	}
	defer kp.Zeroize()
	d["algorithm"] = kp.Algorithm.String()
	d["public_key"] = strconv.Itoa(len(kp.PublicKey))

	enc, err := rt.KEM.Encapsulate(kp.PublicKey)
	if err != nil {
		return err
	}
	defer enc.Zeroize()
	d["ciphertext"] = strconv.Itoa(len(enc.Ciphertext))
	d["shared_secret"] = strconv.Itoa(len(enc.SharedSecret))

	ss, err := rt.KEM.DecapsulateWithKeyID(kp.KeyID, enc.Ciphertext)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(ss)
	if !bytes.Equal(ss, enc.SharedSecret) {
		return errors.New("decapsulated secret does not match")
	}
	return nil
}

func checkDSA(rt *Runtime, d map[string]string) error {
	kp, err := rt.DSA.GenerateKeyPair("selftest-dsa", 1)
	if err != nil {
		return err
	}
	defer kp.Zeroize()
	d["algorithm"] = kp.Algorithm.String()
	d["public_key"] = strconv.Itoa(len(kp.PublicKey))

	sig, err := rt.DSA.SignWithKeyID(selftestMessage, kp.KeyID)
	if err != nil {
		return err
	}
	d["signature"] = strconv.Itoa(len(sig.SignatureBytes))

	if !rt.DSA.Verify(selftestMessage, sig.SignatureBytes, kp.PublicKey) {
		return errors.New("valid signature rejected")
	}
	if rt.DSA.Verify([]byte("tampered"), sig.SignatureBytes, kp.PublicKey) {
		return errors.New("signature accepted for a different message")
	}
	return nil
}

func checkHybridKEX(rt *Runtime, d map[string]string) error {
	kp, err := rt.KeyExchange.GenerateKeyPair("selftest-hybrid-kem", 1)
	if err != nil {
		return err
	}
	defer kp.Zeroize()
	d["key_id"] = kp.KeyID
	d["public_key"] = strconv.Itoa(len(kp.PublicKey()))

	enc, err := rt.KeyExchange.Encapsulate(kp.PublicKey())
	if err != nil {
		return err
	}
	defer enc.Zeroize()
	d["ciphertext"] = strconv.Itoa(len(enc.Ciphertext))
	d["shared_secret"] = strconv.Itoa(len(enc.SharedSecret))

	ss, err := rt.KeyExchange.DecapsulateWithKeyPair(kp, enc.Ciphertext)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(ss)
	if !bytes.Equal(ss, enc.SharedSecret) {
		return errors.New("peers derived different secrets")
	}

	sealed, err := rt.KeyExchange.Seal(enc.SharedSecret, selftestMessage, nil)
	if err != nil {
		return err
	}
	opened, err := rt.KeyExchange.Open(ss, sealed, nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(opened, selftestMessage) {
		return errors.New("payload round trip mismatch")
	}
	d["sealed_payload"] = strconv.Itoa(len(sealed))
	return nil
}

func checkHybridSig(rt *Runtime, d map[string]string) error {
	kp, err := rt.Signatures.GenerateKeyPair("selftest-hybrid-sig", 1)
	if err != nil {
		return err
	}
	defer kp.Zeroize()
	d["key_id"] = kp.KeyID
	d["public_key"] = strconv.Itoa(len(kp.PublicKey()))

	sig, err := rt.Signatures.Sign(selftestMessage, kp)
	if err != nil {
		return err
	}
	combined := sig.Bytes()
	d["signature"] = strconv.Itoa(len(combined))

	if !rt.Signatures.VerifyBytes(selftestMessage, combined, kp.PublicKey()) {
		return errors.New("valid hybrid signature rejected")
	}
	combined[0] ^= 0x01
	if rt.Signatures.VerifyBytes(selftestMessage, combined, kp.PublicKey()) {
		return errors.New("hybrid signature accepted with a broken classical half")
	}
	return nil
}

func checkStorage(rt *Runtime, d map[string]string) error {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	defer memguard.WipeBytes(secret)

	h, err := rt.Store.Store("selftest-storage", secret, "selftest", 1)
	if err != nil {
		return err
	}
	d["cipher"] = rt.Store.Cipher()
	d["memory_locked"] = strconv.FormatBool(rt.Store.MemoryLocked())

	got, ok := rt.Store.Get(h)
	if !ok {
		return errors.New("stored secret not found")
	}
	defer memguard.WipeBytes(got)
	if !bytes.Equal(got, secret) {
		return errors.New("stored secret mismatch")
	}
	if !rt.Store.Delete(h) {
		return errors.New("delete reported no entry")
	}
	if _, ok := rt.Store.Get(h); ok {
		return errors.New("secret still readable after delete")
	}

	var tmpID string
	err = rt.Store.TemporaryKey(secret, "selftest", func(tmp *secure.Handle) error {
		tmpID = tmp.KeyID
		got, ok := rt.Store.Get(tmp)
		if !ok {
			return errors.New("temporary secret not readable")
		}
		memguard.WipeBytes(got)
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range rt.Store.ListKeys() {
		if id == tmpID {
			return errors.New("temporary secret survived its scope")
		}
	}
	if !rt.Store.MemoryLocked() {
		return health.Degraded("memory locking unavailable")
	}
	return nil
}
