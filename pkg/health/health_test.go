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

package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func healthy(ctx context.Context) CheckResult {
	return CheckResult{Status: StatusHealthy}
}

func TestNewChecker(t *testing.T) {
	checker := NewChecker()
	if checker == nil {
		t.Fatal("NewChecker returned nil")
		return
	}
	if len(checker.GetAllChecks()) != 0 {
		t.Errorf("expected 0 checks, got %d", len(checker.GetAllChecks()))
	}
}

func TestRegisterCheck(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("kem", healthy)
	checker.RegisterCheck("dsa", healthy)

	// Register nil check (should be ignored)
	checker.RegisterCheck("nil", nil)

	// Replace existing check keeps its position
	checker.RegisterCheck("kem", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusDegraded}
	})

	checks := checker.GetAllChecks()
	if len(checks) != 2 || checks[0] != "kem" || checks[1] != "dsa" {
		t.Fatalf("unexpected checks: %v", checks)
	}

	results := checker.Run(context.Background())
	if results[0].Status != StatusDegraded {
		t.Errorf("expected replaced check to run, got %s", results[0].Status)
	}
}

func TestUnregisterCheck(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("a", healthy)
	checker.RegisterCheck("b", healthy)
	checker.UnregisterCheck("a")
	checker.UnregisterCheck("missing")

	checks := checker.GetAllChecks()
	if len(checks) != 1 || checks[0] != "b" {
		t.Errorf("unexpected checks after unregister: %v", checks)
	}
}

func TestRun_OrderNameAndLatency(t *testing.T) {
	checker := NewChecker()
	for _, name := range []string{"kem", "dsa", "hybrid-key-exchange", "secure-storage"} {
		checker.RegisterCheck(name, func(ctx context.Context) CheckResult {
			time.Sleep(time.Millisecond)
			return CheckResult{Name: "ignored", Status: StatusHealthy}
		})
	}

	results := checker.Run(context.Background())
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, want := range []string{"kem", "dsa", "hybrid-key-exchange", "secure-storage"} {
		if results[i].Name != want {
			t.Errorf("result %d: expected %s, got %s", i, want, results[i].Name)
		}
		if results[i].Latency < time.Millisecond {
			t.Errorf("result %d: latency not recorded", i)
		}
	}
}

func TestRun_PanicIsUnhealthy(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("boom", func(ctx context.Context) CheckResult {
		panic("provider crashed")
	})
	checker.RegisterCheck("after", healthy)

	results := checker.Run(context.Background())
	if results[0].Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", results[0].Status)
	}
	if results[0].Name != "boom" || results[0].Error == "" {
		t.Errorf("unexpected panic result: %+v", results[0])
	}
	if results[1].Status != StatusHealthy {
		t.Error("checks after a panic should still run")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ran := false
	checker := NewChecker()
	checker.RegisterCheck("skipped", func(ctx context.Context) CheckResult {
		ran = true
		return CheckResult{Status: StatusHealthy}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := checker.Run(ctx)
	if ran {
		t.Error("check should not run after cancellation")
	}
	if results[0].Status != StatusUnhealthy || results[0].Error != context.Canceled.Error() {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status Status
	}{
		{"nil error", nil, StatusHealthy},
		{"degraded", Degraded("memory locking unavailable"), StatusDegraded},
		{"wrapped degraded", errors.Join(errors.New("storage"), Degraded("no mlock")), StatusDegraded},
		{"failure", errors.New("secret mismatch"), StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := Probe(func(ctx context.Context, details map[string]string) error {
				details["ciphertext"] = "1120"
				return tt.err
			})
			result := check(context.Background())
			if result.Status != tt.status {
				t.Errorf("expected %s, got %s", tt.status, result.Status)
			}
			if result.Details["ciphertext"] != "1120" {
				t.Error("details not carried into the result")
			}
			if tt.status == StatusUnhealthy && result.Error != tt.err.Error() {
				t.Errorf("expected error %q, got %q", tt.err, result.Error)
			}
			if tt.status == StatusDegraded && result.Message == "" {
				t.Error("degraded result should carry a message")
			}
			if result.Passed() != (tt.status != StatusUnhealthy) {
				t.Errorf("Passed() = %v for %s", result.Passed(), tt.status)
			}
		})
	}
}

func TestIsHealthy(t *testing.T) {
	checker := NewChecker()
	if !checker.IsHealthy(context.Background()) {
		t.Error("empty checker should be healthy")
	}

	checker.RegisterCheck("degraded", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusDegraded}
	})
	if !checker.IsHealthy(context.Background()) {
		t.Error("degraded checks should not make the checker unhealthy")
	}

	checker.RegisterCheck("failed", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy}
	})
	if checker.IsHealthy(context.Background()) {
		t.Error("expected unhealthy checker")
	}
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]CheckResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i].Status = s
			}
			if got := AggregateStatus(results); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
