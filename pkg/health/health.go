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

// Package health runs named self checks against the key lifecycle services
// and aggregates their outcome.
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status is the outcome of a check.
type Status string

const (
	StatusHealthy Status = "healthy"
	// StatusUnhealthy means the round trip failed.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded means the round trip passed without a protection
	// such as memory locking.
	StatusDegraded Status = "degraded"
)

// CheckResult is what one check observed.
type CheckResult struct {
	Name string `json:"name"`
	Status Status `json:"status"`
	// Message explains a degraded status.
	Message string `json:"message,omitempty"`
	Latency time.Duration `json:"latency"`
	// Details holds non-secret observations such as key and ciphertext lengths.
	Details map[string]string `json:"details,omitempty"`
	Error string `json:"error,omitempty"`
}

// Passed reports whether the check did not fail outright
func (r CheckResult) Passed() bool {
	return r.Status != StatusUnhealthy
}

// CheckFunc performs one check. The Checker fills in Name and Latency.
type CheckFunc func(ctx context.Context) CheckResult

// DegradedError marks a probe that succeeded with a missing protection
type DegradedError struct {
	Reason string
}

func (e *DegradedError) Error() string {
	return e.Reason
}

// Degraded returns an error that makes Probe report StatusDegraded
func Degraded(format string, args ...interface{}) error {
	return &DegradedError{Reason: fmt.Sprintf(format, args...)}
}

// Probe adapts fn into a CheckFunc. fn records details as it runs. A nil
// return is healthy, a *DegradedError is degraded and anything else is
// unhealthy.
func Probe(fn func(ctx context.Context, details map[string]string) error) CheckFunc {
	return func(ctx context.Context) CheckResult {
		details := make(map[string]string)
		err := fn(ctx, details)

		result := CheckResult{Status: StatusHealthy, Details: details}
		var degraded *DegradedError
		switch {
		case err == nil:
		case errors.As(err, &degraded):
			result.Status = StatusDegraded
			result.Message = degraded.Reason
		default:
			result.Status = StatusUnhealthy
			result.Error = err.Error()
		}
		return result
	}
}

type namedCheck struct {
	name  string
	check CheckFunc
}

// Checker runs registered checks in registration order.
type Checker struct {
	mu     sync.RWMutex
	checks []namedCheck
}

func NewChecker() *Checker {
	return &Checker{}
}

// RegisterCheck appends check under name, or replaces an existing check of
// that name without moving it. A nil check is ignored.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	if check == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.checks {
		if c.checks[i].name == name {
			c.checks[i].check = check
			return
		}
	}
	c.checks = append(c.checks, namedCheck{name: name, check: check})
}

func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.checks {
		if c.checks[i].name == name {
			c.checks = append(c.checks[:i], c.checks[i+1:]...)
			return
		}
	}
}

// Run executes every check in order. A panicking check is reported as
// unhealthy. Once ctx is done the remaining checks are reported unhealthy
// without running.
func (c *Checker) Run(ctx context.Context) []CheckResult {
	c.mu.RLock()
	checks := make([]namedCheck, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	results := make([]CheckResult, 0, len(checks))
	for _, nc := range checks {
		if err := ctx.Err(); err != nil {
			results = append(results, CheckResult{
				Name:   nc.name,
				Status: StatusUnhealthy,
				Error:  err.Error(),
			})
			continue
		}

		start := time.Now()
		result := runCheck(ctx, nc.check)
		result.Latency = time.Since(start)
		result.Name = nc.name
		results = append(results, result)
	}
	return results
}

func runCheck(ctx context.Context, check CheckFunc) (result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = CheckResult{
				Status: StatusUnhealthy,
				Error:  fmt.Sprintf("check panicked: %v", r),
			}
		}
	}()
	return check(ctx)
}

// GetAllChecks lists check names in run order.
func (c *Checker) GetAllChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for _, nc := range c.checks {
		names = append(names, nc.name)
	}
	return names
}

// IsHealthy runs every check and reports whether none failed.
func (c *Checker) IsHealthy(ctx context.Context) bool {
	return AggregateStatus(c.Run(ctx)) != StatusUnhealthy
}

// AggregateStatus is the worst status among results. No results is healthy.
func AggregateStatus(results []CheckResult) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}
