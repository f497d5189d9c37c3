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

// Package metrics provides Prometheus instrumentation for go-pqmesh
// operations: per-operation counters and latency histograms, the number of
// secrets held by the secure store, and integrity failures.
package metrics

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all pqmesh metrics
	Namespace = "pqmesh"

	// Label names
	LabelOperation = "operation"
	LabelAlgorithm = "algorithm"
	LabelStatus    = "status"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpKeygen      = "keygen"
	OpEncapsulate = "encapsulate"
	OpDecapsulate = "decapsulate"
	OpSign        = "sign"
	OpVerify      = "verify"
	OpStore       = "store"
	OpGet         = "get"
	OpDelete      = "delete"
	OpSeal        = "seal"
	OpOpen        = "open"
)

var (
	// OperationsTotal counts operations by name, algorithm and status
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of pqmesh operations by type, algorithm, and status",
		},
		[]string{LabelOperation, LabelAlgorithm, LabelStatus},
	)

	// OperationDuration tracks operation latency in seconds. Post-quantum
	// key generation and signing sit in the sub-millisecond to low
	// millisecond range.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of pqmesh operations in seconds",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{LabelOperation, LabelAlgorithm},
	)

	// StoredKeys is the number of secrets held across every secure store in
	// the process
	StoredKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "stored_keys",
			Help:      "Number of secrets currently held in encrypted memory",
		},
	)

	// IntegrityFailuresTotal counts AEAD authentication failures
	IntegrityFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "integrity_failures_total",
			Help:      "Total number of authentication tag mismatches on decrypt",
		},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records an operation with its duration and status
func RecordOperation(operation, algorithm, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, algorithm, status).Inc()
	OperationDuration.WithLabelValues(operation, algorithm).Observe(duration)
}

// Observe records an operation that started at start; err selects the status.
//
//	start := time.Now()
//	ct, ss, err := provider.KEMEncapsulate(alg, pub)
//	metrics.Observe(metrics.OpEncapsulate, alg, start, err)
func Observe(operation, algorithm string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	RecordOperation(operation, algorithm, status, time.Since(start).Seconds())
}

// AddStoredKeys moves the stored key gauge by delta. Stores call it with +1
// and -1 as entries come and go. It is applied even while collection is
// disabled so increments and decrements stay paired.
func AddStoredKeys(delta int) {
	StoredKeys.Add(float64(delta))
}

// RecordIntegrityFailure increments the integrity failure counter
func RecordIntegrityFailure() {
	if !enabled.Load() {
		return
	}
	IntegrityFailuresTotal.Inc()
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}

// WriteSummary writes every pqmesh sample gathered from g as
// "name{labels} value" lines, sorted by name. Histograms are reported as
// their sample count.
func WriteSummary(w io.Writer, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}

	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Namespace+"_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)

	var errs []error
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return errors.Join(errs...)
}
