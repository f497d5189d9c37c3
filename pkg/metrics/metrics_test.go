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

package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsEnabled(t *testing.T) {
	assert.True(t, IsEnabled())

	Disable()
	assert.False(t, IsEnabled())

	Enable()
	assert.True(t, IsEnabled())
}

func TestRecordOperation(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	OperationDuration.Reset()

	RecordOperation(OpKeygen, "ML-KEM-768", StatusSuccess, 0.001)
	assert.Equal(t, 1, testutil.CollectAndCount(OperationsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(OperationDuration))

	RecordOperation(OpSign, "ML-DSA-65", StatusError, 0.002)
	assert.Equal(t, 2, testutil.CollectAndCount(OperationsTotal))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSign, "ML-DSA-65", StatusError)))
}

func TestObserve(t *testing.T) {
	Enable()
	OperationsTotal.Reset()

	Observe(OpEncapsulate, "ML-KEM-768", time.Now(), nil)
	Observe(OpEncapsulate, "ML-KEM-768", time.Now(), errors.New("bad key"))
	Observe(OpEncapsulate, "ML-KEM-768", time.Now(), nil)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(OperationsTotal.WithLabelValues(OpEncapsulate, "ML-KEM-768", StatusSuccess)))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(OperationsTotal.WithLabelValues(OpEncapsulate, "ML-KEM-768", StatusError)))
}

func TestRecordWhenDisabled(t *testing.T) {
	Disable()
	defer Enable()

	OperationsTotal.Reset()
	RecordOperation(OpKeygen, "ML-KEM-768", StatusSuccess, 0.5)
	assert.Equal(t, 0, testutil.CollectAndCount(OperationsTotal))

	before := testutil.ToFloat64(IntegrityFailuresTotal)
	RecordIntegrityFailure()
	assert.Equal(t, before, testutil.ToFloat64(IntegrityFailuresTotal))
}

func TestStoredKeysAndIntegrity(t *testing.T) {
	Enable()

	base := testutil.ToFloat64(StoredKeys)
	AddStoredKeys(3)
	assert.Equal(t, base+3, testutil.ToFloat64(StoredKeys))
	AddStoredKeys(-3)
	assert.Equal(t, base, testutil.ToFloat64(StoredKeys))

	Disable()
	AddStoredKeys(1)
	Enable()
	assert.Equal(t, base+1, testutil.ToFloat64(StoredKeys), "gauge stays balanced across Disable")
	AddStoredKeys(-1)

	before := testutil.ToFloat64(IntegrityFailuresTotal)
	RecordIntegrityFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(IntegrityFailuresTotal))
}

func TestWriteSummary(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	RecordOperation(OpVerify, "Ed25519-ML-DSA-65", StatusSuccess, 0.001)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, `pqmesh_operations_total{algorithm="Ed25519-ML-DSA-65",operation="verify",status="success"} 1`)
	assert.Contains(t, out, "pqmesh_stored_keys{}")
	assert.NotContains(t, out, "go_goroutines")
}
