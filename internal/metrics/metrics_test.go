package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveToolchainCall(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveToolchainCall("build", nil)
	m.ObserveToolchainCall("build", nil)
	m.ObserveToolchainCall("build", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolchainCalls.WithLabelValues("build", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolchainCalls.WithLabelValues("build", ResultFailure)))
}

func TestObserveTestRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveTestRun(ResultFailure, map[string]int{"pass": 3, "fail": 1}, 1234, 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnitTestRuns.WithLabelValues(ResultFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.UnitTests.WithLabelValues("pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnitTests.WithLabelValues("fail")))
	assert.Equal(t, 1234.0, testutil.ToFloat64(m.UnitTestGas))

	n, err := testutil.GatherAndCount(reg, "movevm_unit_test_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
