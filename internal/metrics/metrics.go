package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "movevm"

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// Metrics are the collectors of the bridge.
type Metrics struct {
	ToolchainCalls   *prometheus.CounterVec
	UnitTests        *prometheus.CounterVec
	UnitTestRuns     *prometheus.CounterVec
	UnitTestDuration prometheus.Histogram
	UnitTestGas      prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ToolchainCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toolchain_calls_total",
			Help:      "Toolchain invocations by action and result",
		}, []string{"action", "result"}),
		UnitTests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_tests_total",
			Help:      "Unit tests executed by status",
		}, []string{"status"}),
		UnitTestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_test_runs_total",
			Help:      "Package test runs by aggregate result",
		}, []string{"result"}),
		UnitTestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_test_run_duration_seconds",
			Help:      "Wall time of package test runs",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		UnitTestGas: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_test_gas_used_total",
			Help:      "Gas consumed by unit tests",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ToolchainCalls, m.UnitTests, m.UnitTestRuns, m.UnitTestDuration, m.UnitTestGas)
	}
	return m
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the collectors registered with the default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// ObserveToolchainCall counts one toolchain call.
func (m *Metrics) ObserveToolchainCall(action string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.ToolchainCalls.WithLabelValues(action, result).Inc()
}

// ObserveTestRun records a finished package test run.
func (m *Metrics) ObserveTestRun(result string, statuses map[string]int, gasUsed uint64, elapsed time.Duration) {
	m.UnitTestRuns.WithLabelValues(result).Inc()
	for status, n := range statuses {
		m.UnitTests.WithLabelValues(status).Add(float64(n))
	}
	m.UnitTestGas.Add(float64(gasUsed))
	m.UnitTestDuration.Observe(elapsed.Seconds())
}
