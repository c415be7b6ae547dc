// Package metrics exposes Prometheus metrics for suite runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/testforge/spectree/types"
)

const (
	MetricsNamespace = "spectree"
)

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of runtime errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of executed tests by outcome",
	}, []string{
		"suite",
		"run_id",
		"test",
		"result",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Outcome counts of the most recent run",
	}, []string{
		"suite",
		"run_id",
		"result",
	})

	runDurationSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the most recent run",
	}, []string{
		"suite",
		"run_id",
	})
)

// RecordTest records the outcome of a single test.
func RecordTest(suite, runID, test string, status types.TestStatus) {
	testsTotal.WithLabelValues(suite, runID, test, status.String()).Inc()
}

// RecordRun records the aggregate outcome of one run.
func RecordRun(suite, runID string, passed, failed, pending, ignored int, duration time.Duration) {
	runResults.WithLabelValues(suite, runID, types.TestStatusPass.String()).Set(float64(passed))
	runResults.WithLabelValues(suite, runID, types.TestStatusFail.String()).Set(float64(failed))
	runResults.WithLabelValues(suite, runID, types.TestStatusPending.String()).Set(float64(pending))
	runResults.WithLabelValues(suite, runID, types.TestStatusIgnored.String()).Set(float64(ignored))
	runDurationSeconds.WithLabelValues(suite, runID).Set(duration.Seconds())
}

// RecordError increments the error counter for an error category.
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}
