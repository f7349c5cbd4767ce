package specrun

import (
	"github.com/specrun/specrun/metrics"
	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/service"
)

// MetricsReporter is responsible for reporting metrics from run results.
type MetricsReporter interface {
	ReportResults(result *runner.RunResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the run results to metrics systems and publishes
// the outcome for the healthz endpoint.
func (r *DefaultMetricsReporter) ReportResults(result *runner.RunResult) {
	service.RecordLastRun(result.RunID, string(result.Status))
	metrics.RecordRun(
		result.RunID,
		string(result.Status),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Duration,
	)
}
