package metrics

// WorkerMetrics observes pkg/worker's nested-scheduler-frame behavior:
// how deep yieldUntil recursion goes, and how often jobs are stolen
// instead of run from the main queue.
type WorkerMetrics interface {
	// RecordActiveDepth sets the current nested frame depth for the
	// worker identified by id.
	RecordActiveDepth(workerID int, depth int)
	// ObserveJobRun records one job body executing on workerID.
	ObserveJobRun(workerID int)
	// ObserveSteal records a successful StealJob call on workerID.
	ObserveSteal(workerID int)
}

// NewWorkerMetrics returns a Prometheus-backed WorkerMetrics, or nil if
// metrics are not enabled.
func NewWorkerMetrics() WorkerMetrics {
	if !IsEnabled() || newPrometheusWorkerMetrics == nil {
		return nil
	}
	return newPrometheusWorkerMetrics()
}

var newPrometheusWorkerMetrics func() WorkerMetrics

// RegisterWorkerMetricsConstructor is called by pkg/metrics/prometheus
// during package initialization.
func RegisterWorkerMetricsConstructor(constructor func() WorkerMetrics) {
	newPrometheusWorkerMetrics = constructor
}
