package metrics

import "time"

// TaskMetrics observes pkg/task's scheduling and completion path.
type TaskMetrics interface {
	// ObserveScheduled records a task transitioning Created -> Scheduled.
	ObserveScheduled(desc string)
	// ObserveCompleted records a task's full Scheduled -> Completed
	// lifetime.
	ObserveCompleted(desc string, duration time.Duration)
	// RecordPending sets the current count of unresolved dependency
	// edges: one per Depends edge whose source task has not completed.
	RecordPending(count int)
}

// NewTaskMetrics returns a Prometheus-backed TaskMetrics, or nil if
// metrics are not enabled. pkg/task.New calls it for every TaskSystem and
// treats a nil TaskMetrics as "don't instrument".
func NewTaskMetrics() TaskMetrics {
	if !IsEnabled() || newPrometheusTaskMetrics == nil {
		return nil
	}
	return newPrometheusTaskMetrics()
}

// newPrometheusTaskMetrics is installed by pkg/metrics/prometheus's
// init(), the same import-cycle-avoiding indirection used throughout
// this package.
var newPrometheusTaskMetrics func() TaskMetrics

// RegisterTaskMetricsConstructor is called by pkg/metrics/prometheus
// during package initialization.
func RegisterTaskMetricsConstructor(constructor func() TaskMetrics) {
	newPrometheusTaskMetrics = constructor
}
