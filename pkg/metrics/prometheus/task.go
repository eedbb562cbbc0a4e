package prometheus

import (
	"time"

	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterTaskMetricsConstructor(newTaskMetrics)
}

type taskMetrics struct {
	scheduled *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	pending   prometheus.Gauge
}

func newTaskMetrics() metrics.TaskMetrics {
	reg := metrics.GetRegistry()
	return &taskMetrics{
		scheduled: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "splatastic_tasks_scheduled_total",
				Help: "Total number of tasks transitioned to Scheduled, by description",
			},
			[]string{"desc"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "splatastic_task_duration_milliseconds",
				Help: "Duration from Scheduled to Completed, by description",
				Buckets: []float64{
					0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
			[]string{"desc"},
		),
		pending: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "splatastic_tasks_pending",
				Help: "Dependency edges whose source task has not completed yet",
			},
		),
	}
}

func (m *taskMetrics) ObserveScheduled(desc string) {
	if m == nil {
		return
	}
	m.scheduled.WithLabelValues(desc).Inc()
}

func (m *taskMetrics) ObserveCompleted(desc string, duration time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(desc).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *taskMetrics) RecordPending(count int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(count))
}
