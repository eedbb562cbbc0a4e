package prometheus

import (
	"strconv"

	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterWorkerMetricsConstructor(newWorkerMetrics)
}

type workerMetrics struct {
	activeDepth *prometheus.GaugeVec
	jobsRun     *prometheus.CounterVec
	steals      *prometheus.CounterVec
}

func newWorkerMetrics() metrics.WorkerMetrics {
	reg := metrics.GetRegistry()
	return &workerMetrics{
		activeDepth: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "splatastic_worker_active_depth",
				Help: "Current nested yieldUntil scheduler frame depth, by worker",
			},
			[]string{"worker_id"},
		),
		jobsRun: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "splatastic_worker_jobs_run_total",
				Help: "Total jobs executed, by worker",
			},
			[]string{"worker_id"},
		),
		steals: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "splatastic_worker_steals_total",
				Help: "Total jobs run via StealJob instead of the main queue, by worker",
			},
			[]string{"worker_id"},
		),
	}
}

func (m *workerMetrics) RecordActiveDepth(workerID int, depth int) {
	if m == nil {
		return
	}
	m.activeDepth.WithLabelValues(strconv.Itoa(workerID)).Set(float64(depth))
}

func (m *workerMetrics) ObserveJobRun(workerID int) {
	if m == nil {
		return
	}
	m.jobsRun.WithLabelValues(strconv.Itoa(workerID)).Inc()
}

func (m *workerMetrics) ObserveSteal(workerID int) {
	if m == nil {
		return
	}
	m.steals.WithLabelValues(strconv.Itoa(workerID)).Inc()
}
