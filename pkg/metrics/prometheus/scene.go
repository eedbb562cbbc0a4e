package prometheus

import (
	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterSceneMetricsConstructor(newSceneMetrics)
}

type sceneMetrics struct {
	opens       *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	openScenes  prometheus.Gauge
	copyBytes   prometheus.Histogram
	copyPayload prometheus.Counter
}

func newSceneMetrics() metrics.SceneMetrics {
	reg := metrics.GetRegistry()
	return &sceneMetrics{
		opens: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "splatastic_scene_opens_total",
				Help: "Total OpenScene calls by result",
			},
			[]string{"result"}, // "ok", "capacity_exceeded"
		),
		outcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "splatastic_scene_outcomes_total",
				Help: "Total scene loads reaching a terminal status",
			},
			[]string{"outcome"}, // "success", "failed"
		),
		openScenes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "splatastic_scene_open_count",
				Help: "Current number of live scene slots (MaxScenes = 8)",
			},
		),
		copyBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "splatastic_scene_copy_payload_bytes",
				Help:    "Distribution of payload sizes copied via CopyPayload",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		copyPayload: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "splatastic_scene_copy_payload_total",
				Help: "Total CopyPayload calls",
			},
		),
	}
}

func (m *sceneMetrics) ObserveOpen(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "capacity_exceeded"
	}
	m.opens.WithLabelValues(result).Inc()
}

func (m *sceneMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *sceneMetrics) RecordOpenScenes(count int) {
	if m == nil {
		return
	}
	m.openScenes.Set(float64(count))
}

func (m *sceneMetrics) ObserveCopyPayload(bytes int) {
	if m == nil {
		return
	}
	m.copyPayload.Inc()
	m.copyBytes.Observe(float64(bytes))
}
