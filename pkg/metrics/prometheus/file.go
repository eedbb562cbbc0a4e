package prometheus

import (
	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterFileMetricsConstructor(newFileMetrics)
}

type fileMetrics struct {
	chunkBytes *prometheus.HistogramVec
	outcomes   *prometheus.CounterVec
}

func newFileMetrics() metrics.FileMetrics {
	reg := metrics.GetRegistry()
	return &fileMetrics{
		chunkBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splatastic_file_chunk_bytes",
				Help:    "Distribution of chunk sizes delivered to read/write callbacks",
				Buckets: prometheus.ExponentialBuckets(4096, 4, 8),
			},
			[]string{"kind"}, // "read", "write"
		),
		outcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "splatastic_file_outcomes_total",
				Help: "Total file requests reaching Success or Fail",
			},
			[]string{"kind", "outcome"},
		),
	}
}

func (m *fileMetrics) ObserveChunk(kind string, bytes int) {
	if m == nil {
		return
	}
	m.chunkBytes.WithLabelValues(kind).Observe(float64(bytes))
}

func (m *fileMetrics) ObserveOutcome(kind string, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind, outcome).Inc()
}
