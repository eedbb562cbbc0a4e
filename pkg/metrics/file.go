package metrics

// FileMetrics observes pkg/asyncfile's chunked read/write traffic.
type FileMetrics interface {
	// ObserveChunk records one chunk delivered to a read or write
	// callback.
	ObserveChunk(kind string, bytes int)
	// ObserveOutcome records a request reaching Success or Fail.
	ObserveOutcome(kind string, outcome string)
}

// NewFileMetrics returns a Prometheus-backed FileMetrics, or nil if
// metrics are not enabled.
func NewFileMetrics() FileMetrics {
	if !IsEnabled() || newPrometheusFileMetrics == nil {
		return nil
	}
	return newPrometheusFileMetrics()
}

var newPrometheusFileMetrics func() FileMetrics

// RegisterFileMetricsConstructor is called by pkg/metrics/prometheus
// during package initialization.
func RegisterFileMetricsConstructor(constructor func() FileMetrics) {
	newPrometheusFileMetrics = constructor
}
