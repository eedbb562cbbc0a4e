package metrics

// SceneMetrics observes pkg/scenedb's load outcomes.
type SceneMetrics interface {
	// ObserveOpen records a scene open attempt; ok is false if the
	// table was at MaxScenes capacity.
	ObserveOpen(ok bool)
	// ObserveOutcome records a scene reaching a terminal status
	// ("success", "failed").
	ObserveOutcome(outcome string)
	// RecordOpenScenes sets the current number of live scene slots.
	RecordOpenScenes(count int)
	// ObserveCopyPayload records a copyPayload call and the number of
	// bytes it copied.
	ObserveCopyPayload(bytes int)
}

// NewSceneMetrics returns a Prometheus-backed SceneMetrics, or nil if
// metrics are not enabled.
func NewSceneMetrics() SceneMetrics {
	if !IsEnabled() || newPrometheusSceneMetrics == nil {
		return nil
	}
	return newPrometheusSceneMetrics()
}

var newPrometheusSceneMetrics func() SceneMetrics

// RegisterSceneMetricsConstructor is called by pkg/metrics/prometheus
// during package initialization.
func RegisterSceneMetricsConstructor(constructor func() SceneMetrics) {
	newPrometheusSceneMetrics = constructor
}
