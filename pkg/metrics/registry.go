// Package metrics defines the metric-collector interfaces every
// instrumented component in splatastic uses, and a package-level
// switch (InitRegistry/IsEnabled) that lets callers construct metrics
// collectors that are no-ops until a concrete backend is wired in by
// importing pkg/metrics/prometheus for side effect.
//
// Components (pkg/task, pkg/worker, pkg/scenedb, pkg/asyncfile) build
// their collector with this package's New*Metrics constructors when they
// are created and nil-check every call site, so a nil collector has
// zero overhead: the New*Metrics constructors return nil
// when the registry hasn't been enabled, letting the same component
// code run with or without Prometheus wired in.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var registry *prometheus.Registry

// InitRegistry creates the process-wide Prometheus registry that every
// New*Metrics constructor in this package registers collectors against.
// Calling it more than once replaces the registry; callers normally call
// it exactly once, at startup, before constructing any metrics.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	return registry
}

// GetRegistry returns the registry created by InitRegistry, or nil if it
// hasn't been called.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called. New*Metrics
// constructors use this to decide whether to build a real collector or
// return nil.
func IsEnabled() bool {
	return registry != nil
}
