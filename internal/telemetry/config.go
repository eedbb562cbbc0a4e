package telemetry

// Config configures distributed tracing. The zero value disables
// tracing entirely; DefaultConfig gives the local-collector defaults
// the splatload CLI starts from.
type Config struct {
	// Enabled turns span export on. Off, spans are no-ops.
	Enabled bool

	// ServiceName identifies this process to the trace backend, and
	// also names the tracer spans are created from.
	ServiceName string

	// ServiceVersion is reported alongside ServiceName.
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address (host:port).
	Endpoint string

	// Insecure dials the collector without TLS; the default for a
	// collector on localhost.
	Insecure bool

	// SampleRate is the fraction of traces to keep, in [0, 1]. Scene
	// loads are low-volume, so the default keeps every trace.
	SampleRate float64
}

// ProfilingConfig configures Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled turns profiling on.
	Enabled bool

	// ServiceName is the application name shown in Pyroscope.
	ServiceName string

	// ServiceVersion is attached as a tag on every profile.
	ServiceVersion string

	// Endpoint is the Pyroscope server URL (e.g. "http://localhost:4040").
	Endpoint string

	// ProfileTypes selects what to collect; see profileTypes for the
	// accepted names.
	ProfileTypes []string
}

// DefaultConfig returns the tracing defaults: disabled, pointed at a
// local collector, sampling everything.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "splatastic",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
