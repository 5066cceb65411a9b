package telemetry

import sdkmetric "go.opentelemetry.io/otel/sdk/metric"

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the deployment environment (dev, staging, production)
	Environment string

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool

	// Endpoint is the OTLP collector endpoint (optional)
	// If empty, spans are recorded but not exported
	Endpoint string

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	// 1.0 means all traces are sampled
	SampleRate float64

	// RuntimeMetrics starts Go runtime instrumentation. Metrics are pushed
	// to Endpoint when it is set. Independent of Enabled.
	RuntimeMetrics bool

	// MetricReaders receive runtime metrics in addition to the OTLP exporter
	MetricReaders []sdkmetric.Reader
}

// DefaultConfig returns a sensible default configuration
// Tracing disabled by default for CLI tool
func DefaultConfig() Config {
	return Config{
		ServiceName:    "taskweave",
		ServiceVersion: "dev",
		Environment:    "development",
		Enabled:        false,
		Endpoint:       "",
		SampleRate:     1.0,
	}
}

// ProductionConfig returns a configuration suitable for long-running servers
func ProductionConfig(endpoint string) Config {
	return Config{
		ServiceName:    "taskweave",
		ServiceVersion: "unknown",
		Environment:    "production",
		Enabled:        true,
		Endpoint:       endpoint,
		SampleRate:     0.1,
		RuntimeMetrics: true,
	}
}
