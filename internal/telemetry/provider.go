package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Export tuning for the OTLP exporters. The exporter retries failed
// batches itself; a run never waits on the collector longer than
// exportMaxElapsed.
const (
	exportBatchTimeout  = 5 * time.Second
	exportMaxBatchSize  = 512
	exportMaxElapsed    = 10 * time.Second
	runtimeReadInterval = time.Second
	metricInterval      = 30 * time.Second
)

// createResource creates an OTLP resource with service information
func createResource(cfg Config) (*resource.Resource, error) {
	return resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
		resource.WithProcessRuntimeDescription(),
		resource.WithHost(),
		resource.WithOS(),
		resource.WithTelemetrySDK(),
	)
}

// Provider owns the tracer provider, the optional runtime meter provider
// and their shutdown. Callers pass it explicitly; only the CLI entry point
// installs it globally.
type Provider struct {
	tp      trace.TracerProvider
	mp      *sdkmetric.MeterProvider
	closers []func(context.Context) error
}

// NewNoopProvider returns a provider whose spans are discarded.
func NewNoopProvider() *Provider {
	return &Provider{tp: noop.NewTracerProvider()}
}

// FromTracerProvider wraps an existing tracer provider. Shutdown is left to
// the owner of tp.
func FromTracerProvider(tp trace.TracerProvider) *Provider {
	if tp == nil {
		return NewNoopProvider()
	}
	return &Provider{tp: tp}
}

// NewProvider builds the providers cfg asks for. With tracing and runtime
// metrics both off it returns the noop provider.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	p := NewNoopProvider()
	if !cfg.Enabled && !cfg.RuntimeMetrics {
		return p, nil
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.Enabled {
		tp, err := newTracerProvider(ctx, cfg, res)
		if err != nil {
			return nil, err
		}
		p.tp = tp
		p.closers = append(p.closers, tp.Shutdown)
	}

	if cfg.RuntimeMetrics {
		mp, err := newMeterProvider(ctx, cfg, res)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
		p.mp = mp
		p.closers = append(p.closers, mp.Shutdown)

		if err := runtime.Start(
			runtime.WithMeterProvider(mp),
			runtime.WithMinimumReadMemStatsInterval(runtimeReadInterval),
		); err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("failed to start runtime instrumentation: %w", err)
		}
	}

	return p, nil
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate < 1.0 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}

	if cfg.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
			otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
				Enabled:         true,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     2 * time.Second,
				MaxElapsedTime:  exportMaxElapsed,
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(exportBatchTimeout),
			sdktrace.WithMaxExportBatchSize(exportMaxBatchSize),
		))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// newMeterProvider collects Go runtime metrics. They are pushed to the
// OTLP endpoint when one is set and handed to any extra readers in cfg.
func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.Endpoint != "" {
		exporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricInterval)),
		))
	}
	for _, r := range cfg.MetricReaders {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

// TracerProvider returns the underlying tracer provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	if p == nil || p.tp == nil {
		return noop.NewTracerProvider()
	}
	return p.tp
}

// RuntimeMetrics reports whether Go runtime instrumentation is running.
func (p *Provider) RuntimeMetrics() bool {
	return p != nil && p.mp != nil
}

// Install sets p as the process-wide otel tracer provider, and meter
// provider when runtime metrics are on.
func (p *Provider) Install() {
	otel.SetTracerProvider(p.TracerProvider())
	if p.RuntimeMetrics() {
		otel.SetMeterProvider(p.mp)
	}
}

// Shutdown flushes and stops the providers in reverse creation order.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i](ctx))
	}
	p.closers = nil
	return errors.Join(errs...)
}

// ForceFlush forces all pending spans and metrics to be exported
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if tp, ok := p.tp.(*sdktrace.TracerProvider); ok {
		errs = append(errs, tp.ForceFlush(ctx))
	}
	if p.mp != nil {
		errs = append(errs, p.mp.ForceFlush(ctx))
	}
	return errors.Join(errs...)
}
