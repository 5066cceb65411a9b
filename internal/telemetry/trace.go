// Package telemetry wires OpenTelemetry tracing for CLI commands and the
// pipeline stages they run.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Pipeline stage names used for child spans.
const (
	StageSanitize  = "sanitize"
	StageHints     = "hints"
	StageEmbed     = "embed"
	StageCluster   = "cluster"
	StageInsert    = "insert"
	StageOrder     = "order"
	StageName      = "name"
	StageSerialize = "serialize"
)

// StartCommandSpan creates a span for a CLI command or MCP tool execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, tp, "reorganize")
//	defer span.End()
func StartCommandSpan(ctx context.Context, tp trace.TracerProvider, cmdName string) (context.Context, trace.Span) {
	tracer := tracerProvider(tp).Tracer("commands")
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)

	return ctx, span
}

// StartStageSpan creates a child span for one pipeline stage.
func StartStageSpan(ctx context.Context, tp trace.TracerProvider, stage string) (context.Context, trace.Span) {
	tracer := tracerProvider(tp).Tracer("pipeline")
	ctx, span := tracer.Start(ctx, "stage."+stage)

	span.SetAttributes(
		attribute.String("stage", stage),
		attribute.String("component", "engine"),
	)

	return ctx, span
}

// StartProviderSpan creates a span for an embedding provider call.
func StartProviderSpan(ctx context.Context, tp trace.TracerProvider, providerName, operation string) (context.Context, trace.Span) {
	tracer := tracerProvider(tp).Tracer("providers")
	ctx, span := tracer.Start(ctx, "provider."+operation)

	span.SetAttributes(
		attribute.String("provider", providerName),
		attribute.String("operation", operation),
		attribute.String("component", "provider"),
	)

	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status.
// This should be called when an operation fails.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(
		attribute.Bool("error", true),
	)
}

// RecordWarning adds a span event for a degraded step without failing the span.
func RecordWarning(span trace.Span, code, message string) {
	span.AddEvent("warning", trace.WithAttributes(
		attribute.String("error_code", code),
		attribute.String("message", message),
	))
}

// RecordDuration records the duration of an operation as a span attribute.
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(
		attribute.Int64(name+"_ms", duration.Milliseconds()),
	)
}

// RecordCounts records integer results as span attributes.
//
// Usage:
//
//	telemetry.RecordCounts(span, map[string]int64{
//	    "tasks":    42,
//	    "clusters": 7,
//	})
func RecordCounts(span trace.Span, counts map[string]int64) {
	for key, value := range counts {
		span.SetAttributes(
			attribute.Int64(key, value),
		)
	}
}

func tracerProvider(tp trace.TracerProvider) trace.TracerProvider {
	if tp == nil {
		return noop.NewTracerProvider()
	}
	return tp
}
