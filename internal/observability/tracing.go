// Package observability wires OpenTelemetry tracing for the conversion
// pipeline. Tracing is opt-in: an empty endpoint yields a no-op shutdown and
// the global no-op tracer provider stays in place.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/config"
)

// TracerName identifies this module's tracer.
const TracerName = "github.com/vishalvkulkarni-tech/MBD-Designer"

// ServiceName appears as service.name on exported spans.
const ServiceName = "mbd-designer"

// ShutdownFunc flushes and stops the trace provider.
type ShutdownFunc func(context.Context) error

// InitTracing configures the global tracer provider to export OTLP spans over
// gRPC. Returns a shutdown function the caller must invoke before exit.
func InitTracing(ctx context.Context, cfg config.TracingConfig) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	env := cfg.Environment
	if env == "" {
		env = "development"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		attribute.String("deployment.environment", env),
	))
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartStage opens a span for one pipeline stage (prompt, oracle, extract,
// validate, diagram, script).
func StartStage(ctx context.Context, stage string, attempt int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "pipeline."+stage,
		trace.WithAttributes(
			attribute.String("pipeline.stage", stage),
			attribute.Int("pipeline.attempt", attempt),
		),
	)
}

// RecordError marks a span failed and records the error event.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
