// Package tracing wires the supervisor's effectuation stack to
// OpenTelemetry, grounded on the teacher's pkg/tracing.TracingManager
// (exporter/resource/provider construction), narrowed to the OTLP/HTTP
// exporter SPEC_FULL.md's DOMAIN STACK names — the teacher's jaeger
// alternative is dropped per DESIGN.md, since this module only promises
// one exporter family.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OTLP/HTTP exporter backing the supervisor's
// per-effectuation-frame spans.
type Config struct {
	ServiceName string
	Endpoint    string
	Insecure    bool
}

// New constructs a TracerProvider batching spans to an OTLP/HTTP
// collector at cfg.Endpoint, and returns the Tracer to wire into
// supervisor.Config.Tracer plus a shutdown func that flushes and stops
// the provider. Callers should only call New when tracing is enabled;
// supervisor.Config.Tracer is nil-safe and disables tracing at zero cost
// when left unset.
func New(ctx context.Context, cfg Config) (trace.Tracer, func(context.Context) error, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: creating OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: building resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return tp.Tracer(cfg.ServiceName), tp.Shutdown, nil
}
