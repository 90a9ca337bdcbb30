// Package telemetry wires OpenTelemetry tracing and metrics for the
// dispatcher pipeline (spec.md §4.H): one span per pipeline stage, and
// counters for cache hits/misses, rate-limit rejections, and audit
// failures. Exporters write to stderr only — stdout is reserved
// exclusively for the JSON-RPC wire protocol (spec.md §6).
package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Argha713/mcp-pipeline-server/internal/dispatcher"

// Telemetry holds the tracer/meter and the counters the pipeline
// increments at each stage.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter

	cacheHits        metric.Int64Counter
	cacheMisses       metric.Int64Counter
	rateLimitRejections metric.Int64Counter
	auditFailures     metric.Int64Counter
}

// New builds a Telemetry instance whose trace/metric exporters write JSON
// to stderrWriter (conventionally os.Stderr — never os.Stdout).
func New(ctx context.Context, serviceName string, stderrWriter io.Writer) (*Telemetry, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("merge otel resource: %w", err)
	}

	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(stderrWriter),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(stderrWriter))
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	tracer := tp.Tracer(instrumentationName)
	meter := mp.Meter(instrumentationName)

	cacheHits, err := meter.Int64Counter("mcp.cache.hits")
	if err != nil {
		return nil, fmt.Errorf("create cache hits counter: %w", err)
	}
	cacheMisses, err := meter.Int64Counter("mcp.cache.misses")
	if err != nil {
		return nil, fmt.Errorf("create cache misses counter: %w", err)
	}
	rateLimitRejections, err := meter.Int64Counter("mcp.ratelimit.rejections")
	if err != nil {
		return nil, fmt.Errorf("create rate limit rejections counter: %w", err)
	}
	auditFailures, err := meter.Int64Counter("mcp.audit.failures")
	if err != nil {
		return nil, fmt.Errorf("create audit failures counter: %w", err)
	}

	return &Telemetry{
		tracerProvider:      tp,
		meterProvider:       mp,
		tracer:              tracer,
		meter:               meter,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		rateLimitRejections: rateLimitRejections,
		auditFailures:       auditFailures,
	}, nil
}

// StartSpan starts a span for one pipeline stage (e.g. "authorize",
// "rate_limit", "cache_lookup", "invoke").
func (t *Telemetry) StartSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, stage)
}

// RecordCacheHit increments the cache-hit counter.
func (t *Telemetry) RecordCacheHit(ctx context.Context) { t.cacheHits.Add(ctx, 1) }

// RecordCacheMiss increments the cache-miss counter.
func (t *Telemetry) RecordCacheMiss(ctx context.Context) { t.cacheMisses.Add(ctx, 1) }

// RecordRateLimitRejection increments the rate-limit rejection counter.
func (t *Telemetry) RecordRateLimitRejection(ctx context.Context) {
	t.rateLimitRejections.Add(ctx, 1)
}

// RecordAuditFailure increments the audit-failure counter. Audit failures
// are never fatal to the tool call, but they are always observable.
func (t *Telemetry) RecordAuditFailure(ctx context.Context) { t.auditFailures.Add(ctx, 1) }

// Shutdown flushes and stops both providers. Call once during process
// teardown.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if err := t.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	if err := t.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}

// Null is the no-op Telemetry variant used when telemetry is disabled
// (spec.md §4.J): every method is a no-op, and StartSpan returns the
// noop/global tracer's span so callers never need a nil check.
type Null struct{}

func (Null) StartSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "noop")
}
func (Null) RecordCacheHit(context.Context)           {}
func (Null) RecordCacheMiss(context.Context)          {}
func (Null) RecordRateLimitRejection(context.Context) {}
func (Null) RecordAuditFailure(context.Context)       {}
func (Null) Shutdown(context.Context) error           { return nil }

// Recorder is the capability the dispatcher (and main, for teardown)
// depends on, satisfied by both *Telemetry and Null.
type Recorder interface {
	StartSpan(ctx context.Context, stage string) (context.Context, trace.Span)
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordRateLimitRejection(ctx context.Context)
	RecordAuditFailure(ctx context.Context)
	Shutdown(ctx context.Context) error
}
