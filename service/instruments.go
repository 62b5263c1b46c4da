package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"justicia-backend/telemetry"
)

var tracer = telemetry.Tracer(telemetry.Scope + "/service")

// startSpan opens a span named after the service operation.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// counters are created lazily so a meter provider installed after package
// init is still picked up.
func addCount(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	counter, err := telemetry.Meter(telemetry.Scope).Int64Counter(name)
	if err != nil {
		slog.Default().Debug("metric instrument unavailable", "name", name, "error", err)
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
