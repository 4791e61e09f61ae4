package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultTracerName = "htms"

// Telemetry bundles the metrics and tracer handed to page components.
type Telemetry struct {
	Metrics *Metrics
	Tracer  trace.Tracer
}

// New registers metrics and resolves a tracer from the global provider.
func New(opts ...Option) *Telemetry {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Telemetry{
		Metrics: newMetrics(config),
		Tracer:  otel.Tracer(config.TracerName),
	}
}

// Nop returns telemetry that records nothing.
func Nop() *Telemetry {
	return &Telemetry{Tracer: noop.NewTracerProvider().Tracer(defaultTracerName)}
}

// Start opens a span. A nil receiver behaves like Nop.
func (t *Telemetry) Start(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	var tracer trace.Tracer
	if t != nil {
		tracer = t.Tracer
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(defaultTracerName)
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// M returns the metrics, or nil for a nil receiver.
func (t *Telemetry) M() *Metrics {
	if t == nil {
		return nil
	}
	return t.Metrics
}

// End records err on span, sets its status and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
