package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with query-specific span creation methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartQuery starts the span covering a whole pipeline run.
func (t *Tracer) StartQuery(ctx context.Context, entitySet string, inputCount int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{InputCountAttr(inputCount)}
	if entitySet != "" {
		attrs = append(attrs, EntitySetAttr(entitySet))
	}
	return t.tracer.Start(ctx, "odata.query", trace.WithAttributes(attrs...))
}

// StartStage starts a span named "odata.query.<stage>".
func (t *Tracer) StartStage(ctx context.Context, stage string, inputCount int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, StageAttr(stage), InputCountAttr(inputCount))
	return t.tracer.Start(ctx, "odata.query."+stage, trace.WithAttributes(attrs...))
}

// StartLoad starts a span for loading an entity set from the store.
func (t *Tracer) StartLoad(ctx context.Context, entitySet, table string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "odata.query."+StageLoad, trace.WithAttributes(
		EntitySetAttr(entitySet),
		attribute.String(AttrDBTable, table),
	))
}

// StartDBQuery starts a span for a database query.
func (t *Tracer) StartDBQuery(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "db.query", trace.WithAttributes(
		attribute.String("db.operation", operation),
	))
}

// EndStage records the outcome of a stage on its span.
func (t *Tracer) EndStage(span trace.Span, resultCount int, hasNextLink bool) {
	span.SetAttributes(
		ResultCountAttr(resultCount),
		attribute.Bool(AttrHasNextLink, hasNextLink),
	)
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
