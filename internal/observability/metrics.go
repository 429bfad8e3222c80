package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the engine's metric instruments.
type Metrics struct {
	stageDuration   metric.Float64Histogram
	resultCount     metric.Int64Histogram
	dbQueryDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails on invalid parameters; fall back to a
	// bare instrument so recording never hits a nil.
	var err error

	m.stageDuration, err = meter.Float64Histogram(
		"odata.query.stage.duration",
		metric.WithDescription("Duration of query pipeline stages in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.stageDuration, _ = meter.Float64Histogram("odata.query.stage.duration")
	}

	m.resultCount, err = meter.Int64Histogram(
		"odata.result.count",
		metric.WithDescription("Number of entities left after the query pipeline"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		m.resultCount, _ = meter.Int64Histogram("odata.result.count")
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		"odata.db.query.duration",
		metric.WithDescription("Duration of database queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram("odata.db.query.duration")
	}

	m.errorCount, err = meter.Int64Counter(
		"odata.error.count",
		metric.WithDescription("Total number of query pipeline errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("odata.error.count")
	}

	return m
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, entitySet, stage string, duration time.Duration) {
	attrs := metric.WithAttributes(EntitySetAttr(entitySet), StageAttr(stage))
	m.stageDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordResultCount records the number of entities a pipeline run returned.
func (m *Metrics) RecordResultCount(ctx context.Context, entitySet string, count int) {
	m.resultCount.Record(ctx, int64(count), metric.WithAttributes(EntitySetAttr(entitySet)))
}

// RecordDBQuery records metrics for a database query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordError records a failed stage.
func (m *Metrics) RecordError(ctx context.Context, entitySet, stage, errorKind string) {
	attrs := metric.WithAttributes(
		EntitySetAttr(entitySet),
		StageAttr(stage),
		ErrorKindAttr(errorKind),
	)
	m.errorCount.Add(ctx, 1, attrs)
}
