package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	tracingPrefix = "odata"
	timingPrefix  = "odata_server_timing"

	dbSpanKey   = "odata:db:span"
	dbStartKey  = "odata:db:start"
	dbTimingKey = "odata:db:timing_start"
)

// hookFactory builds the callback for one read operation.
type hookFactory func(operation string) func(*gorm.DB)

// registerReads registers before/after callbacks around the three gorm
// processors entity-set loads go through: Find (query), Rows (row) and Raw.
func registerReads(db *gorm.DB, prefix string, before, after hookFactory) error {
	cb := db.Callback()
	regs := []func() error{
		func() error { return cb.Query().Before("gorm:query").Register(prefix+":before_query", before("SELECT")) },
		func() error { return cb.Query().After("gorm:query").Register(prefix+":after_query", after("SELECT")) },
		func() error { return cb.Row().Before("gorm:row").Register(prefix+":before_row", before("ROW")) },
		func() error { return cb.Row().After("gorm:row").Register(prefix+":after_row", after("ROW")) },
		func() error { return cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before("RAW")) },
		func() error { return cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after("RAW")) },
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGORMCallbacks registers GORM callbacks tracing the read queries
// issued while loading entity sets. It is a no-op unless a tracer provider is
// configured and detailed DB tracing is enabled.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}
	tracer := cfg.Tracer()

	before := func(operation string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			ctx := db.Statement.Context
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, span := tracer.StartDBQuery(ctx, operation)
			db.Statement.Context = ctx
			db.InstanceSet(dbSpanKey, span)
			db.InstanceSet(dbStartKey, time.Now())
		}
	}
	after := func(operation string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			finishDBSpan(db, tracer, cfg.Metrics(), operation)
		}
	}
	return registerReads(db, tracingPrefix, before, after)
}

func finishDBSpan(db *gorm.DB, tracer *Tracer, metrics *Metrics, operation string) {
	val, ok := db.InstanceGet(dbSpanKey)
	if !ok {
		return
	}
	span, ok := val.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if table := db.Statement.Table; table != "" {
		span.SetAttributes(attribute.String(AttrDBTable, table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	if db.Error != nil {
		tracer.RecordError(span, db.Error)
	}

	if start, ok := instanceTime(db, dbStartKey); ok {
		metrics.RecordDBQuery(db.Statement.Context, operation, time.Since(start))
	}
}

// RegisterServerTimingCallbacks registers GORM callbacks that add the
// duration of every read to the DBTimeAccumulator of the statement context.
// This is independent of the tracing callbacks.
func RegisterServerTimingCallbacks(db *gorm.DB) error {
	before := func(string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			db.InstanceSet(dbTimingKey, time.Now())
		}
	}
	after := func(string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			start, ok := instanceTime(db, dbTimingKey)
			if !ok || db.Statement == nil || db.Statement.Context == nil {
				return
			}
			AddDBTime(db.Statement.Context, time.Since(start))
		}
	}
	return registerReads(db, timingPrefix, before, after)
}

func instanceTime(db *gorm.DB, key string) (time.Time, bool) {
	val, ok := db.InstanceGet(key)
	if !ok {
		return time.Time{}, false
	}
	t, ok := val.(time.Time)
	return t, ok
}
