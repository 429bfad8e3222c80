// Package observability provides OpenTelemetry-based instrumentation for the
// query engine.
//
// It supports distributed tracing, metrics collection, Server-Timing metrics
// and structured logging enriched with trace context.
//
// All observability features are opt-in. When not configured, no-op
// implementations are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-odata-engine"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-odata-engine"
)

// Attribute keys.
const (
	AttrEntitySet  = "odata.entity_set"
	AttrEntityType = "odata.entity_type"
	AttrStage      = "odata.query.stage"

	// Query option attributes
	AttrQueryFilter    = "odata.query.filter"
	AttrQueryOrderBy   = "odata.query.orderby"
	AttrQuerySearch    = "odata.query.search"
	AttrQueryTop       = "odata.query.top"
	AttrQuerySkip      = "odata.query.skip"
	AttrQuerySkipToken = "odata.query.skiptoken"
	AttrPageSize       = "odata.page_size"

	// Result attributes
	AttrInputCount  = "odata.input.count"
	AttrResultCount = "odata.result.count"
	AttrHasNextLink = "odata.has_next_link"
	AttrDeltaToken  = "odata.delta_token"

	// Error attributes
	AttrErrorKind = "odata.error.kind"

	// Store attributes
	AttrDBTable = "db.sql.table"
)

// Pipeline stage names, used in span names ("odata.query.<stage>"), metric
// attributes and Server-Timing metric names.
const (
	StageFilter     = "filter"
	StageOrderBy    = "orderby"
	StageSearch     = "search"
	StageSkip       = "skip"
	StageTop        = "top"
	StagePaging     = "paging"
	StageDeltaToken = "deltatoken"
	StageLoad       = "load"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldEntitySet   = "odata.entity_set"
	LogFieldStage       = "odata.query.stage"
	LogFieldTraceID     = "trace_id"
	LogFieldSpanID      = "span_id"
	LogFieldDuration    = "duration_ms"
	LogFieldResultCount = "result_count"
	LogFieldError       = "error"
)

// EntitySetAttr creates an attribute for the entity set name.
func EntitySetAttr(name string) attribute.KeyValue {
	return attribute.String(AttrEntitySet, name)
}

// EntityTypeAttr creates an attribute for the entity type name.
func EntityTypeAttr(name string) attribute.KeyValue {
	return attribute.String(AttrEntityType, name)
}

// StageAttr creates an attribute for the pipeline stage.
func StageAttr(stage string) attribute.KeyValue {
	return attribute.String(AttrStage, stage)
}

// ResultCountAttr creates an attribute for the result count.
func ResultCountAttr(count int) attribute.KeyValue {
	return attribute.Int(AttrResultCount, count)
}

// InputCountAttr creates an attribute for the number of entities entering a stage.
func InputCountAttr(count int) attribute.KeyValue {
	return attribute.Int(AttrInputCount, count)
}

// QuerySearchAttr creates an attribute for the $search expression.
func QuerySearchAttr(search string) attribute.KeyValue {
	return attribute.String(AttrQuerySearch, search)
}

// QueryTopAttr creates an attribute for the $top value.
func QueryTopAttr(top int) attribute.KeyValue {
	return attribute.Int(AttrQueryTop, top)
}

// QuerySkipAttr creates an attribute for the $skip value.
func QuerySkipAttr(skip int) attribute.KeyValue {
	return attribute.Int(AttrQuerySkip, skip)
}

// PageSizeAttr creates an attribute for the server-side page size.
func PageSizeAttr(size int) attribute.KeyValue {
	return attribute.Int(AttrPageSize, size)
}

// ErrorKindAttr creates an attribute for the error classification.
func ErrorKindAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}
