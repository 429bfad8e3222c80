package odata

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/observability"
)

// DefaultPageSize is the server-side page size used when none is configured.
const DefaultPageSize = 10

// ObservabilityConfig configures tracing, metrics and Server-Timing for an Engine.
type ObservabilityConfig struct {
	// TracerProvider is the OpenTelemetry tracer provider. If nil, tracing is disabled.
	TracerProvider trace.TracerProvider

	// MeterProvider is the OpenTelemetry meter provider. If nil, metrics are disabled.
	MeterProvider metric.MeterProvider

	// ServiceName identifies this service in traces and metrics.
	ServiceName string

	// ServiceVersion is the version of this service.
	ServiceVersion string

	// EnableDetailedDBTracing traces individual queries issued by the store.
	EnableDetailedDBTracing bool

	// EnableServerTiming records one Server-Timing metric per pipeline stage
	// into the header carried by the request context.
	EnableServerTiming bool
}

func (c ObservabilityConfig) build() *observability.Config {
	opts := []observability.Option{
		observability.WithTracerProvider(c.TracerProvider),
		observability.WithMeterProvider(c.MeterProvider),
		observability.WithServiceVersion(c.ServiceVersion),
	}
	if c.ServiceName != "" {
		opts = append(opts, observability.WithServiceName(c.ServiceName))
	}
	if c.EnableDetailedDBTracing {
		opts = append(opts, observability.WithDetailedDBTracing())
	}
	if c.EnableServerTiming {
		opts = append(opts, observability.WithServerTiming())
	}
	return observability.NewConfig(opts...)
}

// Config holds the engine settings assembled from options.
type Config struct {
	PageSize      int
	Logger        *slog.Logger
	Observability *observability.Config
	Now           func() time.Time
	Model         *edm.Model
}

// Option configures an Engine.
type Option func(*Config)

// WithPageSize sets the server-side page size. Values <= 0 select DefaultPageSize.
func WithPageSize(n int) Option {
	return func(c *Config) {
		c.PageSize = n
	}
}

// WithLogger sets the logger used for stage debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithObservability enables tracing, metrics and Server-Timing.
func WithObservability(cfg ObservabilityConfig) Option {
	return func(c *Config) {
		c.Observability = cfg.build()
	}
}

// WithNow overrides the clock backing the now() filter function.
func WithNow(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithModel sets the EDM model used to resolve entity types and navigation targets.
func WithModel(model *edm.Model) Option {
	return func(c *Config) {
		c.Model = model
	}
}
