package observability

import (
	"context"
	"log/slog"
	"os"
	"testing"

	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewTracer(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	if tracer == nil {
		t.Fatal("NewTracer() should return non-nil tracer")
	}
	if tracer.serviceName != "test-service" {
		t.Errorf("serviceName = %q, want %q", tracer.serviceName, "test-service")
	}
}

func TestTracer_StartStage(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	for _, stage := range []string{StageFilter, StageOrderBy, StageSearch, StageSkip, StageTop, StagePaging, StageDeltaToken} {
		t.Run(stage, func(t *testing.T) {
			ctx, span := tracer.StartStage(context.Background(), stage, 3, QueryTopAttr(2))
			defer span.End()

			if ctx == nil {
				t.Error("StartStage() should return non-nil context")
			}
		})
	}
}

func TestTracer_StartQueryWithoutEntitySet(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	ctx, span := tracer.StartQuery(context.Background(), "", 0)
	defer span.End()

	if ctx == nil {
		t.Error("StartQuery() should return non-nil context")
	}
}

func TestTracer_StartDBQuery(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	ctx, span := tracer.StartDBQuery(context.Background(), "SELECT")
	defer span.End()

	if ctx == nil {
		t.Error("StartDBQuery() should return non-nil context")
	}
}

func TestLoggerWithTrace(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if got := LoggerWithTrace(context.Background(), logger); got != logger {
		t.Error("LoggerWithTrace() should return the logger unchanged without a span")
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	if got := LoggerWithTrace(ctx, logger); got == logger {
		t.Error("LoggerWithTrace() should enrich the logger with a valid span context")
	}
}

func TestNewMetrics(t *testing.T) {
	metrics := NewMetrics(noopmetric.NewMeterProvider())

	if metrics == nil {
		t.Fatal("NewMetrics() should return non-nil metrics")
	}
	if metrics.stageDuration == nil || metrics.errorCount == nil {
		t.Error("instruments should be created")
	}
}

func TestWithServiceVersion(t *testing.T) {
	cfg := NewConfig(WithServiceVersion("1.0.0"))

	if cfg.ServiceVersion != "1.0.0" {
		t.Errorf("ServiceVersion = %q, want %q", cfg.ServiceVersion, "1.0.0")
	}
}

func TestConfig_NilAccessors(t *testing.T) {
	var cfg *Config

	if cfg.Tracer() == nil {
		t.Error("Tracer() should return noop tracer for nil config")
	}
	if cfg.Metrics() == nil {
		t.Error("Metrics() should return noop metrics for nil config")
	}
}

func TestConfig_ReinitializeAfterDirectChange(t *testing.T) {
	cfg := NewConfig()
	cfg.TracerProvider = tracenoop.NewTracerProvider()
	cfg.Initialize()

	if !cfg.IsEnabled() {
		t.Error("expected config to be enabled")
	}
	if cfg.Tracer() == nil {
		t.Error("expected tracer")
	}
}
