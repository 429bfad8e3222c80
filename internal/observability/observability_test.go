package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithServiceName("test-service"),
		WithDetailedDBTracing(),
	)

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected service name 'test-service', got '%s'", cfg.ServiceName)
	}
	if !cfg.EnableDetailedDBTracing {
		t.Error("expected detailed DB tracing to be enabled")
	}
}

func TestConfigInitialize(t *testing.T) {
	cfg := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithServiceName("test-service"),
	)

	if cfg.Tracer() == nil {
		t.Error("expected tracer to be initialized")
	}
	if cfg.Tracer().serviceName != "test-service" {
		t.Errorf("tracer service name = %q", cfg.Tracer().serviceName)
	}
	if cfg.Metrics() == nil {
		t.Error("expected metrics to be initialized")
	}
}

func TestConfigInitializeNoProviders(t *testing.T) {
	cfg := NewConfig(WithServiceName("test-service"))

	if cfg.Tracer() == nil {
		t.Error("expected noop tracer to be returned")
	}
	if cfg.Metrics() == nil {
		t.Error("expected noop metrics to be returned")
	}
}

func TestNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()

	ctx := context.Background()

	ctx, span := tracer.StartSpan(ctx, "test")
	span.End()

	ctx, span = tracer.StartQuery(ctx, "Products", 25)
	span.End()

	ctx, span = tracer.StartStage(ctx, StageFilter, 25)
	tracer.EndStage(span, 10, true)
	span.End()

	_, span = tracer.StartLoad(ctx, "Products", "products")
	span.End()
}

func TestNoopMetrics(t *testing.T) {
	metrics := NewNoopMetrics()

	ctx := context.Background()

	metrics.RecordStage(ctx, "Products", StageOrderBy, time.Millisecond)
	metrics.RecordResultCount(ctx, "Products", 10)
	metrics.RecordDBQuery(ctx, "SELECT", time.Millisecond*100)
	metrics.RecordError(ctx, "Products", StagePaging, "validation")
}

func TestIsEnabled(t *testing.T) {
	cfg := NewConfig()
	if cfg.IsEnabled() {
		t.Error("expected empty config to not be enabled")
	}

	cfg = NewConfig(WithTracerProvider(tracenoop.NewTracerProvider()))
	if !cfg.IsEnabled() {
		t.Error("expected config with tracer to be enabled")
	}

	cfg = NewConfig(WithMeterProvider(noop.NewMeterProvider()))
	if !cfg.IsEnabled() {
		t.Error("expected config with meter to be enabled")
	}

	var nilCfg *Config
	if nilCfg.IsEnabled() {
		t.Error("expected nil config to not be enabled")
	}
}

func TestTracerRecordError(t *testing.T) {
	tracer := NewNoopTracer()

	_, span := tracer.StartSpan(context.Background(), "test")

	tracer.RecordError(span, nil)
	tracer.RecordError(span, context.Canceled)
	span.End()
}

func TestServerTimingOption(t *testing.T) {
	cfg := NewConfig(WithServerTiming())

	if !cfg.ServerTimingEnabled() {
		t.Error("expected ServerTimingEnabled() to return true")
	}
	if NewConfig().ServerTimingEnabled() {
		t.Error("expected server timing to be disabled by default")
	}

	var nilCfg *Config
	if nilCfg.ServerTimingEnabled() {
		t.Error("expected ServerTimingEnabled() to return false for nil config")
	}
}

func TestStartServerTimingNoContext(t *testing.T) {
	StartServerTiming(context.Background(), "test").Stop()
	StartServerTimingWithDesc(context.Background(), "test", "Test description").Stop()

	var metric *ServerTimingMetric
	metric.Stop()
}

func TestStartServerTimingRecordsMetric(t *testing.T) {
	ctx, header := NewServerTimingContext(context.Background())

	StartServerTiming(ctx, StageFilter).Stop()
	StartServerTimingWithDesc(ctx, StagePaging, "server-side paging").Stop()

	if len(header.Metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(header.Metrics))
	}
	if header.Metrics[0].Name != StageFilter {
		t.Errorf("first metric = %q, want %q", header.Metrics[0].Name, StageFilter)
	}
	if header.Metrics[1].Desc != "server-side paging" {
		t.Errorf("second metric desc = %q", header.Metrics[1].Desc)
	}
}

func TestDBTimeAccumulator(t *testing.T) {
	acc := &DBTimeAccumulator{}

	acc.Add(time.Millisecond * 10)
	acc.Add(time.Millisecond * 20)
	acc.Add(time.Millisecond * 30)

	if total := acc.Duration(); total != time.Millisecond*60 {
		t.Errorf("expected %v, got %v", time.Millisecond*60, total)
	}
}

func TestDBTimeAccumulatorConcurrent(t *testing.T) {
	acc := &DBTimeAccumulator{}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				acc.Add(time.Millisecond)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if total := acc.Duration(); total != time.Millisecond*1000 {
		t.Errorf("expected %v, got %v", time.Millisecond*1000, total)
	}
}

func TestAddDBTime(t *testing.T) {
	if DBTimeAccumulatorFromContext(context.Background()) != nil {
		t.Error("expected nil accumulator from background context")
	}
	// no accumulator: must not panic
	AddDBTime(context.Background(), time.Millisecond)

	ctx := WithDBTimeAccumulator(context.Background())
	AddDBTime(ctx, time.Millisecond*50)
	AddDBTime(ctx, time.Millisecond*100)

	acc := DBTimeAccumulatorFromContext(ctx)
	if acc == nil {
		t.Fatal("accumulator should not be nil")
	}
	if total := acc.Duration(); total != time.Millisecond*150 {
		t.Errorf("expected %v, got %v", time.Millisecond*150, total)
	}
}

func TestServerTimingCallbacksIntegration(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	type TestProduct struct {
		ID   int `gorm:"primarykey"`
		Name string
	}
	if err := db.AutoMigrate(&TestProduct{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Create(&TestProduct{ID: 1, Name: "Test"}).Error; err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	if err := RegisterServerTimingCallbacks(db); err != nil {
		t.Fatalf("failed to register callbacks: %v", err)
	}

	ctx := WithDBTimeAccumulator(context.Background())

	var products []TestProduct
	if err := db.WithContext(ctx).Find(&products).Error; err != nil {
		t.Fatalf("failed to find: %v", err)
	}

	if DBTimeAccumulatorFromContext(ctx).Duration() == 0 {
		t.Error("expected non-zero database time after Find")
	}
}

func TestGORMCallbacksDisabledWithoutTracer(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := RegisterGORMCallbacks(db, NewConfig(WithDetailedDBTracing())); err != nil {
		t.Fatalf("RegisterGORMCallbacks() error = %v", err)
	}
	if db.Callback().Query().Get("odata:before_query") != nil {
		t.Error("callbacks should not be registered without a tracer provider")
	}
}

func TestGORMCallbacksTraceQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	cfg := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithDetailedDBTracing(),
	)
	if err := RegisterGORMCallbacks(db, cfg); err != nil {
		t.Fatalf("RegisterGORMCallbacks() error = %v", err)
	}
	if db.Callback().Query().Get("odata:before_query") == nil {
		t.Error("expected query callback to be registered")
	}

	var n int
	if err := db.Raw("SELECT 1").Scan(&n).Error; err != nil {
		t.Fatalf("raw query failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
}
