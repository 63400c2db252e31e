package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/school/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDisabledProvidersAreNoOps(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{ServiceName: "school-backend"}
	logger := zap.NewNop()

	tp, err := NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Same(t, logger, lp.Bridge(logger, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(cfg, logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresEndpoint(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, zap.NewNop())
	assert.ErrorContains(t, err, "pyroscope endpoint")
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(&levelFilterCore{Core: core, minLevel: zapcore.WarnLevel}).With(zap.String("k", "v"))

	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "v", entry.ContextMap()["k"])
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "teacher", "create", SpanAttrPage, 2, 42, "ignored")
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, SpanAttrTeacherCode, "GV20240001")
	RecordError(span, nil)
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "teacher.create", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	attrs := map[string]string{}
	for _, a := range s.Attributes() {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "2", attrs[SpanAttrPage])
	assert.Equal(t, "GV20240001", attrs[SpanAttrTeacherCode])
	assert.Len(t, attrs, 2)

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestRegisterDBTracing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{}, zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("school:trace_after_query"))

	recorder := withRecorder(t)
	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))
	assert.NotNil(t, db.Callback().Row().Get("school:trace_after_row"))

	ctx, span := StartServiceSpan(context.Background(), "test", "query")
	var n int
	require.NoError(t, db.WithContext(ctx).Raw("SELECT 1").Scan(&n).Error)
	span.End()

	names := make([]string, 0)
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "test.query")
	assert.GreaterOrEqual(t, len(names), 2, "otelgorm emits a span for the statement")
}

func TestHTTPInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := NewMeterProviderWithReader(reader, zap.NewNop())
	assert.True(t, mp.IsEnabled())
	meter := mp.Meter("test")

	counter, err := NewCounter(meter, "requests", "requests", "{request}")
	require.NoError(t, err)
	hist, err := NewHistogram(meter, "latency", "latency", "s", HTTPDurationBuckets)
	require.NoError(t, err)

	ctx := context.Background()
	counter.Inc(ctx, AttrHTTPMethod.String("GET"))
	counter.Inc(ctx, AttrHTTPMethod.String("GET"))
	hist.RecordDuration(ctx, 30*time.Millisecond, AttrHTTPRoute.String("/api/teachers"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}
	sum := byName["requests"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	h := byName["latency"].Data.(metricdata.Histogram[float64])
	assert.Equal(t, uint64(1), h.DataPoints[0].Count)

	require.NoError(t, mp.Shutdown(ctx))
}
