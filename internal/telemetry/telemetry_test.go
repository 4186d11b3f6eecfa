package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/fluentwait/config"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/testutil"
	"github.com/BaSui01/fluentwait/testutil/mocks"
	"github.com/BaSui01/fluentwait/types"
	"github.com/BaSui01/fluentwait/wait"
)

// saveAndRestoreGlobalProviders snapshots the current global OTel providers
// and restores them via t.Cleanup so tests don't leak state.
func saveAndRestoreGlobalProviders(t *testing.T) {
	t.Helper()
	origTP := otel.GetTracerProvider()
	origMP := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetMeterProvider(origMP)
	})
}

func TestInit_Disabled(t *testing.T) {
	saveAndRestoreGlobalProviders(t)

	p, err := Init(context.Background(), config.TelemetryConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Nil(t, p.tp, "TracerProvider should be nil when disabled")
	assert.Nil(t, p.mp, "MeterProvider should be nil when disabled")
	assert.NotNil(t, p.Meter())
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NoError(t, p.ForceFlush(context.Background()))
}

func TestInit_Enabled(t *testing.T) {
	saveAndRestoreGlobalProviders(t)

	cfg := config.TelemetryConfig{
		Enabled:      true,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "fluentwait-test",
		SampleRate:   0.5,
	}
	p, err := Init(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.NotNil(t, p.tp, "TracerProvider should be set when enabled")
	assert.NotNil(t, p.mp, "MeterProvider should be set when enabled")

	_, tpIsSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	_, mpIsSDK := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, tpIsSDK, "global TracerProvider should be *sdktrace.TracerProvider")
	assert.True(t, mpIsSDK, "global MeterProvider should be *sdkmetric.MeterProvider")

	// No collector is running; shutdown may report an export error.
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})
}

func TestProviders_Shutdown_Nil(t *testing.T) {
	var p *Providers
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, p.Meter())
}

func TestBuildVersion(t *testing.T) {
	// Test binaries report "(devel)", which falls back to "dev".
	assert.Equal(t, "dev", buildVersion())
}

func TestInit_CustomPipeline(t *testing.T) {
	saveAndRestoreGlobalProviders(t)
	spans := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()

	cfg := config.TelemetryConfig{Enabled: true, ServiceName: "fluentwait-test", SampleRate: 1}
	p, err := Init(context.Background(), cfg, zaptest.NewLogger(t),
		WithSpanExporter(spans), WithMetricReader(reader), WithServiceVersion("v1.2.3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	inst, err := NewWaitInstruments(p.Meter())
	require.NoError(t, err)

	ctx := testutil.TestContext(t)
	loc := locator.ByID("ok")
	s := mocks.NewMockSearch().WithElements(loc, mocks.NewFakeElement("div").WithID("ok"))
	require.NoError(t, wait.New(s, wait.WithObserver(inst)).AtMost(time.Second).Until(loc).IsPresent(ctx))

	require.NoError(t, p.ForceFlush(ctx))
	got := spans.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, "fluentwait.until", got[0].Name)
	version, ok := got[0].Resource.Set().Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, "v1.2.3", version.AsString())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, instrumentationName, rm.ScopeMetrics[0].Scope.Name)
}

func TestWaitSpans(t *testing.T) {
	saveAndRestoreGlobalProviders(t)
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	ctx := testutil.TestContext(t)
	loc := locator.ByID("ok")
	s := mocks.NewMockSearch().WithElements(loc, mocks.NewFakeElement("div").WithID("ok"))
	require.NoError(t, wait.New(s).AtMost(time.Second).Until(loc).IsPresent(ctx))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "fluentwait.until", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("wait.outcome", "success"))
}

func TestWaitInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	inst, err := NewWaitInstruments(mp.Meter("test"))
	require.NoError(t, err)

	ctx := testutil.TestContext(t)
	loc := locator.ByCSS(".late")
	s := mocks.NewMockSearch().WithElements(loc, mocks.NewFakeElement("span"))
	s.PushResult(nil, types.NewError(types.ErrDriverError, "flaky"))

	w := wait.New(s, wait.WithObserver(inst)).
		AtMost(time.Second).
		PollingEvery(5 * time.Millisecond).
		Ignoring(types.ErrDriverError)
	require.NoError(t, w.Until(loc).IsPresent(ctx))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	got := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		got[m.Name] = m
	}
	polls, ok := got["fluentwait.polls"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range polls.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	waits, ok := got["fluentwait.waits"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, waits.DataPoints, 1)
	outcome, _ := waits.DataPoints[0].Attributes.Value("outcome")
	assert.Equal(t, "success", outcome.AsString())

	_, ok = got["fluentwait.wait.duration"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}
