// =============================================================================
// fluentwait OpenTelemetry SDK Initialization
// =============================================================================
// Sets up the trace and metric pipelines the waits report into. When
// telemetry is disabled nothing is exported and the global providers stay
// noop; wait spans always go through the global TracerProvider.
// =============================================================================

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/BaSui01/fluentwait/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/BaSui01/fluentwait"

// Providers holds the SDK providers created by Init. Both are nil when
// telemetry is disabled.
type Providers struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Option overrides how Init builds the pipelines.
type Option func(*pipeline)

type pipeline struct {
	version      string
	spanExporter sdktrace.SpanExporter
	metricReader sdkmetric.Reader
}

// WithServiceVersion sets service.version; the module build version is
// used otherwise.
func WithServiceVersion(v string) Option {
	return func(p *pipeline) { p.version = v }
}

// WithSpanExporter replaces the OTLP trace exporter.
func WithSpanExporter(e sdktrace.SpanExporter) Option {
	return func(p *pipeline) { p.spanExporter = e }
}

// WithMetricReader replaces the periodic OTLP metric reader.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(p *pipeline) { p.metricReader = r }
}

// Init builds the providers and registers them globally. With
// cfg.Enabled false it returns empty Providers and touches nothing.
func Init(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger, opts ...Option) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("telemetry disabled, using noop providers")
		return &Providers{}, nil
	}

	pl := &pipeline{version: buildVersion()}
	for _, opt := range opts {
		opt(pl)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(pl.version),
		),
		resource.WithHost(),
		resource.WithProcessRuntimeVersion(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	if pl.spanExporter == nil {
		pl.spanExporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
	}
	if pl.metricReader == nil {
		exp, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		pl.metricReader = sdkmetric.NewPeriodicReader(exp)
	}

	p := &Providers{
		tp: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(pl.spanExporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
		),
		mp: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(pl.metricReader),
			sdkmetric.WithResource(res),
		),
	}

	otel.SetTracerProvider(p.tp)
	otel.SetMeterProvider(p.mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("telemetry initialized",
		zap.String("endpoint", cfg.OTLPEndpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.String("service_version", pl.version),
		zap.Float64("sample_rate", cfg.SampleRate),
	)
	return p, nil
}

// Meter returns the meter wait instruments are created on, the global
// one when telemetry is disabled.
func (p *Providers) Meter() metric.Meter {
	if p == nil || p.mp == nil {
		return otel.GetMeterProvider().Meter(instrumentationName)
	}
	return p.mp.Meter(instrumentationName)
}

// ForceFlush exports everything recorded so far without closing.
func (p *Providers) ForceFlush(ctx context.Context) error {
	return p.each(func(tp *sdktrace.TracerProvider) error {
		return tp.ForceFlush(ctx)
	}, func(mp *sdkmetric.MeterProvider) error {
		return mp.ForceFlush(ctx)
	}, "flush")
}

// Shutdown flushes and closes the exporters. Nil-safe.
func (p *Providers) Shutdown(ctx context.Context) error {
	return p.each(func(tp *sdktrace.TracerProvider) error {
		return tp.Shutdown(ctx)
	}, func(mp *sdkmetric.MeterProvider) error {
		return mp.Shutdown(ctx)
	}, "shutdown")
}

func (p *Providers) each(onTP func(*sdktrace.TracerProvider) error, onMP func(*sdkmetric.MeterProvider) error, op string) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tp != nil {
		if err := onTP(p.tp); err != nil {
			errs = append(errs, fmt.Errorf("%s tracer provider: %w", op, err))
		}
	}
	if p.mp != nil {
		if err := onMP(p.mp); err != nil {
			errs = append(errs, fmt.Errorf("%s meter provider: %w", op, err))
		}
	}
	return errors.Join(errs...)
}

// buildVersion is the main module version, "dev" for local builds.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
