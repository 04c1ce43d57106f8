package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Metrics records per-cycle counters and latencies.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	shutdown func(context.Context) error

	cycles          metric.Int64Counter
	failures        metric.Int64Counter
	cycleDuration   metric.Float64Histogram
	deliveryLatency metric.Float64Histogram
}

// NewMetrics builds the meter provider and instruments. With export
// disabled the returned Metrics is a functional no-op.
func NewMetrics(ctx context.Context, cfg *Config) (*Metrics, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	m := &Metrics{}

	if !cfg.enabled() {
		m.provider = sdkmetric.NewMeterProvider()
		m.shutdown = func(context.Context) error { return nil }
	} else {
		exporter, err := newMetricExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}

		res, err := newResource(cfg)
		if err != nil {
			return nil, fmt.Errorf("create metric resource: %w", err)
		}

		m.provider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
			sdkmetric.WithResource(res),
		)
		m.shutdown = m.provider.Shutdown
	}

	meter := m.provider.Meter(cfg.ServiceName)

	var err error
	if m.cycles, err = meter.Int64Counter("hostbeat.cycles",
		metric.WithDescription("Completed report cycles"),
	); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("hostbeat.cycle_failures",
		metric.WithDescription("Cycle failures by pipeline stage"),
	); err != nil {
		return nil, err
	}
	if m.cycleDuration, err = meter.Float64Histogram("hostbeat.cycle_duration_ms",
		metric.WithDescription("Wall time of one sample-encode-deliver cycle"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.deliveryLatency, err = meter.Float64Histogram("hostbeat.delivery_latency_ms",
		metric.WithDescription("Latency of the report POST"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCycle counts a finished cycle and its duration.
func (m *Metrics) RecordCycle(ctx context.Context, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("ok", ok))
	m.cycles.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, float64(d.Milliseconds()), attrs)
}

// RecordFailure counts a classified failure at the named stage
// ("sample", "encode" or "deliver").
func (m *Metrics) RecordFailure(ctx context.Context, stage, kind string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("kind", kind),
	))
}

// RecordDelivery records the POST latency.
func (m *Metrics) RecordDelivery(ctx context.Context, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.deliveryLatency.Record(ctx, float64(d.Milliseconds()),
		metric.WithAttributes(attribute.Bool("ok", ok)))
}

// Shutdown flushes and stops the provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.shutdown == nil {
		return nil
	}
	return m.shutdown(ctx)
}

func newMetricExporter(ctx context.Context, cfg *Config) (sdkmetric.Exporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		return stdoutmetric.New()
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown metrics exporter type: %s", cfg.ExporterType)
	}
}

func newResource(cfg *Config) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
}
