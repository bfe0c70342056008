// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the meter and tracer providers of the process. It registers
// them as the otel globals.
type Provider struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	shutdownFns    []func(context.Context) error
}

const (
	serviceName     = "recordhub"
	shutdownTimeout = 5 * time.Second
)

func NewProvider(cfg *Config) (*Provider, error) {
	ctx := context.Background()
	p := &Provider{
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
	}

	res := newResource()
	if cfg.Metrics != nil {
		if err := p.initMetrics(ctx, res, cfg.Metrics); err != nil {
			return nil, fmt.Errorf("initialising metrics: %w", err)
		}
	}
	if cfg.Traces != nil {
		if err := p.initTraces(ctx, res, cfg.Traces); err != nil {
			p.Close()
			return nil, fmt.Errorf("initialising traces: %w", err)
		}
	}

	otel.SetMeterProvider(p.meterProvider)
	otel.SetTracerProvider(p.tracerProvider)
	return p, nil
}

func (p *Provider) NewInstrumentation(name string) *Instrumentation {
	return &Instrumentation{
		Meter:  p.meterProvider.Meter(name),
		Tracer: p.tracerProvider.Tracer(name),
	}
}

// Close flushes and shuts down the exporters, in reverse order of creation.
func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs error
	for i := len(p.shutdownFns) - 1; i >= 0; i-- {
		errs = errors.Join(errs, p.shutdownFns[i](ctx))
	}
	return errs
}

func (p *Provider) initMetrics(ctx context.Context, res *resource.Resource, cfg *MetricsConfig) error {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithTemporalitySelector(deltaSelector),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
	if err != nil {
		return err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.collectionInterval()))))
	p.shutdownFns = append(p.shutdownFns, mp.Shutdown)
	p.meterProvider = mp

	if cfg.Runtime {
		if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
			return fmt.Errorf("starting runtime metrics: %w", err)
		}
	}
	return nil
}

func (p *Provider) initTraces(ctx context.Context, res *resource.Resource, cfg *TracesConfig) error {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(cfg.Endpoint))
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))))
	p.shutdownFns = append(p.shutdownFns, tp.Shutdown)
	p.tracerProvider = tp
	return nil
}

func newResource() *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(buildVersion()),
	)
}

// deltaSelector exports counters and histograms as deltas. Up/down counters
// stay cumulative since their deltas are meaningless on their own.
func deltaSelector(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	switch kind {
	case sdkmetric.InstrumentKindUpDownCounter,
		sdkmetric.InstrumentKindObservableUpDownCounter:
		return metricdata.CumulativeTemporality
	default:
		return metricdata.DeltaTemporality
	}
}
