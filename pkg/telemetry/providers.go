// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultServiceName identifies SDK telemetry when no service name is set.
const DefaultServiceName = "openworld-sdk-go"

// Config holds the telemetry settings.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// OTLPEndpoint is the collector host and port, e.g. "localhost:4318".
	// Empty disables OTLP export.
	OTLPEndpoint string
	Headers      map[string]string
	Insecure     bool
	// SamplingRate controls trace sampling (0.0 to 1.0).
	SamplingRate float64

	// Prometheus registers SDK metrics with an in-process Prometheus registry.
	Prometheus bool
}

// Option configures the providers.
type Option func(*Config) error

// WithServiceName sets the service name
func WithServiceName(serviceName string) Option {
	return func(config *Config) error {
		if serviceName == "" {
			return errors.New("service name cannot be empty")
		}
		config.ServiceName = serviceName
		return nil
	}
}

// WithServiceVersion sets the service version
func WithServiceVersion(serviceVersion string) Option {
	return func(config *Config) error {
		config.ServiceVersion = serviceVersion
		return nil
	}
}

// WithOTLPEndpoint sets the OTLP endpoint
func WithOTLPEndpoint(endpoint string) Option {
	return func(config *Config) error {
		config.OTLPEndpoint = endpoint
		return nil
	}
}

// WithHeaders sets headers sent with OTLP requests
func WithHeaders(headers map[string]string) Option {
	return func(config *Config) error {
		config.Headers = headers
		return nil
	}
}

// WithInsecure disables TLS for OTLP
func WithInsecure(insecure bool) Option {
	return func(config *Config) error {
		config.Insecure = insecure
		return nil
	}
}

// WithSamplingRate sets the sampling rate
func WithSamplingRate(samplingRate float64) Option {
	return func(config *Config) error {
		if samplingRate < 0 || samplingRate > 1 {
			return fmt.Errorf("sampling rate %v must be between 0 and 1", samplingRate)
		}
		config.SamplingRate = samplingRate
		return nil
	}
}

// WithPrometheus enables the Prometheus registry
func WithPrometheus(enabled bool) Option {
	return func(config *Config) error {
		config.Prometheus = enabled
		return nil
	}
}

// Providers bundles the tracer and meter providers with their shutdown hooks.
type Providers struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	registry       *prometheus.Registry
	shutdownFuncs  []func(context.Context) error
}

// New creates providers for the given options. With neither OTLP nor
// Prometheus configured the providers are no-ops.
func New(ctx context.Context, options ...Option) (*Providers, error) {
	config := Config{ServiceName: DefaultServiceName, SamplingRate: 1}
	for _, option := range options {
		if err := option(&config); err != nil {
			return nil, err
		}
	}

	if config.OTLPEndpoint == "" && !config.Prometheus {
		return &Providers{
			tracerProvider: tracenoop.NewTracerProvider(),
			meterProvider:  noop.NewMeterProvider(),
		}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource with service name '%s': %w", config.ServiceName, err)
	}

	p := &Providers{}
	if err := p.buildMeterProvider(ctx, config, res); err != nil {
		return nil, err
	}
	if err := p.buildTracerProvider(ctx, config, res); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	return p, nil
}

func (p *Providers) buildMeterProvider(ctx context.Context, config Config, res *resource.Resource) error {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if config.Prometheus {
		p.registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(p.registry))
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))
	}

	if config.OTLPEndpoint != "" {
		metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.OTLPEndpoint)}
		if len(config.Headers) > 0 {
			metricOpts = append(metricOpts, otlpmetrichttp.WithHeaders(config.Headers))
		}
		if config.Insecure {
			metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, metricOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	p.meterProvider = provider
	p.shutdownFuncs = append(p.shutdownFuncs, provider.Shutdown)
	return nil
}

func (p *Providers) buildTracerProvider(ctx context.Context, config Config, res *resource.Resource) error {
	if config.OTLPEndpoint == "" {
		p.tracerProvider = tracenoop.NewTracerProvider()
		return nil
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.OTLPEndpoint)}
	if len(config.Headers) > 0 {
		traceOpts = append(traceOpts, otlptracehttp.WithHeaders(config.Headers))
	}
	if config.Insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(config.SamplingRate)),
	)
	p.tracerProvider = provider
	p.shutdownFuncs = append(p.shutdownFuncs, provider.Shutdown)
	return nil
}

// newSampler samples root spans at rate and otherwise follows the parent's decision.
func newSampler(rate float64) sdktrace.Sampler {
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// TracerProvider returns the tracer provider
func (p *Providers) TracerProvider() trace.TracerProvider {
	return p.tracerProvider
}

// MeterProvider returns the meter provider
func (p *Providers) MeterProvider() metric.MeterProvider {
	return p.meterProvider
}

// PrometheusHandler serves the Prometheus registry, or returns nil when
// Prometheus is not enabled.
func (p *Providers) PrometheusHandler() http.Handler {
	if p.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// WritePrometheus writes the current metrics in the Prometheus text format.
func (p *Providers) WritePrometheus(w io.Writer) error {
	if p.registry == nil {
		return errors.New("prometheus metrics are not enabled")
	}
	families, err := p.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}
	return nil
}

// Shutdown flushes and stops every provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	for i, shutdown := range p.shutdownFuncs {
		if err := shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("provider %d shutdown failed: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
