package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerProviderOption configures NewTracerProvider
type TracerProviderOption func(*tracerProviderConfig)

type tracerProviderConfig struct {
	config   *Config
	exporter sdktrace.SpanExporter
}

// WithTracerConfig takes the service identity, collector endpoint and
// tracing section from the root telemetry configuration
func WithTracerConfig(c *Config) TracerProviderOption {
	return func(cfg *tracerProviderConfig) {
		cfg.config = c
	}
}

// WithSpanExporter replaces the OTLP exporter, e.g. with an in-memory one
func WithSpanExporter(exporter sdktrace.SpanExporter) TracerProviderOption {
	return func(cfg *tracerProviderConfig) {
		cfg.exporter = exporter
	}
}

func (cfg *tracerProviderConfig) enabled() bool {
	return cfg.config != nil && cfg.config.Tracing != nil && cfg.config.Tracing.Enabled
}

// NewTracerProvider returns an SDK tracer provider when tracing is enabled and
// a no-op provider otherwise. An SDK provider is installed as the global
// provider and must be shut down by the caller to flush the run's spans.
func NewTracerProvider(ctx context.Context, opts ...TracerProviderOption) (trace.TracerProvider, error) {
	cfg := &tracerProviderConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.enabled() {
		slog.Debug("Tracing disabled, using no-op tracer provider")
		return noop.NewTracerProvider(), nil
	}

	res, err := newResource(ctx, cfg.config.GetServiceName(), cfg.config.GetServiceVersion())
	if err != nil {
		return nil, err
	}

	exporter := cfg.exporter
	if exporter == nil {
		exporter, err = newOTLPSpanExporter(ctx, cfg.config)
		if err != nil {
			return nil, err
		}
	}

	ratio := cfg.config.Tracing.GetSampling()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(runSampler(ratio)),
	)

	otel.SetTracerProvider(tp)
	// otelhttp injects the run's trace context into registry requests
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("Tracing initialized",
		"endpoint", cfg.config.GetEndpoint(),
		"sampling_ratio", ratio,
		"insecure", cfg.config.GetInsecure(),
	)
	return tp, nil
}

// runSampler decides once per run: the root span is sampled by ratio and
// every page and render span follows its parent.
func runSampler(ratio float64) sdktrace.Sampler {
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func newOTLPSpanExporter(ctx context.Context, c *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(c.GetEndpoint())}
	if c.GetInsecure() {
		slog.Warn("Tracing configured with insecure connection, spans are sent over unencrypted HTTP")
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}
