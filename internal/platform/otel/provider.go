// Package otel configures trace export for calcdeck binaries.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/calcdeck/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Environment variables read by LoadConfig.
const (
	EnvEndpoint    = "CALCDECK_OTEL_ENDPOINT"
	EnvEnabled     = "CALCDECK_OTEL_ENABLED"
	EnvSampleRatio = "CALCDECK_OTEL_SAMPLE_RATIO"
)

// Config selects where spans go and how many are kept.
type Config struct {
	Endpoint    string  `env:"CALCDECK_OTEL_ENDPOINT"`
	Enabled     bool    `env:"CALCDECK_OTEL_ENABLED"      envDefault:"true"`
	SampleRatio float64 `env:"CALCDECK_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether spans should be exported.
func (c Config) Active() bool {
	return c.Enabled && strings.TrimSpace(c.Endpoint) != ""
}

// LoadConfig reads tracing settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return Config{}, fmt.Errorf("%s must be between 0 and 1, got %v", EnvSampleRatio, cfg.SampleRatio)
	}
	return cfg, nil
}

func (c Config) sampler() sdktrace.Sampler {
	if c.SampleRatio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}

// Setup registers a global tracer provider for serviceName.
//
// Tracing stays off unless CALCDECK_OTEL_ENDPOINT is set; the returned
// shutdown flushes pending spans and is a no-op when tracing is off.
func Setup(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return noopShutdown, err
	}
	return SetupWithConfig(ctx, serviceName, cfg)
}

// SetupWithConfig is Setup with explicit settings.
func SetupWithConfig(ctx context.Context, serviceName string, cfg Config) (func(context.Context) error, error) {
	if !cfg.Active() {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(strings.TrimSpace(cfg.Endpoint)))
	if err != nil {
		return noopShutdown, fmt.Errorf("create otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noopShutdown, fmt.Errorf("build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func noopShutdown(context.Context) error { return nil }
