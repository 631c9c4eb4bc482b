// Package tracer exports spans over OTLP.
package tracer

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the tracing configuration.
type Config struct {
	Address     string
	Insecure    bool
	Username    string
	Password    string
	Probability float64
	ServiceName string
}

// OTLPProvider is a trace provider which exports spans to OTLP.
type OTLPProvider struct {
	provider *sdktrace.TracerProvider
}

// NewOTLPProvider creates a new OTLPProvider.
func NewOTLPProvider(ctx context.Context, cfg Config) (*OTLPProvider, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))

	options := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Address),
		otlptracehttp.WithHeaders(map[string]string{"Authorization": "Basic " + auth}),
	}

	if cfg.Insecure {
		options = append(options, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	return &OTLPProvider{
		provider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Probability))),
			sdktrace.WithResource(resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(cfg.ServiceName),
			)),
		),
	}, nil
}

// Tracer returns a Tracer with the given name.
func (p *OTLPProvider) Tracer(name string, options ...trace.TracerOption) trace.Tracer {
	return p.provider.Tracer(name, options...)
}

// Stop stops the provider once all spans have been uploaded.
func (p *OTLPProvider) Stop(ctx context.Context) error {
	if err := p.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("flushing provider: %w", err)
	}

	if err := p.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down provider: %w", err)
	}

	return nil
}
