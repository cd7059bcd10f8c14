// Package observability sets up OpenTelemetry tracing for pool operations.
//
// The pool package creates spans through the global tracer provider. Until
// InitTracing installs an SDK provider those spans are no-ops.
package observability

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/ajitpratap0/adbcpool/pkg/errors"
)

// Supported exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	ServiceName    string        `yaml:"service_name" json:"service_name"`
	ServiceVersion string        `yaml:"service_version" json:"service_version"`
	Environment    string        `yaml:"environment" json:"environment"`
	Exporter       string        `yaml:"exporter" json:"exporter"`           // "none", "stdout"
	SamplingRate   float64       `yaml:"sampling_rate" json:"sampling_rate"` // 0..1
	BatchTimeout   time.Duration `yaml:"batch_timeout" json:"batch_timeout"`
}

// DefaultTracingConfig returns tracing disabled.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName:  "adbcpool",
		Environment:  "development",
		Exporter:     ExporterNone,
		SamplingRate: 1.0,
		BatchTimeout: 5 * time.Second,
	}
}

// ApplyDefaults fills unset fields.
func (c *TracingConfig) ApplyDefaults() {
	d := DefaultTracingConfig()
	if c.ServiceName == "" {
		c.ServiceName = d.ServiceName
	}
	if c.Environment == "" {
		c.Environment = d.Environment
	}
	if c.Exporter == "" {
		c.Exporter = d.Exporter
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = d.BatchTimeout
	}
}

// Validate checks the exporter name and sampling rate.
func (c *TracingConfig) Validate() error {
	switch c.Exporter {
	case ExporterNone, ExporterStdout:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported trace exporter %q", c.Exporter).
			WithDetail("field", "tracing.exporter")
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "sampling_rate must be within [0, 1], got %v", c.SamplingRate).
			WithDetail("field", "tracing.sampling_rate")
	}
	return nil
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// TracingOption customizes InitTracing.
type TracingOption func(*tracingOptions)

type tracingOptions struct {
	writer io.Writer
}

// WithWriter sets the destination of the stdout exporter. Defaults to
// os.Stderr so command output on stdout stays machine-readable.
func WithWriter(w io.Writer) TracingOption {
	return func(o *tracingOptions) {
		o.writer = w
	}
}

// InitTracing installs a global tracer provider described by cfg. With the
// "none" exporter nothing is installed and the returned ShutdownFunc is a
// no-op.
func InitTracing(cfg TracingConfig, opts ...TracingOption) (ShutdownFunc, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Exporter == ExporterNone {
		return func(context.Context) error { return nil }, nil
	}

	o := tracingOptions{writer: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create trace resource")
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(o.writer), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create stdout exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRate)),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}
