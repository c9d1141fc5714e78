// Package metrics wires the OpenTelemetry meter provider. The HTTP layer and
// workers record through the global meter; this package decides where those
// measurements go.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/looplj/adminhub/internal/build"
	"github.com/looplj/adminhub/internal/log"
)

const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

type Config struct {
	// Exporter selects where measurements go: none, stdout, otlp-http or
	// otlp-grpc.
	Exporter string `conf:"exporter" yaml:"exporter" json:"exporter"`
	// Endpoint is the OTLP collector address, host:port.
	Endpoint string        `conf:"endpoint" yaml:"endpoint" json:"endpoint"`
	Insecure bool          `conf:"insecure" yaml:"insecure" json:"insecure"`
	Interval time.Duration `conf:"interval" yaml:"interval" json:"interval"`
}

// NewProvider builds the meter provider for the configured exporter. A nil
// provider with a nil error means metrics are disabled.
func NewProvider(cfg Config) (*sdk.MeterProvider, error) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	var (
		exporter sdk.Exporter
		err      error
	)

	switch cfg.Exporter {
	case "", ExporterNone:
		return nil, nil
	case ExporterStdout:
		exporter, err = stdoutmetric.New()
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}

		exporter, err = otlpmetrichttp.New(context.Background(), opts...)
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		exporter, err = otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("invalid metrics exporter: %s", cfg.Exporter)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	provider := sdk.NewMeterProvider(
		sdk.WithReader(sdk.NewPeriodicReader(exporter, sdk.WithInterval(interval))),
		sdk.WithResource(resource.Default()),
	)

	return provider, nil
}

// SetupMetrics installs the provider globally and registers the process-level
// instruments under the service name.
func SetupMetrics(provider *sdk.MeterProvider, serviceName string) error {
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	_, err := meter.Int64ObservableGauge(
		"process.uptime",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(time.Since(build.StartTime()).Seconds()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to register uptime gauge: %w", err)
	}

	log.Info(context.Background(), "metrics enabled", log.String("service", serviceName))

	return nil
}
