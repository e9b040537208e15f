package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

const (
	serviceName    = "fpstudy"
	serviceVersion = "1.0.0"
)

// Exporter exports bootstrap run metrics to an OTEL Collector.
type Exporter struct {
	provider        *sdkmetric.MeterProvider
	runsTotal       metric.Int64Counter
	replicatesTotal metric.Int64Counter
	phaseHist       metric.Float64Histogram
	countHist       metric.Int64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

// newExporter registers the run instruments on provider.
func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	runsTotal, err := meter.Int64Counter(
		"fpstudy_bootstrap_runs_total",
		metric.WithDescription("Total number of bootstrap runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	replicatesTotal, err := meter.Int64Counter(
		"fpstudy_bootstrap_replicates_total",
		metric.WithDescription("Total number of bootstrap replicates drawn"),
		metric.WithUnit("{replicate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating replicates counter: %w", err)
	}

	phaseHist, err := meter.Float64Histogram(
		"fpstudy_bootstrap_phase_seconds",
		metric.WithDescription("Duration of each bootstrap run phase"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating phase histogram: %w", err)
	}

	countHist, err := meter.Int64Histogram(
		"fpstudy_bootstrap_replicate_count",
		metric.WithDescription("False accepts or false rejects per bootstrap replicate"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating replicate count histogram: %w", err)
	}

	return &Exporter{
		provider:        provider,
		runsTotal:       runsTotal,
		replicatesTotal: replicatesTotal,
		phaseHist:       phaseHist,
		countHist:       countHist,
	}, nil
}

// ExportRun records the metrics of a completed bootstrap run.
func (e *Exporter) ExportRun(ctx context.Context, run *domain.BootstrapRun) error {
	attrs := []attribute.KeyValue{
		attribute.String("strategy", run.Strategy),
		attribute.String("distribution", run.Distribution),
	}
	opt := metric.WithAttributes(attrs...)

	e.runsTotal.Add(ctx, 1, opt)
	e.replicatesTotal.Add(ctx, int64(run.Replicates), opt)

	for _, p := range run.Timing.Phases() {
		e.phaseHist.Record(ctx, p.Duration.Seconds(),
			metric.WithAttributes(append(attrs, attribute.String("phase", p.Name))...))
	}

	for _, n := range run.Samples {
		e.countHist.Record(ctx, int64(n), opt)
	}

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
