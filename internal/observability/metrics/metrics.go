package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the underwriting instruments.
type Metrics struct {
	quotes           metric.Int64Counter
	ratesMissing     metric.Int64Counter
	interceptions    metric.Int64Counter
	applications     metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
	quoteAmountCents metric.Int64Histogram
	jobRuns          metric.Int64Counter
	jobItems         metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)

	return provider, nil
}

// New creates the domain instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "polisa"
	}
	meter := provider.Meter(name)

	quotes, err := meter.Int64Counter("polisa_quotes_total",
		metric.WithDescription("Premium calculations by premium type."))
	if err != nil {
		return nil, err
	}
	ratesMissing, err := meter.Int64Counter("polisa_rates_missing_total",
		metric.WithDescription("Liability selections skipped because no rate row matched."))
	if err != nil {
		return nil, err
	}
	interceptions, err := meter.Int64Counter("polisa_interceptions_total",
		metric.WithDescription("Application submissions rejected by an interception rule."))
	if err != nil {
		return nil, err
	}
	applications, err := meter.Int64Counter("polisa_applications_created_total",
		metric.WithDescription("Applications persisted."))
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("polisa_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}
	quoteAmount, err := meter.Int64Histogram("polisa_quote_total_premium_cents",
		metric.WithUnit("{cent}"))
	if err != nil {
		return nil, err
	}

	jobRuns, err := meter.Int64Counter("polisa_scheduler_job_runs_total",
		metric.WithDescription("Scheduler job runs by outcome."))
	if err != nil {
		return nil, err
	}
	jobItems, err := meter.Int64Counter("polisa_scheduler_job_items_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotes:           quotes,
		ratesMissing:     ratesMissing,
		interceptions:    interceptions,
		applications:     applications,
		rateLimitDenied:  rateLimitDenied,
		quoteAmountCents: quoteAmount,
		jobRuns:          jobRuns,
		jobItems:         jobItems,
	}, nil
}

// RecordQuote counts a finished calculation and its total in cents.
func (m *Metrics) RecordQuote(ctx context.Context, premiumType string, totalCents int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("premium_type", strings.TrimSpace(premiumType)))
	m.quotes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.quoteAmountCents.Record(ctx, totalCents, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateMissing(ctx context.Context) {
	if m == nil {
		return
	}
	m.ratesMissing.Add(ctx, 1)
}

func (m *Metrics) RecordInterception(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.interceptions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordApplicationCreated(ctx context.Context, channel string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("channel", strings.TrimSpace(channel)))
	m.applications.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordJobRun counts one scheduler job run and the rows it processed.
func (m *Metrics) RecordJobRun(ctx context.Context, job, outcome string, items int) {
	if m == nil {
		return
	}
	jobAttr := attribute.String("job", strings.TrimSpace(job))
	attrs := FilterAttributes(jobAttr, attribute.String("outcome", strings.TrimSpace(outcome)))
	m.jobRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	if items > 0 {
		m.jobItems.Add(ctx, int64(items), metric.WithAttributes(FilterAttributes(jobAttr)...))
	}
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"premium_type": {},
	"kind":         {},
	"channel":      {},
	"endpoint":     {},
	"reason":       {},
	"status_code":  {},
	"job":          {},
	"outcome":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
