package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumescore/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultCollectionInterval = 15 * time.Second

// ObservabilityConfig carries the subset of settings the manager needs
// up front. Nested exporter settings are read off the full config.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds the scoring service's custom instruments. Fields stay
// nil when observability is disabled; every record path checks first.
type Metrics struct {
	AnalysisDuration   metric.Float64Histogram
	AnalysisCount      metric.Int64Counter
	AnalysisErrorCount metric.Int64Counter
	ScoreDistribution  metric.Int64Histogram

	ResumesAnalyzed metric.Int64Counter

	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	RateLimitHits metric.Int64Counter
}

// ObservabilityManager owns the OTel providers and their shutdown order.
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// NewObservabilityManager wires tracing and metrics. A disabled config
// returns an inert manager whose methods are all safe no-ops.
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}
	if !obsConfig.Enabled {
		return om, nil
	}

	res, err := om.serviceResource()
	if err != nil {
		return nil, fmt.Errorf("failed to build service resource: %w", err)
	}

	if err := om.startTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := om.startMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return om, nil
}

// serviceResource identifies this process in exported telemetry.
func (om *ObservabilityManager) serviceResource() (*resource.Resource, error) {
	instanceID := "resumescore-1"
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		instanceID = om.fullConfig.Observability.ServiceInstance
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", instanceID),
		),
	)
}

// startTracing picks the span exporter by configuration: console for
// development, OTLP when an endpoint is configured, discard otherwise.
func (om *ObservabilityManager) startTracing(res *resource.Resource) error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		var opts []stdouttrace.Option
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.otlpEnabled():
		exporter, err = om.newOTLPTraceExporter()
	default:
		exporter = discardSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// startMetrics assembles the configured readers into one meter provider
// and registers the custom instruments.
func (om *ObservabilityManager) startMetrics(res *resource.Resource) error {
	readers, err := om.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.registerInstruments()
}

// metricReaders builds every enabled reader: console, OTLP push, and a
// Prometheus scrape endpoint. With nothing enabled a manual reader
// keeps the provider valid.
func (om *ObservabilityManager) metricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(om.collectionInterval())))
	}

	if om.otlpEnabled() {
		reader, err := om.newOTLPMetricReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		if reader != nil {
			readers = append(readers, reader)
			om.prometheusServer = mux
			if err := StartPrometheusServer(mux, om.config.Prometheus.Port); err != nil {
				return nil, fmt.Errorf("failed to start Prometheus server: %w", err)
			}
		}
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// registerInstruments creates the custom instruments on one meter.
func (om *ObservabilityManager) registerInstruments() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	m := &Metrics{}
	var err error

	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc))
		return c
	}

	m.AnalysisDuration, err = meter.Float64Histogram(
		"resumescore_analysis_duration_seconds",
		metric.WithDescription("Time spent running the scoring engine"),
		metric.WithUnit("s"),
	)
	m.AnalysisCount = counter("resumescore_analysis_requests_total",
		"Total number of analysis requests")
	m.AnalysisErrorCount = counter("resumescore_analysis_errors_total",
		"Total number of failed analysis requests")
	if err == nil {
		m.ScoreDistribution, err = meter.Int64Histogram(
			"resumescore_overall_score",
			metric.WithDescription("Distribution of overall resume scores"),
		)
	}
	m.ResumesAnalyzed = counter("resumescore_resumes_analyzed_total",
		"Total number of resumes analyzed")
	m.CertReloadCount = counter("resumescore_cert_reloads_total",
		"Total number of certificate reloads")
	if err == nil {
		m.CertExpiryTime, err = meter.Float64Gauge(
			"resumescore_cert_expiry_seconds",
			metric.WithDescription("Seconds until certificate expiry"),
			metric.WithUnit("s"),
		)
	}
	m.RateLimitHits = counter("resumescore_rate_limit_hits_total",
		"Total number of rate limit hits")

	if err != nil {
		return fmt.Errorf("failed to register instruments: %w", err)
	}
	om.metrics = m
	return nil
}

// GetMetrics never returns nil so call sites can record without
// checking the manager state.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware instruments inbound requests with otelhttp.
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a named tracer, or a noop one when disabled.
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown flushes and stops providers in registration order.
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AnalysisOperationResult carries the outcome of one engine run back
// to the instrumentation wrapper.
type AnalysisOperationResult struct {
	Error        error
	OverallScore int
}

// TrackAnalysis wraps one scoring run in a span and records duration,
// count, score distribution and errors, honoring the per-metric
// toggles under observability.customMetrics.analysis.
func (m *Metrics) TrackAnalysis(ctx context.Context, role string, fn func(context.Context) *AnalysisOperationResult, om *ObservabilityManager) error {
	if m.AnalysisDuration == nil {
		if result := fn(ctx); result != nil {
			return result.Error
		}
		return nil
	}

	tracer := otel.Tracer("resumescore.engine")
	ctx, span := tracer.Start(ctx, "engine.analyze")
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	elapsed := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	if om.analysisSettings().Enabled {
		m.recordAnalysis(ctx, span, role, elapsed, result, err, om)
	}
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	return err
}

// recordAnalysis emits the per-run engine metrics.
func (m *Metrics) recordAnalysis(ctx context.Context, span oteltrace.Span, role string, elapsed float64, result *AnalysisOperationResult, err error, om *ObservabilityManager) {
	settings := om.analysisSettings()

	attrs := []attribute.KeyValue{attribute.Bool("success", err == nil)}
	if settings.TrackRoleBreakdown {
		attrs = append(attrs, attribute.String("role", role))
	}

	if settings.TrackDuration {
		m.AnalysisDuration.Record(ctx, elapsed, metric.WithAttributes(attrs...))
	}
	m.AnalysisCount.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err == nil && result != nil && m.ScoreDistribution != nil {
		if settings.TrackScores {
			m.ScoreDistribution.Record(ctx, int64(result.OverallScore), metric.WithAttributes(attrs...))
		}
		// Scores always land on the span even when the histogram is off.
		span.SetAttributes(attribute.Int("analysis.score", result.OverallScore))
	}
	if err != nil {
		m.AnalysisErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	span.SetAttributes(attrs...)
}

// RecordBusinessMetric bumps the counter matching metricType. Unknown
// types are ignored.
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, om *ObservabilityManager, attributes ...attribute.KeyValue) {
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.BusinessMetrics.Enabled {
		return
	}

	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)

	switch metricType {
	case "resume_analyzed":
		if m.ResumesAnalyzed != nil {
			m.ResumesAnalyzed.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	case "rate_limit_hit":
		if om != nil && om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.Infrastructure.TrackRateLimits {
			return
		}
		if m.RateLimitHits != nil {
			m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}
}

// analysisSettings resolves the engine-metric toggles, defaulting to
// everything on when no full config is attached.
func (om *ObservabilityManager) analysisSettings() config.AnalysisMetricsConfig {
	if om == nil || om.fullConfig == nil {
		return config.AnalysisMetricsConfig{
			Enabled:            true,
			TrackDuration:      true,
			TrackScores:        true,
			TrackRoleBreakdown: true,
		}
	}
	return om.fullConfig.Observability.CustomMetrics.Analysis
}

// discardSpanExporter drops spans when no exporter is configured.
type discardSpanExporter struct{}

func (discardSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (discardSpanExporter) Shutdown(context.Context) error                          { return nil }

func (om *ObservabilityManager) otlpEnabled() bool {
	return om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled
}

func (om *ObservabilityManager) newOTLPTraceExporter() (trace.SpanExporter, error) {
	otlp := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (om *ObservabilityManager) newOTLPMetricReader() (sdkmetric.Reader, error) {
	otlp := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(om.collectionInterval())), nil
}

func (om *ObservabilityManager) collectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return defaultCollectionInterval
}
