package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

type OtelConfig struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	OTLPEndpoint    string
	PrometheusPort  string
	Enabled         bool
	MetricsEnabled  bool
	TracesEnabled   bool
	DevelopmentMode bool // stdout exporters in development, OTLP in production
}

var (
	tracer             trace.Tracer
	meter              metric.Meter
	requestCounter     metric.Int64Counter
	requestDuration    metric.Float64Histogram
	activeRequests     metric.Int64UpDownCounter
	prometheusExporter *otelprom.Exporter
	prometheusRegistry *prometheus.Registry
)

// InitOpenTelemetry sets up the trace and metric providers and returns a
// cleanup function for shutdown.
func InitOpenTelemetry(config OtelConfig, logger zerolog.Logger) (func(), error) {
	if !config.Enabled {
		return func() {}, nil
	}

	ctx := context.Background()
	var shutdownFuncs []func(context.Context) error

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(config.Environment),
		semconv.ServiceNamespaceKey.String("dockcall-backend"),
		semconv.ServiceInstanceIDKey.String(fmt.Sprintf("%s-%d", config.ServiceName, time.Now().Unix())),
	)

	if config.TracesEnabled {
		traceShutdown, err := setupTraceProvider(ctx, res, config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to setup trace provider: %w", err)
		}
		shutdownFuncs = append(shutdownFuncs, traceShutdown)
	}

	if config.MetricsEnabled {
		metricShutdown, err := setupMeterProvider(ctx, res, config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to setup meter provider: %w", err)
		}
		shutdownFuncs = append(shutdownFuncs, metricShutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if config.TracesEnabled {
		tracer = otel.Tracer(config.ServiceName)
	}
	if config.MetricsEnabled {
		meter = otel.Meter(config.ServiceName)
		if err := initializeMetrics(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.Info().
		Str("service", config.ServiceName).
		Str("version", config.ServiceVersion).
		Str("environment", config.Environment).
		Str("otlp_endpoint", config.OTLPEndpoint).
		Bool("traces_enabled", config.TracesEnabled).
		Bool("metrics_enabled", config.MetricsEnabled).
		Bool("development_mode", config.DevelopmentMode).
		Msg("OpenTelemetry initialized")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, shutdown := range shutdownFuncs {
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Error during OpenTelemetry shutdown")
			}
		}
		logger.Info().Msg("OpenTelemetry shutdown complete")
	}, nil
}

// OpenTelemetryMiddleware traces every request and records request metrics.
func OpenTelemetryMiddleware(config OtelConfig, logger zerolog.Logger) func(huma.Context, func(huma.Context)) {
	if !config.Enabled {
		return func(ctx huma.Context, next func(huma.Context)) {
			next(ctx)
		}
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		startTime := time.Now()

		carrier := &HeaderCarrier{ctx: ctx}
		parentCtx := otel.GetTextMapPropagator().Extract(ctx.Context(), carrier)

		spanName := fmt.Sprintf("%s %s", ctx.Method(), ctx.URL().Path)

		var span trace.Span
		var spanCtx context.Context

		if config.TracesEnabled && tracer != nil {
			spanCtx, span = tracer.Start(parentCtx, spanName,
				trace.WithAttributes(
					semconv.HTTPMethodKey.String(ctx.Method()),
					semconv.HTTPRouteKey.String(ctx.URL().Path),
					semconv.HTTPSchemeKey.String(ctx.URL().Scheme),
					semconv.HTTPUserAgentKey.String(ctx.Header("User-Agent")),
					attribute.String("http.host", ctx.Header("Host")),
					attribute.String("net.peer.ip", ctx.RemoteAddr()),
					attribute.String("service.name", config.ServiceName),
					attribute.String("service.environment", config.Environment),
				),
			)
			defer span.End()
		} else {
			spanCtx = parentCtx
		}

		requestID := GetRequestIDFromContext(ctx)
		if requestID == "" && span != nil {
			requestID = fmt.Sprintf("req_%s", span.SpanContext().TraceID().String()[:8])
		}

		if span != nil {
			traceID := span.SpanContext().TraceID().String()
			spanID := span.SpanContext().SpanID().String()
			ctx.SetHeader("X-Request-ID", requestID)
			ctx.SetHeader("X-Trace-ID", traceID)
			ctx.SetHeader("X-Span-ID", spanID)

			otel.GetTextMapPropagator().Inject(spanCtx, carrier)
		}

		if config.MetricsEnabled && activeRequests != nil {
			activeRequests.Add(spanCtx, 1, metric.WithAttributes(
				attribute.String("method", ctx.Method()),
				attribute.String("route", ctx.URL().Path),
			))
		}

		if span != nil {
			span.AddEvent("request.start")
		}

		next(ctx)

		duration := time.Since(startTime)
		statusCode := ctx.Status()

		if config.MetricsEnabled {
			metricAttrs := metric.WithAttributes(
				attribute.String("method", ctx.Method()),
				attribute.String("route", ctx.URL().Path),
				attribute.Int("status_code", statusCode),
				attribute.String("status_class", fmt.Sprintf("%dxx", statusCode/100)),
			)

			if requestCounter != nil {
				requestCounter.Add(spanCtx, 1, metricAttrs)
			}
			if requestDuration != nil {
				requestDuration.Record(spanCtx, duration.Seconds(), metricAttrs)
			}
			if activeRequests != nil {
				activeRequests.Add(spanCtx, -1, metric.WithAttributes(
					attribute.String("method", ctx.Method()),
					attribute.String("route", ctx.URL().Path),
				))
			}
		}

		if span != nil {
			span.SetAttributes(
				semconv.HTTPStatusCodeKey.Int(statusCode),
				attribute.Float64("http.request.duration_ms", float64(duration.Nanoseconds())/1e6),
				attribute.String("http.request_id", requestID),
			)

			span.AddEvent("request.complete", trace.WithAttributes(
				attribute.Int("status_code", statusCode),
				attribute.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
			))

			if statusCode >= 400 {
				span.RecordError(fmt.Errorf("HTTP %d", statusCode))
				if statusCode >= 500 {
					span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
				} else {
					span.SetStatus(codes.Error, fmt.Sprintf("Client Error %d", statusCode))
				}
			} else {
				span.SetStatus(codes.Ok, "")
			}
		}

		logEvent := logger.Debug()
		if statusCode >= 500 {
			logEvent = logger.Error()
		} else if statusCode >= 400 {
			logEvent = logger.Warn()
		} else {
			logEvent = logger.Info()
		}

		logEvent.
			Str("request_id", requestID).
			Str("method", ctx.Method()).
			Str("path", ctx.URL().Path).
			Int("status_code", statusCode).
			Float64("duration_ms", float64(duration.Nanoseconds())/1e6).
			Str("user_agent", ctx.Header("User-Agent")).
			Str("remote_addr", ctx.RemoteAddr()).
			Msg("HTTP request completed")

		if span != nil {
			logEvent.
				Str("trace_id", span.SpanContext().TraceID().String()).
				Str("span_id", span.SpanContext().SpanID().String())
		}
	}
}

// GetTraceIDFromContext reads the trace ID response header.
func GetTraceIDFromContext(ctx huma.Context) string {
	return ctx.Header("X-Trace-ID")
}

// GetSpanIDFromContext reads the span ID response header.
func GetSpanIDFromContext(ctx huma.Context) string {
	return ctx.Header("X-Span-ID")
}

// GetRequestIDFromContext reads the request ID header.
func GetRequestIDFromContext(ctx huma.Context) string {
	return ctx.Header("X-Request-ID")
}

// GetSpanFromContext returns the active span for the request.
func GetSpanFromContext(ctx huma.Context) trace.Span {
	return trace.SpanFromContext(ctx.Context())
}

// AddSpanEvent adds an event to the active span.
func AddSpanEvent(ctx huma.Context, name string, attributes ...attribute.KeyValue) {
	if span := GetSpanFromContext(ctx); span != nil {
		span.AddEvent(name, trace.WithAttributes(attributes...))
	}
}

// SetSpanAttributes sets attributes on the active span.
func SetSpanAttributes(ctx huma.Context, attributes ...attribute.KeyValue) {
	if span := GetSpanFromContext(ctx); span != nil {
		span.SetAttributes(attributes...)
	}
}

// RecordSpanError records an error on the active span.
func RecordSpanError(ctx huma.Context, err error, description string) {
	if span := GetSpanFromContext(ctx); span != nil {
		span.RecordError(err)
		if description != "" {
			span.SetStatus(codes.Error, description)
		}
	}
}

func setupTraceProvider(ctx context.Context, res *resource.Resource, config OtelConfig, logger zerolog.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error

	if config.DevelopmentMode {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		logger.Info().Msg("using stdout trace exporter (development mode)")
	} else {
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(config.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		logger.Info().Str("endpoint", config.OTLPEndpoint).Msg("using OTLP gRPC trace exporter (production mode)")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func setupMeterProvider(ctx context.Context, res *resource.Resource, config OtelConfig, logger zerolog.Logger) (func(context.Context) error, error) {
	var readers []sdkmetric.Reader
	var shutdownFuncs []func(context.Context) error

	// Prometheus exporter is always on, it backs the /metrics endpoint.
	var err error
	prometheusRegistry = prometheus.NewRegistry()
	prometheusExporter, err = otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	readers = append(readers, prometheusExporter)
	logger.Info().Msg("Prometheus metrics exporter enabled")

	if config.DevelopmentMode {
		stdoutExporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(stdoutExporter,
			sdkmetric.WithInterval(30*time.Second)))
		logger.Info().Msg("stdout metric exporter enabled (development mode)")
	} else {
		otlpExporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(config.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("cannot create OTLP metric exporter, falling back to Prometheus only")
		} else {
			readers = append(readers, sdkmetric.NewPeriodicReader(otlpExporter,
				sdkmetric.WithInterval(30*time.Second)))
			logger.Info().Str("endpoint", config.OTLPEndpoint).Msg("OTLP gRPC metric exporter enabled (production mode)")

			shutdownFuncs = append(shutdownFuncs, func(ctx context.Context) error {
				return otlpExporter.Shutdown(ctx)
			})
		}
	}

	mpOptions := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		mpOptions = append(mpOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(mpOptions...)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		if err := mp.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Error shutting down meter provider")
		}

		for _, shutdown := range shutdownFuncs {
			if err := shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("Error shutting down metric exporter")
			}
		}
		return nil
	}, nil
}

func initializeMetrics() error {
	var err error

	requestCounter, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request counter: %w", err)
	}

	requestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	activeRequests, err = meter.Int64UpDownCounter(
		"http_requests_active",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active requests counter: %w", err)
	}

	return nil
}

// GetPrometheusHandler returns the handler backed by the OpenTelemetry
// Prometheus exporter registry.
func GetPrometheusHandler() http.Handler {
	if prometheusRegistry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Prometheus registry not initialized"))
		})
	}

	return promhttp.HandlerFor(prometheusRegistry, promhttp.HandlerOpts{})
}

// HeaderCarrier adapts huma headers to the propagation.TextMapCarrier interface.
type HeaderCarrier struct {
	ctx huma.Context
}

func (h *HeaderCarrier) Get(key string) string {
	return h.ctx.Header(key)
}

func (h *HeaderCarrier) Set(key, value string) {
	h.ctx.SetHeader(key, value)
}

func (h *HeaderCarrier) Keys() []string {
	// huma.Context cannot enumerate header keys; extract works without them.
	return []string{}
}
