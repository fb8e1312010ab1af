package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpRequestsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active HTTP requests",
		},
		[]string{"method", "route"},
	)

	websocketConnectionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Total number of active WebSocket panel connections",
		},
		[]string{"type"},
	)

	driversByAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drivers_by_availability_total",
			Help: "Registered drivers grouped by availability status",
		},
		[]string{"availability"},
	)

	activeCallsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "panel_active_calls",
			Help: "Calls currently on the active panel",
		},
	)

	finalizedCallsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "panel_finalized_calls",
			Help: "Calls on the finalized panel",
		},
	)

	infraHealthStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "infrastructure_health_status",
			Help: "Health status of infrastructure components (1=healthy, 0=unhealthy)",
		},
		[]string{"service", "component"},
	)

	infraConnectionLatency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "infrastructure_connection_latency_ms",
			Help: "Connection latency to infrastructure components in milliseconds",
		},
		[]string{"service", "component"},
	)

	promRegistry *prometheus.Registry
)

// InitPrometheusMetrics creates the registry and registers all middleware metrics.
func InitPrometheusMetrics(logger zerolog.Logger) error {
	promRegistry = prometheus.NewRegistry()

	collectors := map[string]prometheus.Collector{
		"http_requests_total":                  httpRequestsTotal,
		"http_request_duration_seconds":        httpRequestDurationSeconds,
		"http_requests_active":                 httpRequestsActive,
		"websocket_connections_total":          websocketConnectionsTotal,
		"drivers_by_availability_total":        driversByAvailability,
		"panel_active_calls":                   activeCallsGauge,
		"panel_finalized_calls":                finalizedCallsGauge,
		"infrastructure_health_status":         infraHealthStatus,
		"infrastructure_connection_latency_ms": infraConnectionLatency,
	}
	for name, collector := range collectors {
		if err := promRegistry.Register(collector); err != nil {
			return fmt.Errorf("failed to register %s: %w", name, err)
		}
	}

	promRegistry.MustRegister(prometheus.NewGoCollector())
	promRegistry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	logger.Info().Msg("Prometheus metrics initialized")
	return nil
}

// GetStandardPrometheusHandler returns the /metrics handler.
func GetStandardPrometheusHandler() http.Handler {
	if promRegistry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Prometheus registry not initialized"))
		})
	}

	return promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry exposes the registry to other packages.
func GetPrometheusRegistry() *prometheus.Registry {
	return promRegistry
}

// PrometheusMiddleware records per-request HTTP metrics.
func PrometheusMiddleware(logger zerolog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if promRegistry == nil {
			next(ctx)
			return
		}

		startTime := time.Now()
		method := ctx.Method()
		route := ctx.URL().Path

		httpRequestsActive.WithLabelValues(method, route).Inc()

		next(ctx)

		duration := time.Since(startTime)
		statusCode := ctx.Status()
		statusCodeStr := strconv.Itoa(statusCode)

		httpRequestsTotal.WithLabelValues(method, route, statusCodeStr).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
		httpRequestsActive.WithLabelValues(method, route).Dec()

		logger.Debug().
			Str("method", method).
			Str("route", route).
			Int("status_code", statusCode).
			Float64("duration_seconds", duration.Seconds()).
			Msg("HTTP metrics recorded")
	}
}

// UpdateWebSocketConnections refreshes the connection gauges.
func UpdateWebSocketConnections(connectionsByType map[string]int) {
	if promRegistry == nil || websocketConnectionsTotal == nil {
		return
	}

	websocketConnectionsTotal.Reset()
	for connType, count := range connectionsByType {
		websocketConnectionsTotal.WithLabelValues(connType).Set(float64(count))
	}
}

// UpdatePanelGauges refreshes the dashboard gauges from the latest snapshot.
func UpdatePanelGauges(availabilityCounts map[string]int, activeCalls, finalizedCalls int) {
	if promRegistry == nil {
		return
	}

	driversByAvailability.Reset()
	for availability, count := range availabilityCounts {
		driversByAvailability.WithLabelValues(availability).Set(float64(count))
	}

	activeCallsGauge.Set(float64(activeCalls))
	finalizedCallsGauge.Set(float64(finalizedCalls))
}

// UpdateInfrastructureHealth refreshes one component's health gauges.
func UpdateInfrastructureHealth(service, component string, isHealthy bool, latencyMs float64) {
	if promRegistry == nil || infraHealthStatus == nil || infraConnectionLatency == nil {
		return
	}

	healthValue := 0.0
	if isHealthy {
		healthValue = 1.0
	}

	infraHealthStatus.WithLabelValues(service, component).Set(healthValue)
	if latencyMs >= 0 {
		infraConnectionLatency.WithLabelValues(service, component).Set(latencyMs)
	}
}
