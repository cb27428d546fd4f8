package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formrelay_http_requests_total",
			Help: "Total number of HTTP requests received.",
		},
		[]string{"handler", "method", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formrelay_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
	sideEffectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formrelay_side_effects_total",
			Help: "Best-effort side effects by effect and outcome.",
		},
		[]string{"effect", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, sideEffectsTotal)
}

// Shutdown flushes and stops the tracer provider installed by Init.
type Shutdown func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a tracer provider for the configured exporter.
// Supported exporters: "none", "stdout", "otlp".
func Init(cfg *config.Config) (Shutdown, error) {
	tc := cfg.Tracing
	serviceName := constants.ServiceName
	if tc.ServiceName != "" {
		serviceName = tc.ServiceName
	}

	var exp sdktrace.SpanExporter
	var err error
	switch tc.Exporter {
	case "", constants.TraceExporterNone:
		return noopShutdown, nil
	case constants.TraceExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case constants.TraceExporterOTLP:
		var opts []otlptracehttp.Option
		if tc.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(tc.Endpoint))
		}
		exp, err = otlptracehttp.New(context.Background(), opts...)
	default:
		return noopShutdown, fmt.Errorf("unsupported trace exporter: %s", tc.Exporter)
	}
	if err != nil {
		return noopShutdown, fmt.Errorf("failed to create %s exporter: %w", tc.Exporter, err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return noopShutdown, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// WrapHandler applies tracing, Prometheus metrics, and otelhttp middleware.
func WrapHandler(name string, next http.Handler) http.Handler {
	h := otelhttp.NewHandler(next, name)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rw, r)
		httpRequestsTotal.WithLabelValues(name, r.Method, strconv.Itoa(rw.status)).Inc()
		httpRequestDuration.WithLabelValues(name, r.Method).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// ObserveSideEffect counts one outcome ("ok", "failed", "skipped") of a
// best-effort effect ("notification", "archive", "hook").
func ObserveSideEffect(effect, outcome string) {
	sideEffectsTotal.WithLabelValues(effect, outcome).Inc()
}

// MetricsHandler returns the Prometheus metrics endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
