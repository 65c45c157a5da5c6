package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	predictions prometheus.Counter
	clamped     prometheus.Counter
	cacheHits   prometheus.Counter
	modelErrors prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aqi_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aqi_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqi_predictions_total",
			Help: "Predictions served.",
		}),
		clamped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqi_predictions_clamped_total",
			Help: "Predictions where the model returned a negative value that was floored to zero.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqi_prediction_cache_hits_total",
			Help: "Predictions answered from the cache.",
		}),
		modelErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqi_model_errors_total",
			Help: "Failures raised by the model predict call.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.latency, m.predictions, m.clamped, m.cacheHits, m.modelErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObservePrediction(clamped, cached bool) {
	m.predictions.Inc()
	if clamped {
		m.clamped.Inc()
	}
	if cached {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) ObserveModelError() {
	m.modelErrors.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
