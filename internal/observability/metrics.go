package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the API process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recomputes      *prometheus.CounterVec
	fieldUpdates    *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oohdesk_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oohdesk_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	recomputes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oohdesk_pricing_recomputes_total",
		Help: "Line item recomputations by edited field.",
	}, []string{"field"})
	updates := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oohdesk_pricing_patch_updates",
		Help:    "Derived fields written per recomputation.",
		Buckets: []float64{1, 2, 3, 4, 6, 8},
	}, []string{"field"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oohdesk_submissions_total",
		Help: "Selection submissions by context and outcome.",
	}, []string{"type", "outcome"})
	registry.MustRegister(
		requests, duration, recomputes, updates, submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		recomputes:      recomputes,
		fieldUpdates:    updates,
		submissions:     submissions,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveRecompute counts one pricing recomputation.
func (m *Metrics) ObserveRecompute(field string, updates int) {
	if m == nil {
		return
	}
	if field == "" {
		field = "unknown"
	}
	m.recomputes.WithLabelValues(field).Inc()
	m.fieldUpdates.WithLabelValues(field).Observe(float64(updates))
}

// ObserveSubmission counts one submission attempt.
func (m *Metrics) ObserveSubmission(ctxType, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(ctxType, outcome).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
