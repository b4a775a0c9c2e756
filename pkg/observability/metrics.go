// Package observability exposes Prometheus metrics for the API server.
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

// Metrics holds the server's registry and instruments.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	DecisionsCreated   prometheus.Counter
	BranchesCreated    prometheus.Counter
	SimulationsRun     prometheus.Counter
	AdapterFallbacks   prometheus.Counter
	DecisionsFinalized *prometheus.CounterVec
}

// NewMetrics builds a self-contained registry with process and Go runtime
// collectors plus the application instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DecisionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decisions_created_total",
			Help: "Decisions created.",
		}),
		BranchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "branches_created_total",
			Help: "Branches created.",
		}),
		SimulationsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulations_run_total",
			Help: "Simulations completed, including degraded ones.",
		}),
		AdapterFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "narrative_fallbacks_total",
			Help: "Generation calls that served fallback content.",
		}),
		DecisionsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decisions_finalized_total",
			Help: "Decisions finalized, by terminal operation.",
		}, []string{"operation"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.DecisionsCreated,
		m.BranchesCreated,
		m.SimulationsRun,
		m.AdapterFallbacks,
		m.DecisionsFinalized,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency, labeled by the chi route
// pattern so path parameters don't blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
