// Package obs holds the Prometheus metrics of the access service.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector we export. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	reg *prometheus.Registry

	decisions       *prometheus.CounterVec
	linkFailures    *prometheus.CounterVec
	linksIssued     *prometheus.CounterVec
	creditsConsumed *prometheus.CounterVec
	jwksRefreshes   *prometheus.CounterVec

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	buildInfo           *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Authorization gate decisions by policy and outcome.",
		}, []string{"policy", "outcome"}),
		linkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_link_verify_failures_total",
			Help: "Rejected access links by internal cause.",
		}, []string{"reason"}),
		linksIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_links_issued_total",
			Help: "Access links issued by scope.",
		}, []string{"scope"}),
		creditsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_credit_consumptions_total",
			Help: "Credit consumption attempts by outcome.",
		}, []string{"outcome"}),
		jwksRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_idp_jwks_refreshes_total",
			Help: "Identity provider JWKS refreshes by result.",
		}, []string{"result"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Access service build information.",
		}, []string{"version"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.decisions, m.linkFailures, m.linksIssued, m.creditsConsumed, m.jwksRefreshes,
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration, m.buildInfo,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) SetBuildInfo(version string) {
	if m == nil {
		return
	}
	m.buildInfo.WithLabelValues(version).Set(1)
}

func (m *Metrics) Decision(policy, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(policy, outcome).Inc()
}

func (m *Metrics) LinkRejected(reason string) {
	if m == nil {
		return
	}
	m.linkFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) LinkIssued(scope string) {
	if m == nil {
		return
	}
	m.linksIssued.WithLabelValues(scope).Inc()
}

func (m *Metrics) CreditConsumed(outcome string) {
	if m == nil {
		return
	}
	m.creditsConsumed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) JWKSRefreshed(result string) {
	if m == nil {
		return
	}
	m.jwksRefreshes.WithLabelValues(result).Inc()
}

// Instrument measures rate, latency and concurrency. It must wrap the
// ServeMux directly: the route label is read from r.Pattern, which the mux
// fills in on the request it was handed.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			// never label by raw path: landlord links carry tokens in it
			route = "unmatched"
		}
		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
