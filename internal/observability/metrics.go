package observability

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus series exported by the web process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	fetches         *prometheus.CounterVec
	liveConnections *prometheus.GaugeVec
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics builds a private registry with the HTTP, backend, list and cache series.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	backendCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_backend_calls_total",
		Help: "Bank API calls by operation and outcome class.",
	}, []string{"operation", "outcome"})
	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_backend_call_duration_seconds",
		Help:    "Bank API call latency by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_list_fetches_total",
		Help: "List fetches issued and discarded as stale, per screen.",
	}, []string{"screen", "result"})
	live := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "backoffice_live_connections",
		Help: "Open live screen websockets.",
	}, []string{"screen"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_dashboard_cache_lookups_total",
		Help: "Dashboard cache lookups by kind and result.",
	}, []string{"kind", "result"})
	registry.MustRegister(requests, duration, backendCalls, backendDuration, fetches, live, cache)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		backendCalls:    backendCalls,
		backendDuration: backendDuration,
		fetches:         fetches,
		liveConnections: live,
		cacheLookups:    cache,
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

// Middleware records count and latency of every HTTP request.
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

// Registerer exposes the registry for collectors owned by other packages.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// ObserveBackendCall implements backend.Observer. Status 0 means the API was unreachable.
func (m *Metrics) ObserveBackendCall(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendCalls.WithLabelValues(operation, outcome(status)).Inc()
	m.backendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// FetchIssued implements listview.Observer.
func (m *Metrics) FetchIssued(screen string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(screen, "issued").Inc()
}

// FetchDiscarded implements listview.Observer.
func (m *Metrics) FetchDiscarded(screen string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(screen, "discarded").Inc()
}

// LiveConnected implements live.ConnectionObserver.
func (m *Metrics) LiveConnected(screen string) {
	if m == nil {
		return
	}
	m.liveConnections.WithLabelValues(screen).Inc()
}

// LiveDisconnected implements live.ConnectionObserver.
func (m *Metrics) LiveDisconnected(screen string) {
	if m == nil {
		return
	}
	m.liveConnections.WithLabelValues(screen).Dec()
}

// DashboardCacheLookup implements dashboard.Observer.
func (m *Metrics) DashboardCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

func outcome(status int) string {
	switch {
	case status == 0:
		return "unavailable"
	case status < 300:
		return "ok"
	case status < 500:
		return "rejected"
	default:
		return "error"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("observability: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
