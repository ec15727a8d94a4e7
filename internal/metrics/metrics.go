package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the scoring service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	scoresTotal   *prometheus.CounterVec
	scoreDuration prometheus.Histogram
	cacheLookups  *prometheus.CounterVec

	wsMessagesTotal *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		scoresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mastermind_scores_total",
				Help: "Total number of scored guesses by input validity",
			},
			[]string{"valid"},
		),
		scoreDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mastermind_score_duration_seconds",
				Help:    "Time to answer a score request, cache lookups included",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mastermind_score_cache_lookups_total",
				Help: "Score cache lookups by cache layer and result",
			},
			[]string{"layer", "result"},
		),
		wsMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mastermind_ws_messages_total",
				Help: "WebSocket messages received by type",
			},
			[]string{"type"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mastermind_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mastermind_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.scoresTotal,
		m.scoreDuration,
		m.cacheLookups,
		m.wsMessagesTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

func (m *Metrics) RecordScore(valid bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.scoresTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
	m.scoreDuration.Observe(duration.Seconds())
}

// RecordCacheLookup result is hit|miss|error.
func (m *Metrics) RecordCacheLookup(layer, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(layer, result).Inc()
}

func (m *Metrics) RecordWSMessage(msgType string) {
	if m == nil {
		return
	}
	m.wsMessagesTotal.WithLabelValues(msgType).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency per endpoint.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		m.RecordHTTPRequest(r.Method, endpointName(r.URL.Path), strconv.Itoa(wrapped.StatusCode), time.Since(start))
	})
}

// ResponseWriter captures the status code and keeps the writer hijackable
// for WebSocket upgrades.
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack records 101 on success: the upgrade handshake is written on the
// raw connection, so WriteHeader never sees it.
func (rw *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, brw, err := hijacker.Hijack()
		if err == nil {
			rw.StatusCode = http.StatusSwitchingProtocols
		}
		return conn, brw, err
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not support http.Hijacker")
}

func endpointName(path string) string {
	switch path {
	case "/healthz":
		return "healthz"
	case "/metrics":
		return "metrics"
	case "/api/score":
		return "score"
	case "/api/validate":
		return "validate"
	case "/api/token":
		return "token"
	case "/ws":
		return "ws"
	default:
		return "unknown"
	}
}
