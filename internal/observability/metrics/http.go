// Package metrics exposes Prometheus metrics for the assistant: generic
// HTTP server metrics plus query-pipeline observations (mode, generation
// method, confidence, retrieval depth). Everything registers on a private
// registry so tests can construct instances freely.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adm"

type AssistantMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queryTotal        *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
	queryCacheHits    *prometheus.CounterVec
	queryGeneration   *prometheus.CounterVec
	queryDegraded     *prometheus.CounterVec
	retrievedDocs     *prometheus.HistogramVec
	queryConfidence   *prometheus.HistogramVec
	knowledgeReloads  *prometheus.CounterVec
	knowledgeDocCount prometheus.Gauge
}

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

func serviceGauge(subsystem, name, help, service string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: prometheus.Labels{"service": service},
	})
}

func NewAssistantMetrics(service string) *AssistantMetrics {
	m := &AssistantMetrics{
		registry: prometheus.NewRegistry(),

		requestTotal: counter("http", "requests_total",
			"Total HTTP requests processed.",
			"service", "method", "path", "status"),
		requestDuration: histogram("http", "request_duration_seconds",
			"HTTP request duration in seconds.",
			prometheus.DefBuckets, "service", "method", "path"),
		requestInFlight: serviceGauge("http", "in_flight_requests",
			"Number of in-flight HTTP requests.", service),

		queryTotal: counter("query", "requests_total",
			"Total answered queries by retrieval mode.",
			"service", "mode"),
		queryDuration: histogram("query", "duration_seconds",
			"End-to-end query duration in seconds.",
			prometheus.DefBuckets, "service", "mode"),
		queryCacheHits: counter("query", "cache_hits_total",
			"Total queries answered from the session response cache.",
			"service"),
		queryGeneration: counter("query", "generation_total",
			"Total answers by generation method.",
			"service", "method"),
		queryDegraded: counter("query", "degraded_total",
			"Total queries answered with the apology fallback.",
			"service"),
		retrievedDocs: histogram("query", "retrieved_documents",
			"Distribution of retrieved documents per query.",
			[]float64{0, 1, 2, 3, 5, 8, 13}, "service"),
		queryConfidence: histogram("query", "confidence",
			"Distribution of answer confidence scores.",
			prometheus.LinearBuckets(0, 0.1, 11), "service"),

		knowledgeReloads: counter("knowledge", "reloads_total",
			"Total knowledge base reloads by outcome.",
			"service", "status"),
		knowledgeDocCount: serviceGauge("knowledge", "documents",
			"Documents currently held in the retrieval indices.", service),
	}

	m.registry.MustRegister(
		m.requestTotal, m.requestDuration, m.requestInFlight,
		m.queryTotal, m.queryDuration, m.queryCacheHits,
		m.queryGeneration, m.queryDegraded, m.retrievedDocs,
		m.queryConfidence, m.knowledgeReloads, m.knowledgeDocCount,
	)
	return m
}

func (m *AssistantMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *AssistantMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &observedResponse{ResponseWriter: w, status: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(service, r.Method, path, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses path parameters so label cardinality stays bounded.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/v1/sessions/") {
		return "/v1/sessions/{session_id}"
	}
	return path
}

func (m *AssistantMetrics) RecordQuery(service, mode, method string, cacheHit, degraded bool, resultCount int, confidence float64, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	if method == "" {
		method = "unknown"
	}

	m.queryTotal.WithLabelValues(service, mode).Inc()
	m.queryDuration.WithLabelValues(service, mode).Observe(duration.Seconds())
	m.queryGeneration.WithLabelValues(service, method).Inc()
	m.retrievedDocs.WithLabelValues(service).Observe(float64(resultCount))
	m.queryConfidence.WithLabelValues(service).Observe(confidence)

	if cacheHit {
		m.queryCacheHits.WithLabelValues(service).Inc()
	}
	if degraded {
		m.queryDegraded.WithLabelValues(service).Inc()
	}
}

func (m *AssistantMetrics) RecordKnowledgeReload(service string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.knowledgeReloads.WithLabelValues(service, status).Inc()
}

func (m *AssistantMetrics) SetDocumentCount(count int) {
	m.knowledgeDocCount.Set(float64(count))
}

type observedResponse struct {
	http.ResponseWriter
	status int
}

func (w *observedResponse) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *observedResponse) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *observedResponse) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
