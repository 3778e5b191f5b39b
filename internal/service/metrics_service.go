package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeValidation  = "validation_error"
	OutcomeExtraction  = "extraction_error"
	OutcomeAnalyzer    = "analyzer_error"
	OutcomePersistence = "persistence_error"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	analysisTotal      *prometheus.CounterVec
	analyzerLatency    prometheus.Histogram
	extractionLatency  *prometheus.HistogramVec
	subjectsClassified *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	analysisTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "equivalence_analyses_total",
		Help: "Analysis requests by outcome",
	}, []string{"outcome"})

	analyzerLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "equivalence_analyzer_duration_seconds",
		Help:    "Latency of language model calls",
		Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
	})

	extractionLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "equivalence_pdf_extraction_duration_seconds",
		Help:    "Latency of PDF text extraction per document",
		Buckets: prometheus.DefBuckets,
	}, []string{"document"})

	subjectsClassified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "equivalence_subjects_total",
		Help: "Subjects parsed from analyzer answers by status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		analysisTotal, analyzerLatency, extractionLatency, subjectsClassified, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		analysisTotal:      analysisTotal,
		analyzerLatency:    analyzerLatency,
		extractionLatency:  extractionLatency,
		subjectsClassified: subjectsClassified,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordAnalysis counts one analysis request by outcome.
func (m *MetricsService) RecordAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.analysisTotal.WithLabelValues(outcome).Inc()
}

// ObserveAnalyzer records the latency of one language model call.
func (m *MetricsService) ObserveAnalyzer(duration time.Duration) {
	if m == nil {
		return
	}
	m.analyzerLatency.Observe(duration.Seconds())
}

// ObserveExtraction records PDF extraction latency for one document kind.
func (m *MetricsService) ObserveExtraction(document string, duration time.Duration) {
	if m == nil {
		return
	}
	m.extractionLatency.WithLabelValues(document).Observe(duration.Seconds())
}

// RecordSubjects counts parsed subjects.
func (m *MetricsService) RecordSubjects(equivalent, pending int) {
	if m == nil {
		return
	}
	m.subjectsClassified.WithLabelValues("equivalent").Add(float64(equivalent))
	m.subjectsClassified.WithLabelValues("pending").Add(float64(pending))
}
