package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	cacheLatency        prometheus.Observer
	cacheWrite          prometheus.Observer
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	dbQueryDuration     *prometheus.HistogramVec
	authzDecisions      *prometheus.CounterVec
	historyAppends      *prometheus.CounterVec
	attendancesCreated  *prometheus.CounterVec
	unresolvedCompanies prometheus.Counter
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

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	authzDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authorization_decisions_total",
		Help: "Course authorization decisions by capability and outcome",
	}, []string{"capability", "outcome"})

	historyAppends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "course_history_appends_total",
		Help: "Course history entries appended by action",
	}, []string{"action"})

	attendancesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendances_created_total",
		Help: "Attendances created by mode",
	}, []string{"mode"})

	unresolvedCompanies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "membership_unresolved_total",
		Help: "Trainees for which no company could be resolved",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		dbQueryDuration, authzDecisions, historyAppends, attendancesCreated, unresolvedCompanies, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		dbQueryDuration:     dbQueryDuration,
		authzDecisions:      authzDecisions,
		historyAppends:      historyAppends,
		attendancesCreated:  attendancesCreated,
		unresolvedCompanies: unresolvedCompanies,
	}
}

// Registry exposes the underlying registry, mostly for tests.
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
		return
	}
	m.cacheMisses.Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordDecision counts an authorization decision.
func (m *MetricsService) RecordDecision(capability models.Capability, outcome models.DecisionOutcome) {
	if m == nil {
		return
	}
	m.authzDecisions.WithLabelValues(string(capability), string(outcome)).Inc()
}

// RecordHistoryAppend counts a course history entry.
func (m *MetricsService) RecordHistoryAppend(action models.CourseHistoryAction) {
	if m == nil {
		return
	}
	m.historyAppends.WithLabelValues(string(action)).Inc()
}

// RecordAttendancesCreated counts created attendances; mode is "single" or "bulk".
func (m *MetricsService) RecordAttendancesCreated(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.attendancesCreated.WithLabelValues(mode).Add(float64(n))
}

// RecordUnresolvedMembership counts trainees attributed to no company.
func (m *MetricsService) RecordUnresolvedMembership(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.unresolvedCompanies.Add(float64(n))
}
