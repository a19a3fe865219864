package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

const metricsNamespace = "portal"

// MetricsService owns the portal's Prometheus registry and keeps a few running totals for Snapshot.
type MetricsService struct {
	handler http.Handler

	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
	cacheHitRatio   prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec
	cascadeSteps    *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	orphansRemoved  *prometheus.CounterVec

	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	requests        atomic.Uint64
	requestNanos    atomic.Uint64
	dbQueries       atomic.Uint64
	dbQueryNanos    atomic.Uint64
	cascadeFailures atomic.Uint64
}

// NewMetricsService registers the portal collectors alongside the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route template",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Read-model cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "cache_operation_seconds",
			Help:      "Latency of cache reads and writes",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"op"}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cache_hit_ratio",
			Help:      "Hits over total lookups since start",
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of multi-statement database operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		cascadeSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cascade_steps_total",
			Help:      "Deletion cascade steps by entity, step and outcome",
		}, []string{"entity", "step", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "enrollment_transitions_total",
			Help:      "Enrollment transitions by requested action and resulting outcome",
		}, []string{"action", "result"}),
		orphansRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "integrity_orphans_removed_total",
			Help:      "Dangling dependent records removed by the integrity sweep",
		}, []string{"collection"}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration, m.cacheLookups, m.cacheLatency, m.cacheHitRatio,
		m.dbQueryDuration, m.cascadeSteps, m.transitions, m.orphansRemoved,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.Add(1)
	m.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache read and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.cacheMisses.Add(1)
	}
	m.cacheHitRatio.Set(m.hitRatio())
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records the duration of a named database operation.
func (m *MetricsService) ObserveDBQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.dbQueries.Add(1)
	m.dbQueryNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCascadeStep counts one applied or failed cascade step.
func (m *MetricsService) RecordCascadeStep(entity, step, outcome string) {
	if m == nil {
		return
	}
	m.cascadeSteps.WithLabelValues(entity, step, outcome).Inc()
	if outcome == "failed" {
		m.cascadeFailures.Add(1)
	}
}

// RecordTransition counts an enrollment transition.
func (m *MetricsService) RecordTransition(action models.EnrollmentAction, outcome models.EnrollmentOutcome) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(action), string(outcome)).Inc()
}

// RecordOrphansRemoved adds the number of dangling records a sweep removed from collection.
func (m *MetricsService) RecordOrphansRemoved(collection string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.orphansRemoved.WithLabelValues(collection).Add(float64(n))
}

func (m *MetricsService) hitRatio() float64 {
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func averageMs(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}

// Snapshot returns the running totals served on /health.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests, dbQueries := m.requests.Load(), m.dbQueries.Load()
	return models.SystemMetrics{
		CacheHitRatio:            m.hitRatio(),
		CacheHits:                m.cacheHits.Load(),
		CacheMisses:              m.cacheMisses.Load(),
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMs(m.requestNanos.Load(), requests),
		DBQueryCount:             dbQueries,
		AverageDBQueryDurationMs: averageMs(m.dbQueryNanos.Load(), dbQueries),
		CascadeFailures:          m.cascadeFailures.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
