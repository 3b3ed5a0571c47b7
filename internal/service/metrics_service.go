package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
)

// Store load outcomes reported by the list engine.
const (
	LoadOutcomeOnline       = "online"
	LoadOutcomeOfflineCache = "offline_cache"
	LoadOutcomeOfflineEmpty = "offline_empty"
	LoadOutcomeError        = "error"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	rpcDuration     *prometheus.HistogramVec
	storeLoads      *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	rpcCount             uint64
	rpcDurationTotal     uint64
	offlineLoadCount     uint64
}

// NewMetricsService registers core Prometheus collectors.
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

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	rpcDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odoo_rpc_duration_seconds",
		Help:    "Duration of Odoo JSON-RPC calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "method", "outcome"})

	storeLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_store_loads_total",
		Help: "List loads by store and outcome",
	}, []string{"store", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, rpcDuration, storeLoads, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		rpcDuration:     rpcDuration,
		storeLoads:      storeLoads,
	}
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveRPC records one Odoo round trip. It satisfies odoo.Observer.
func (m *MetricsService) ObserveRPC(model, method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(model, method, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.rpcCount, 1)
	atomic.AddUint64(&m.rpcDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreLoad counts a list load by outcome.
func (m *MetricsService) ObserveStoreLoad(store, outcome string) {
	if m == nil {
		return
	}
	m.storeLoads.WithLabelValues(store, outcome).Inc()
	if outcome == LoadOutcomeOfflineCache || outcome == LoadOutcomeOfflineEmpty {
		atomic.AddUint64(&m.offlineLoadCount, 1)
	}
}

// Snapshot returns aggregated metrics for the diagnostics endpoint.
func (m *MetricsService) Snapshot() models.SyncMetricsSnapshot {
	if m == nil {
		return models.SyncMetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	rpcCount := atomic.LoadUint64(&m.rpcCount)
	rpcDuration := atomic.LoadUint64(&m.rpcDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgRPCMs float64
	if rpcCount > 0 {
		avgRPCMs = float64(rpcDuration) / float64(rpcCount) / float64(time.Millisecond)
	}

	return models.SyncMetricsSnapshot{
		CacheHitRatio:    cacheRatio,
		CacheHits:        hits,
		CacheMisses:      misses,
		RequestsTotal:    requests,
		AverageRequestMs: avgRequestMs,
		RPCCallsTotal:    rpcCount,
		AverageRPCMs:     avgRPCMs,
		OfflineLoads:     atomic.LoadUint64(&m.offlineLoadCount),
		Goroutines:       runtime.NumGoroutine(),
		GeneratedAt:      time.Now().UTC(),
	}
}
