package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gamelens/internal/structures"
)

const (
	CacheLayerResponse = "response"
	CacheLayerData     = "data"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(layer string)
	IncCacheMisses(layer string)
	IncCacheStale(source string)
	IncRefreshFailures(source string)
	IncCacheOverflow(layer string)
	IncProviderErrors(source, kind string)
	SetBreakerState(source string, state int)
	ObservePersistenceDuration(duration time.Duration)
	SetRecordsTotal(kind string, count int)
	SetActiveSessions(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	cacheStale          *prometheus.CounterVec
	refreshFailures     *prometheus.CounterVec
	cacheOverflow       *prometheus.CounterVec
	providerErrors      *prometheus.CounterVec
	breakerState        *prometheus.GaugeVec
	persistenceDuration prometheus.Histogram
	recordsTotal        *prometheus.GaugeVec
	activeSessions      prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(layer string) {
	m.cacheHits.WithLabelValues(layer).Inc()
}

func (m *MetricsProvider) IncCacheMisses(layer string) {
	m.cacheMisses.WithLabelValues(layer).Inc()
}

func (m *MetricsProvider) IncCacheStale(source string) {
	m.cacheStale.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) IncRefreshFailures(source string) {
	m.refreshFailures.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) IncCacheOverflow(layer string) {
	m.cacheOverflow.WithLabelValues(layer).Inc()
}

func (m *MetricsProvider) IncProviderErrors(source, kind string) {
	m.providerErrors.WithLabelValues(source, kind).Inc()
}

func (m *MetricsProvider) SetBreakerState(source string, state int) {
	m.breakerState.WithLabelValues(source).Set(float64(state))
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetRecordsTotal(kind string, count int) {
	m.recordsTotal.WithLabelValues(kind).Set(float64(count))
}

func (m *MetricsProvider) SetActiveSessions(count int) {
	m.activeSessions.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelens_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamelens_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelens_cache_hits_total",
			Help: "Total number of cache hits",
		}, []string{"layer"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelens_cache_misses_total",
			Help: "Total number of cache misses",
		}, []string{"layer"}),

		cacheStale: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelens_cache_stale_served_total",
			Help: "Stale cache entries served while a refresh ran in the background",
		}, []string{"source"}),

		refreshFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelens_cache_refresh_failures_total",
			Help: "Background cache refreshes that failed",
		}, []string{"source"}),

		cacheOverflow: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelens_cache_overflow_total",
			Help: "Cache writes too large for the bounded segment",
		}, []string{"layer"}),

		providerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelens_provider_errors_total",
			Help: "Provider errors by source and kind",
		}, []string{"source", "kind"}),

		breakerState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gamelens_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		}, []string{"source"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gamelens_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		recordsTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gamelens_records_total",
			Help: "Number of library records by kind",
		}, []string{"kind"}),

		activeSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gamelens_active_sessions",
			Help: "Play sessions currently open",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) IncCacheStale(_ string)                           {}
func (n *noopMetrics) IncRefreshFailures(_ string)                      {}
func (n *noopMetrics) IncCacheOverflow(_ string)                        {}
func (n *noopMetrics) IncProviderErrors(_, _ string)                    {}
func (n *noopMetrics) SetBreakerState(_ string, _ int)                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetRecordsTotal(_ string, _ int)                  {}
func (n *noopMetrics) SetActiveSessions(_ int)                          {}
