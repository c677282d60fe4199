// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Border geometry
	BorderFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatglobe_border_fetches_total",
			Help: "Border geometry loads by outcome",
		},
		[]string{"result"}, // "network", "store", "error"
	)

	BorderCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threatglobe_border_cache_hits_total",
			Help: "Border loads answered from the in-memory cache",
		},
	)

	BorderSegments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threatglobe_border_segments",
			Help: "Number of cached border segments",
		},
	)

	// Live feeds
	FeedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatglobe_feed_messages_total",
			Help: "Feed messages received by source type and outcome",
		},
		[]string{"source", "result"}, // result: "ok", "invalid", "error"
	)

	FeedReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatglobe_feed_reconnects_total",
			Help: "Feed reconnect attempts by source type",
		},
		[]string{"source"},
	)

	FeedPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threatglobe_feed_points",
			Help: "Points in the latest feed snapshot",
		},
	)

	// Engine
	EnginePoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatglobe_engine_points_total",
			Help: "Points passed to engine operations",
		},
		[]string{"operation"},
	)

	// HTTP API
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threatglobe_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatglobe_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	APIRequests.WithLabelValues(method, route, code).Inc()
	APIRequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// RecordEngine counts n points handed to operation.
func RecordEngine(operation string, n int) {
	EnginePoints.WithLabelValues(operation).Add(float64(n))
}
