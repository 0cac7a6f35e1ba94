package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tokenride", Name: "rides_created_total", Help: "Total rides created"})
	RidesJoined  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tokenride", Name: "rides_joined_total", Help: "Total rides joined by a rider"})

	RideTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tokenride", Name: "ride_transitions_total", Help: "Ride status transitions applied"},
		[]string{"to"},
	)

	TokensDistributed = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tokenride", Name: "tokens_distributed_total", Help: "Tokens credited from completed rides"},
		[]string{"category"},
	)
	TokensRedeemed = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tokenride", Name: "tokens_redeemed_total", Help: "Tokens burned by reward redemptions"},
		[]string{"category"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tokenride", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tokenride",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// RegisterRelayConnections exposes a live-connection gauge backed by the
// relay's own count.
func RegisterRelayConnections(count func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tokenride",
		Name:      "relay_connections",
		Help:      "Live relay connections",
	}, func() float64 { return float64(count()) })
}

// GinMiddleware records per-request counters and latency, labeled by the
// route template so path cardinality stays bounded.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
