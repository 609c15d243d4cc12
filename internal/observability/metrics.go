package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripboard_http_requests_total",
			Help: "Total number of HTTP requests processed by the service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripboard_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tripboard_ws_active_connections",
			Help: "Number of active change-feed websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripboard_ws_events_total",
			Help: "Total number of change-feed websocket lifecycle events.",
		},
		[]string{"event"},
	)
	changeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripboard_change_events_total",
			Help: "Total number of change-feed events published to subscribers.",
		},
		[]string{"table", "type"},
	)
	realtimeConnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripboard_realtime_connects_total",
			Help: "Total number of successful client realtime connections.",
		},
	)
	realtimeReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripboard_realtime_reconnects_total",
			Help: "Total number of scheduled client realtime reconnects.",
		},
	)
	realtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripboard_realtime_events_total",
			Help: "Total number of change-feed events delivered to client subscriptions.",
		},
		[]string{"table", "type"},
	)
	optimisticRollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripboard_optimistic_rollbacks_total",
			Help: "Total number of optimistic mutations rolled back after a failed call.",
		},
	)
	coalescedRefreshesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripboard_coalesced_refreshes_total",
			Help: "Total number of refresh triggers absorbed by debouncing.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripboard_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		changeEventsTotal,
		realtimeConnectsTotal,
		realtimeReconnectsTotal,
		realtimeEventsTotal,
		optimisticRollbacksTotal,
		coalescedRefreshesTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncChangeEvent(table, eventType string) {
	changeEventsTotal.WithLabelValues(table, eventType).Inc()
}

func IncRealtimeConnect() {
	realtimeConnectsTotal.Inc()
}

func IncRealtimeReconnect() {
	realtimeReconnectsTotal.Inc()
}

func IncRealtimeEvent(table, eventType string) {
	realtimeEventsTotal.WithLabelValues(table, eventType).Inc()
}

func IncOptimisticRollback() {
	optimisticRollbacksTotal.Inc()
}

func IncCoalescedRefresh() {
	coalescedRefreshesTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
