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
			Name: "forum_realtime_http_requests_total",
			Help: "Total number of HTTP requests processed by the realtime service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forum_realtime_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "forum_realtime_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_realtime_ws_events_total",
			Help: "Total number of websocket events by channel and event.",
		},
		[]string{"channel", "event"},
	)
	chatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_realtime_chat_messages_total",
			Help: "Total number of chat messages persisted.",
		},
		[]string{"channel"},
	)
	presenceTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_realtime_presence_transitions_total",
			Help: "Total number of presence transitions.",
		},
		[]string{"status"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forum_realtime_amqp_publish_errors_total",
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
		chatMessagesTotal,
		presenceTransitionsTotal,
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

func IncWSEvent(channel, event string) {
	wsEventsTotal.WithLabelValues(channel, event).Inc()
}

func IncChatMessage(channel string) {
	chatMessagesTotal.WithLabelValues(channel).Inc()
}

func IncPresenceTransition(status string) {
	presenceTransitionsTotal.WithLabelValues(status).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
