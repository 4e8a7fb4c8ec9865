package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Tracking metrics
	PingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_pings_total",
			Help: "Location pings by outcome (accepted, invalid, stale)",
		},
		[]string{"outcome"},
	)

	PingIngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "location_ping_ingest_duration_seconds",
			Help:    "Time spent validating, storing and evaluating a ping",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	ActiveDriversGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_drivers",
			Help: "Drivers with a live position inside the active TTL",
		},
	)

	// Alert metrics
	AlertsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_raised_total",
			Help: "Alerts created by type and severity",
		},
		[]string{"type", "severity"},
	)

	AlertsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_suppressed_total",
			Help: "Rule trips folded into an existing open alert",
		},
		[]string{"type"},
	)

	AlertsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_resolved_total",
			Help: "Alerts resolved, by who resolved them (user, system)",
		},
		[]string{"by"},
	)

	// Delivery metrics
	DeliveryTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Delivery transition attempts by action and result",
		},
		[]string{"action", "result"},
	)

	// Pipeline metrics
	PipelineDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_dropped_total",
			Help: "Events dropped because a pipeline channel was full",
		},
		[]string{"channel"},
	)

	PipelineBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_batch_size",
			Help:    "Items per pipeline batch flush",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
		},
		[]string{"writer"},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"hub"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"routing_key", "status"},
	)

	RabbitMQMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_consumed_total",
			Help: "Total number of messages consumed from RabbitMQ",
		},
		[]string{"queue", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(operation string, err error, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(operation, status(err)).Inc()
	DatabaseQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(routingKey string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(routingKey, status(err)).Inc()
}

// RecordRabbitMQConsume records RabbitMQ consume metrics
func RecordRabbitMQConsume(queue string, err error) {
	RabbitMQMessagesConsumed.WithLabelValues(queue, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
