package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every custom metric exposed by the application.
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Expense Metrics
	ExpensesCreatedTotal *prometheus.CounterVec
	ExpensesUpdatedTotal prometheus.Counter
	ExpensesDeletedTotal prometheus.Counter

	// Report Metrics
	ReportsQueuedTotal       prometheus.Counter
	ReportsProcessedTotal    *prometheus.CounterVec
	ReportProcessingDuration prometheus.Histogram

	// Cache (Redis) Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Queue (RabbitMQ) Metrics
	QueueMessagesPublished *prometheus.CounterVec
	QueueMessagesConsumed  *prometheus.CounterVec
}

// NewMetrics registers and returns a fresh Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ExpensesCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenses_created_total",
				Help: "Total number of expenses created",
			},
			[]string{"category"},
		),

		ExpensesUpdatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "expenses_updated_total",
				Help: "Total number of expenses updated",
			},
		),

		ExpensesDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "expenses_deleted_total",
				Help: "Total number of expenses deleted",
			},
		),

		ReportsQueuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reports_queued_total",
				Help: "Total number of report exports queued",
			},
		),

		ReportsProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_processed_total",
				Help: "Total number of report exports processed",
			},
			[]string{"status"},
		),

		ReportProcessingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "report_processing_duration_seconds",
				Help:    "Duration of report export processing in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),

		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),

		QueueMessagesPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_published_total",
				Help: "Total number of messages published to the queue",
			},
			[]string{"queue_name"},
		),

		QueueMessagesConsumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_consumed_total",
				Help: "Total number of messages consumed from the queue",
			},
			[]string{"queue_name"},
		),
	}
}

// GlobalMetrics is the process-wide Metrics instance.
var GlobalMetrics *Metrics

// InitMetrics initializes the global metrics.
func InitMetrics() {
	GlobalMetrics = NewMetrics()
}
