package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fakeam_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fakeam_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Store metrics
	StoreAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fakeam_store_alerts",
			Help: "Current number of alerts in the store",
		},
	)

	StoreSilences = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fakeam_store_silences",
			Help: "Current number of silences in the store",
		},
	)

	StoreGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fakeam_store_groups",
			Help: "Current number of derived alert groups",
		},
	)

	AlertsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_alerts_created_total",
			Help: "Total number of alerts added to the store",
		},
	)

	AlertsResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_alerts_resolved_total",
			Help: "Total number of alerts resolved",
		},
	)

	AlertsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_alerts_deleted_total",
			Help: "Total number of alerts removed from the store",
		},
	)

	SilencesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_silences_created_total",
			Help: "Total number of silences created",
		},
	)

	SilencesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_silences_deleted_total",
			Help: "Total number of silences deleted",
		},
	)

	SilencesExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_silences_expired_total",
			Help: "Total number of silences expired by the lifecycle tracker",
		},
	)

	// Tick metrics
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_ticks_total",
			Help: "Total number of store ticks",
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fakeam_tick_duration_seconds",
			Help:    "Time taken by a full store tick",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// Generator metrics
	GeneratedAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fakeam_generated_alerts_total",
			Help: "Total number of synthetic alerts generated",
		},
		[]string{"alertname", "severity"},
	)

	// Event stream metrics
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fakeam_events_emitted_total",
			Help: "Total number of lifecycle events emitted by the store",
		},
		[]string{"type"},
	)

	EventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_events_dropped_total",
			Help: "Total number of lifecycle events dropped on a full channel",
		},
	)

	// Worker metrics
	WorkerQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fakeam_worker_queue_size",
			Help: "Current size of the event worker queue",
		},
	)

	WorkerQueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fakeam_worker_queue_capacity",
			Help: "Capacity of the event worker queue",
		},
	)

	WorkerProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_worker_processed_total",
			Help: "Total number of events published by workers",
		},
	)

	WorkerFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_worker_failed_total",
			Help: "Total number of events failed in workers",
		},
	)

	WorkerBatchPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fakeam_worker_batch_publish_duration_seconds",
			Help:    "Time taken to publish an event batch",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Kafka producer metrics
	KafkaPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fakeam_kafka_publish_total",
			Help: "Total number of messages published to Kafka",
		},
		[]string{"status"}, // status: success, failed
	)

	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fakeam_kafka_publish_duration_seconds",
			Help:    "Time taken to publish to Kafka",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	KafkaPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_kafka_publish_retries_total",
			Help: "Total number of Kafka publish retries",
		},
	)

	KafkaBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fakeam_kafka_bytes_written_total",
			Help: "Total bytes written to Kafka",
		},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fakeam_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
