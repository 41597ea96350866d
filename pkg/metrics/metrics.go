// Package metrics provides Prometheus metrics for the Kitchin service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsEnqueued tracks mutations accepted by a replica
	MutationsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitchin",
			Subsystem: "replica",
			Name:      "mutations_enqueued_total",
			Help:      "Total number of mutations enqueued on a replica",
		},
		[]string{"table", "operation"},
	)

	// MutationsPushed tracks push attempts from replicas by result
	MutationsPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitchin",
			Subsystem: "replica",
			Name:      "mutations_pushed_total",
			Help:      "Total number of mutation push attempts by result",
		},
		[]string{"table", "operation", "result"},
	)

	// PendingMutations tracks mutations waiting in replica outboxes
	PendingMutations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kitchin",
			Subsystem: "replica",
			Name:      "pending_mutations",
			Help:      "Number of mutations not yet acknowledged by the server",
		},
	)

	// Refreshes tracks replica pulls by result
	Refreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitchin",
			Subsystem: "replica",
			Name:      "refreshes_total",
			Help:      "Total number of replica refreshes by result",
		},
		[]string{"result"},
	)

	// MutationsApplied tracks mutations applied by the server store
	MutationsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitchin",
			Subsystem: "sync",
			Name:      "mutations_applied_total",
			Help:      "Total number of mutations applied to the database by result",
		},
		[]string{"table", "operation", "result"},
	)

	// MutationApplyDuration tracks how long the server takes to apply a mutation
	MutationApplyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kitchin",
			Subsystem: "sync",
			Name:      "mutation_apply_duration_seconds",
			Help:      "Duration of mutation apply transactions in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"table"},
	)

	// WatchersConnected tracks open websocket change feeds
	WatchersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kitchin",
			Subsystem: "sync",
			Name:      "watchers_connected",
			Help:      "Number of connected change feed websockets",
		},
	)

	// KafkaMessagesPublished tracks change events published to Kafka
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitchin",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaMessagesConsumed tracks change events consumed from Kafka
	KafkaMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitchin",
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Total number of messages consumed from Kafka",
		},
		[]string{"topic", "status"},
	)

	// InitializationsTotal tracks default data bootstrap outcomes
	InitializationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitchin",
			Subsystem: "initialize",
			Name:      "runs_total",
			Help:      "Total number of default data initialization attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordPush records a push attempt
func RecordPush(table, operation, result string) {
	MutationsPushed.WithLabelValues(table, operation, result).Inc()
}

// RecordApplied records a server side apply and its duration
func RecordApplied(table, operation, result string, durationSeconds float64) {
	MutationsApplied.WithLabelValues(table, operation, result).Inc()
	MutationApplyDuration.WithLabelValues(table).Observe(durationSeconds)
}
