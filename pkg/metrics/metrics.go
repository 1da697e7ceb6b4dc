package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Delivered counts notifications delivered per channel.
	Delivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushkit_notifications_delivered_total",
			Help: "Total number of notifications delivered, by channel",
		},
		[]string{"channel"},
	)

	// DeliveryFailures counts delivery failures per channel and kind
	// (transient or gone).
	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushkit_delivery_failures_total",
			Help: "Total number of delivery failures, by channel and failure kind",
		},
		[]string{"channel", "kind"},
	)

	// PolicyDenied counts candidate notifications dropped by the
	// preference gate, by denial reason.
	PolicyDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushkit_policy_denied_total",
			Help: "Total number of notifications dropped by the preference gate, by reason",
		},
		[]string{"reason"},
	)

	// DeadLettered counts queue items removed after exhausting retries.
	DeadLettered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pushkit_dead_lettered_total",
			Help: "Total number of queue items dead-lettered after exhausting retries",
		},
	)

	// QueueDepth tracks the current number of items in the delivery queue.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pushkit_queue_depth",
			Help: "Current number of items awaiting dispatch in the delivery queue",
		},
	)
)
