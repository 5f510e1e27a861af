// Package metrics defines and registers all custom Prometheus metrics for the
// roster bot. It is the single source of truth for metric names, labels, and
// help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roster"

// UpdatesProcessedTotal counts inbound chat updates that completed routing.
// Labels:
//   - kind: update shape ("command", "text", "image", "callback")
//   - result: "ok" or "error"
var UpdatesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_processed_total",
		Help:      "Total number of chat updates processed, by kind and result.",
	},
	[]string{"kind", "result"},
)

// RateLimitDeniedTotal counts updates rejected by the per-actor rate limiter
// before any handler logic ran.
var RateLimitDeniedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_denied_total",
		Help:      "Total number of chat updates denied by the rate limiter.",
	},
)

// UpdatesDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (redelivery, skipped) or "miss" (new update, processed)
var UpdatesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_dedup_total",
		Help:      "Total number of update deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration flow outcomes.
// Label:
//   - outcome: "submitted", "approved", or "rejected"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of membership applications, by outcome.",
	},
	[]string{"outcome"},
)

// ExclusionsTotal counts members removed from the roster.
var ExclusionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exclusions_total",
		Help:      "Total number of members excluded from the roster.",
	},
)

// UpdatesQueueDepth tracks the current number of updates waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var UpdatesQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "updates_queue_depth",
		Help:      "Current number of updates pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// UpdateProcessingDuration measures how long a single update takes from
// dequeue to reply.
// Label:
//   - kind: update shape ("command", "text", "image", "callback")
var UpdateProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "update_processing_duration_seconds",
		Help:      "Duration of update processing from dequeue to reply.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
