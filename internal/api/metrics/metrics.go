// Package metrics defines and registers all custom Prometheus metrics for the
// rental storefront. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto and exposed by the ops router at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Backend client metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts requests issued to the rental backend.
// Labels:
//   - method: HTTP method
//   - status: HTTP status code, or "network_error" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the rental backend.",
	},
	[]string{"method", "status"},
)

// BackendRequestDuration measures round-trip latency to the backend.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the rental backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// BackendRetriesTotal counts retry attempts made by the retry helper.
var BackendRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_retries_total",
		Help:      "Total number of retried idempotent backend calls.",
	},
)

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session store transitions.
// Label:
//   - transition: "login", "logout", "restore_ok", "restore_failed", "expired"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session store transitions, by kind.",
	},
	[]string{"transition"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - outcome: "allow", "wait", "redirect", "deny"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Booking metrics ──────────────────────────────────────────────────────────

// BookingValidationFailuresTotal counts bookings rejected before any network call.
var BookingValidationFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_validation_failures_total",
		Help:      "Total number of booking requests rejected by client-side validation.",
	},
)
