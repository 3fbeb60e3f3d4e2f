// Package metrics holds the process-wide Prometheus instruments. Side-effect
// failures are fire-and-forget by design, so the counters are the only place
// they stay visible.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngressEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_ingress_events_total",
		Help: "Events accepted at an ingress boundary, by backend.",
	}, []string{"backend"})

	IngressDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_ingress_dropped_total",
		Help: "Messages dropped at an ingress boundary, by backend.",
	}, []string{"backend"})

	RoutedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_routed_events_total",
		Help: "Events handed to the transport layer by the router.",
	})

	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_side_effect_failures_total",
		Help: "Failed fire-and-forget side effects, by effect (push, webhook, telemetry).",
	}, []string{"effect"})

	PushTokenFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_push_token_failures_total",
		Help: "Per-recipient failures reported by the push provider.",
	})

	TelemetryFlushedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_telemetry_flushed_records_total",
		Help: "Telemetry records handed to the bulk sink.",
	})
)
