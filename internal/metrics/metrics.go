package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sahay_gateway_turns_total",
			Help: "Total number of processed turns",
		},
		[]string{"channel", "intent", "outcome"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sahay_gateway_turn_duration_seconds",
			Help: "End-to-end turn processing duration in seconds",
		},
		[]string{"channel"},
	)

	ClassifierLayer = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sahay_gateway_classifier_layer_total",
			Help: "Which classifier layer produced the result",
		},
		[]string{"layer"}, // structural, keyword, llm, llm_error
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sahay_gateway_handler_duration_seconds",
			Help: "Capability handler execution duration in seconds",
		},
		[]string{"node"},
	)

	HandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sahay_gateway_handler_errors_total",
			Help: "Handler errors recovered at the node boundary",
		},
		[]string{"node"},
	)

	ContextCacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sahay_gateway_context_cache_total",
			Help: "Context cache lookups by result",
		},
		[]string{"result"}, // hit, miss, upgrade, error
	)

	PendingActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sahay_gateway_pending_actions_total",
			Help: "Pending-action store operations",
		},
		[]string{"op"}, // save, peek_hit, peek_miss, consume, error
	)

	SubgraphTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sahay_gateway_subgraph_timeouts_total",
			Help: "Nested sub-graph executions that hit the time ceiling",
		},
	)
)
