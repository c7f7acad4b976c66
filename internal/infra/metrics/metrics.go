package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Decisions counts routing decisions by stage (triage, turn) and route.
	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_decisions_total",
		Help: "Routing decisions by stage and route",
	}, []string{"stage", "route"})

	// ShortCircuits counts calls rejected on reputation alone.
	ShortCircuits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_reputation_short_circuits_total",
		Help: "Calls rejected by reputation without running the classifier",
	})

	// Degradations counts upstream failures that were absorbed by a fallback.
	Degradations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_degradations_total",
		Help: "Upstream failures recovered with a conservative default",
	}, []string{"dependency"})

	// ClassifierLatency tracks content classifier latency.
	ClassifierLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentinel_classifier_duration_seconds",
		Help:    "Content classifier latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"classifier"})

	// Transitions counts state machine entries by target state.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_state_transitions_total",
		Help: "Interrogation state machine transitions by target state",
	}, []string{"state"})

	// KnowledgeWrites counts knowledge store writes by category and result.
	KnowledgeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_knowledge_writes_total",
		Help: "Knowledge store writes by category and result",
	}, []string{"category", "result"})
)
