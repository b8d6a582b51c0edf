package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level collectors registered with the default registry; the
// server exposes them on /metrics.
var (
	RoundsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gameshow",
		Name:      "rounds_started_total",
		Help:      "Rounds started, labeled by game type.",
	}, []string{"game_type"})

	SubmissionsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gameshow",
		Name:      "submissions_received_total",
		Help:      "Answer submissions accepted by the engine.",
	})

	EliminationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gameshow",
		Name:      "eliminations_total",
		Help:      "Players eliminated across all instances.",
	})

	InstancesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gameshow",
		Name:      "instances_active",
		Help:      "Game instances currently registered.",
	})

	InstancesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gameshow",
		Name:      "instances_finished_total",
		Help:      "Game instances that reached their outro.",
	})

	WaitlistDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gameshow",
		Name:      "waitlist_depth",
		Help:      "Players currently waiting for an instance.",
	})

	OracleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gameshow",
		Name:      "oracle_failures_total",
		Help:      "Free-text judge calls that errored or timed out.",
	})
)
