package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pagination
	MenusActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardbot_menus_active",
			Help: "Paginated menus currently registered on this shard",
		},
	)

	MenuTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardbot_menu_transitions_total",
			Help: "Accepted navigation reactions",
		},
		[]string{"symbol"},
	)

	MenusStopped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardbot_menus_stopped_total",
			Help: "Menus removed from the registry",
		},
		[]string{"reason"}, // "stop", "timeout", "channel_deleted"
	)

	// Scheduler
	JobsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardbot_jobs_dispatched_total",
			Help: "Due jobs claimed and dispatched by this shard",
		},
		[]string{"type"},
	)

	CallsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shardbot_calls_expired_total",
			Help: "Call sessions ended for inactivity",
		},
	)

	RadioDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shardbot_radio_disconnects_total",
			Help: "Idle radio sessions torn down",
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shardbot_tick_duration_seconds",
			Help:    "Scheduler tick duration",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// Commands
	Commands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardbot_commands_total",
			Help: "Prefix commands handled",
		},
		[]string{"command", "outcome"}, // "ok", "error", "limited"
	)

	// Faults
	Faults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardbot_faults_total",
			Help: "Unhandled faults recovered at async boundaries",
		},
		[]string{"kind"}, // "reported", "suppressed"
	)
)
