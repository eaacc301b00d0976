package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notes_connections_active",
			Help: "Number of sessions currently served by a worker",
		},
	)

	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notes_connections_total",
			Help: "Total number of accepted connections",
		},
	)

	ConnectionsQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notes_connections_queued",
			Help: "Number of accepted connections waiting for a free worker",
		},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_commands_total",
			Help: "Total number of protocol commands by command and result",
		},
		[]string{"command", "result"},
	)

	CommandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notes_command_duration_seconds",
			Help:    "Duration of protocol command handling in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)

	SessionDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notes_session_duration_seconds",
			Help:    "Lifetime of client sessions in seconds",
			Buckets: []float64{0.1, 1, 5, 30, 60, 300, 900, 3600},
		},
	)

	Disconnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_disconnections_total",
			Help: "Total number of closed sessions by reason",
		},
		[]string{"reason"},
	)

	UsersRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notes_users_registered",
			Help: "Number of users known to the registry",
		},
	)
)
