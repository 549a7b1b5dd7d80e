// Package metrics defines the Prometheus collectors for the master server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry metrics
var (
	// ActiveSessions tracks the number of live sessions in the registry
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_active_sessions",
			Help: "Number of live sessions in the registry",
		},
	)

	// SessionsCreatedTotal counts session registrations
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_sessions_created_total",
			Help: "Total sessions created",
		},
	)

	// SessionsDeletedTotal counts session removals by reason
	SessionsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_sessions_deleted_total",
			Help: "Total sessions deleted by reason",
		},
		[]string{"reason"},
	)

	// PlayersJoinedTotal counts successful joins
	PlayersJoinedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_players_joined_total",
			Help: "Total players joined across all sessions",
		},
	)

	// PlayersLeftTotal counts explicit leaves (host cascade counts as a delete)
	PlayersLeftTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_players_left_total",
			Help: "Total players that left a session",
		},
	)

	// HeartbeatsTotal counts heartbeat refreshes
	HeartbeatsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_heartbeats_total",
			Help: "Total session heartbeats received",
		},
	)

	// SweepDuration tracks liveness sweep cycle latency
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweeper_cycle_duration_seconds",
			Help:    "Liveness sweep cycle duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// SweepFaultsTotal counts per-session faults isolated during a sweep
	SweepFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_faults_total",
			Help: "Per-session faults recovered during liveness sweeps",
		},
	)
)

// Broadcast hub metrics
var (
	// ConnectedSubscribers tracks currently connected real-time subscribers
	ConnectedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_subscribers",
			Help: "Number of connected real-time subscribers",
		},
	)

	// SlowSubscribersEvicted counts subscribers dropped for full send buffers
	SlowSubscribersEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_subscribers_evicted_total",
			Help: "Total subscribers evicted due to full send buffers",
		},
	)

	// EventsPublishedTotal counts events fanned out by type
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_events_published_total",
			Help: "Total events published to subscribers by type",
		},
		[]string{"type"},
	)

	// WebSocketSendDuration tracks subscriber write latency
	WebSocketSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_websocket_send_duration_seconds",
			Help:    "WebSocket message send duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// WebSocketPingFailures counts failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_websocket_ping_failures_total",
			Help: "Total failed WebSocket keepalive pings",
		},
	)
)

// HTTP metrics
var (
	// HTTPErrorsTotal tracks HTTP errors by type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)
)
