package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_messages_created_total",
			Help: "Messages persisted, by container kind.",
		},
		[]string{"container_kind"},
	)

	SequenceConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_sequence_conflicts_total",
			Help: "Sequence allocations that hit the unique constraint and were retried.",
		},
	)

	SequenceExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_sequence_exhausted_total",
			Help: "Sends that failed after exhausting the sequence retry budget.",
		},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_rate_limited_total",
			Help: "Sends rejected by the per-user rate limit.",
		},
	)

	SocketEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_socket_events_total",
			Help: "Inbound socket events by name and outcome.",
		},
		[]string{"event", "outcome"},
	)

	ConnectedSockets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_connected_sockets",
			Help: "Currently registered websocket clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(MessagesCreated, SequenceConflicts, SequenceExhausted, RateLimited, SocketEvents, ConnectedSockets)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
