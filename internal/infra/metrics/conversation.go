package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(stateTransitionsTotal, sessionsExpiredTotal) }

var (
	stateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_transitions_total",
			Help: "Session state changes.",
		},
		[]string{"from", "to"},
	)

	sessionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conversation_sessions_expired_total",
			Help: "Idle sessions dropped by the sweeper.",
		},
	)
)

func IncTransition(from, to string) {
	if from == to {
		return
	}
	stateTransitionsTotal.WithLabelValues(norm(from), norm(to)).Inc()
}

func AddSessionsExpired(n int) {
	sessionsExpiredTotal.Add(float64(n))
}
