package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		generationTokens,
		generationLatency,
		generationBreakerState,
		generationWordsUsed,
	)
}

var (
	generationTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tokens_total",
			Help: "Tokens spent on passage generation, by provider, model and direction.",
		},
		[]string{"provider", "model", "direction"}, // direction: prompt|completion
	)

	generationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_latency_seconds",
			Help:    "Passage generation call latency.",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60, 90},
		},
		[]string{"provider", "success"},
	)

	generationBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "generation_breaker_state",
			Help: "Circuit breaker state per provider: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"provider"},
	)

	generationWordsUsed = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_words_used",
			Help:    "Vocabulary words highlighted per delivered passage.",
			Buckets: []float64{0, 1, 3, 5, 10, 15, 20, 30},
		},
		[]string{"level"},
	)
)

func ObserveGeneration(provider, model string, promptTokens, completionTokens int, latency time.Duration, success bool) {
	generationTokens.WithLabelValues(norm(provider), norm(model), "prompt").Add(float64(promptTokens))
	generationTokens.WithLabelValues(norm(provider), norm(model), "completion").Add(float64(completionTokens))
	generationLatency.WithLabelValues(norm(provider), strconv.FormatBool(success)).Observe(latency.Seconds())
}

func SetBreakerState(provider string, state int) {
	generationBreakerState.WithLabelValues(norm(provider)).Set(float64(state))
}

func ObserveWordsUsed(level string, n int) {
	generationWordsUsed.WithLabelValues(norm(level)).Observe(float64(n))
}
