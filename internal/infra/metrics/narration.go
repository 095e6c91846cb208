package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(narrationLatency, narrationBytes, narrationSkipped) }

var (
	narrationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "narration_latency_seconds",
			Help:    "Text-to-speech latency for a whole passage.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		},
		[]string{"provider", "success"},
	)

	narrationBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narration_bytes_total",
			Help: "Audio bytes produced.",
		},
		[]string{"provider"},
	)

	narrationSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narration_skipped_total",
			Help: "Passages delivered without audio, by reason.",
		},
		[]string{"reason"}, // level|error
	)
)

func ObserveNarration(provider string, bytes int, latency time.Duration, success bool) {
	narrationLatency.WithLabelValues(norm(provider), strconv.FormatBool(success)).Observe(latency.Seconds())
	if success {
		narrationBytes.WithLabelValues(norm(provider)).Add(float64(bytes))
	}
}

func IncNarrationSkipped(reason string) {
	narrationSkipped.WithLabelValues(norm(reason)).Inc()
}
