package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(generationJobsTotal, workerQueueRejectedTotal, dbPoolStats, archiveUploadsTotal) }

var (
	generationJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_jobs_total",
			Help: "Generation jobs finished, labeled by status.",
		},
		[]string{"status"}, // succeeded|failed
	)

	workerQueueRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_queue_rejected_total",
			Help: "Jobs refused because the worker queue was full.",
		},
	)

	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // total|idle|in_use
	)

	archiveUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_uploads_total",
			Help: "Artifact archive uploads by result.",
		},
		[]string{"result"},
	)
)

func IncGenerationJob(status string) {
	generationJobsTotal.WithLabelValues(norm(status)).Inc()
}

func IncQueueRejected() {
	workerQueueRejectedTotal.Inc()
}

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func IncArchiveUpload(result string) {
	archiveUploadsTotal.WithLabelValues(norm(result)).Inc()
}
