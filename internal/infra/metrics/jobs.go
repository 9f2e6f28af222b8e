package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(roadmapJobTransitionsTotal, roadmapJobDurationSeconds, roadmapJobsOrphaned, roadmapJobsSubmittedTotal)
}

var (
	roadmapJobsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roadmap_jobs_submitted_total",
			Help: "Total number of roadmap jobs accepted for background generation.",
		},
	)

	roadmapJobTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_job_transitions_total",
			Help: "Roadmap job state transitions, labeled by the state entered.",
		},
		[]string{"status"}, // 'processing', 'completed', 'failed'
	)

	roadmapJobDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roadmap_job_duration_seconds",
			Help:    "Time from processing to a terminal state.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 90, 120, 300},
		},
		[]string{"status"},
	)

	roadmapJobsOrphaned = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roadmap_jobs_orphaned",
			Help: "Jobs stuck in a non-terminal state longer than the orphan threshold.",
		},
		[]string{"status"},
	)
)

func IncRoadmapJobSubmitted() {
	roadmapJobsSubmittedTotal.Inc()
}

func IncRoadmapJobTransition(status string) {
	roadmapJobTransitionsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveRoadmapJobDuration(status string, d time.Duration) {
	roadmapJobDurationSeconds.WithLabelValues(norm(status)).Observe(d.Seconds())
}

func SetRoadmapJobsOrphaned(status string, n int) {
	roadmapJobsOrphaned.WithLabelValues(norm(status)).Set(float64(n))
}
