package metrics

import "github.com/prometheus/client_golang/prometheus"

// Embedding generation queue metrics.
var (
	GenerationJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbsearch",
			Name:      "generation_jobs_total",
			Help:      "Embedding generation jobs by outcome",
		},
		[]string{"outcome"}, // enqueued, dropped, completed, failed
	)

	GenerationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kbsearch",
			Name:      "generation_queue_depth",
			Help:      "Embedding generation jobs waiting in the queue",
		},
	)

	GenerationJobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kbsearch",
			Name:      "generation_job_duration_seconds",
			Help:      "Embedding generation job duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var genMetricsRegistered bool

// RegisterGeneratorMetrics registers generation queue metrics. Must be called once from main.
func RegisterGeneratorMetrics() {
	if genMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationJobsTotal)
	prometheus.MustRegister(GenerationQueueDepth)
	prometheus.MustRegister(GenerationJobDuration)
	genMetricsRegistered = true
}
