package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Arena metrics
	ArenaChunksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobkit_arena_chunks_total",
			Help: "Current number of chunks held by an arena allocator",
		},
		[]string{"arena"},
	)

	ArenaBytesAllocated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobkit_arena_bytes_allocated_total",
			Help: "Total bytes handed out by Allocate, cumulative across resets",
		},
		[]string{"arena"},
	)

	ArenaAllocationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobkit_arena_allocation_duration_seconds",
			Help:    "Time taken by a single Allocate call, including chunk growth",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Job lifecycle metrics
	JobsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobkit_jobs_created_total",
			Help: "Total number of jobs created",
		},
	)

	JobsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobkit_jobs_completed_total",
			Help: "Total number of jobs that reached COMPLETED",
		},
	)

	JobsCanceledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobkit_jobs_canceled_total",
			Help: "Total number of jobs that reached CANCELED",
		},
	)

	SubmitResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobkit_submit_results_total",
			Help: "Total number of SubmitJob calls by result",
		},
		[]string{"result"},
	)

	JobDependencyWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobkit_job_dependency_wait_duration_seconds",
			Help:    "Time a job spent NOT_READY before becoming READY",
			Buckets: prometheus.DefBuckets,
		},
	)

	JobExecuteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobkit_job_execute_duration_seconds",
			Help:    "Time spent inside a job body's EXECUTE call",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Queue metrics
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobkit_queue_depth",
			Help: "Current number of ready jobs waiting in a queue",
		},
		[]string{"queue"},
	)

	QueueSignal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobkit_queue_signal",
			Help: "Current signal value on a queue (0 = clear)",
		},
		[]string{"queue"},
	)

	WorkersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobkit_workers_total",
			Help: "Number of contexts whose default queue is the given queue",
		},
		[]string{"queue"},
	)
)

func init() {
	prometheus.MustRegister(ArenaChunksTotal)
	prometheus.MustRegister(ArenaBytesAllocated)
	prometheus.MustRegister(ArenaAllocationDuration)

	prometheus.MustRegister(JobsCreatedTotal)
	prometheus.MustRegister(JobsCompletedTotal)
	prometheus.MustRegister(JobsCanceledTotal)
	prometheus.MustRegister(SubmitResultsTotal)
	prometheus.MustRegister(JobDependencyWaitDuration)
	prometheus.MustRegister(JobExecuteDuration)

	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(QueueSignal)
	prometheus.MustRegister(WorkersTotal)
}

// Handler returns the Prometheus HTTP handler for a /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
