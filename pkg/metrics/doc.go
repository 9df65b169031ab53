/*
Package metrics provides Prometheus metrics collection and exposition for
jobkit, plus a small health/readiness checker used by the demo CLI's
serve-metrics command.

Metrics are package-level prometheus.Collector values registered at init
time, so importing pkg/metrics is enough to have them picked up by
Handler():

	http.Handle("/metrics", metrics.Handler())

Arena metrics (ArenaChunksTotal, ArenaBytesAllocated) are updated inline
by pkg/arena at the call site of Allocate, ResetTo, and Reset - there is
no background poller, since an arena has no steady-state to sample between
calls.

Job and queue metrics (JobsCreatedTotal, JobsCompletedTotal,
JobsCanceledTotal, SubmitResultsTotal, JobExecuteDuration, QueueDepth,
QueueSignal, WorkersTotal) are updated by pkg/sched at job creation,
submission, completion, and cancellation, and whenever a queue's depth or
signal value changes.

ArenaAllocationDuration and JobDependencyWaitDuration are registered, but
neither pkg/arena nor pkg/sched observes them.

The Timer helper times an operation and reports it to either a plain
Histogram or a HistogramVec:

	t := metrics.NewTimer()
	defer t.ObserveDuration(metrics.JobExecuteDuration)

The health checker (RegisterComponent, UpdateComponent, GetHealth,
GetReadiness) tracks the "arena" and "scheduler" components; GetReadiness
reports "ready" only while both are registered and their latest report is
healthy, and "not_ready" otherwise. HealthHandler, ReadyHandler, and
LivenessHandler adapt these to the /health, /ready, and /live HTTP
endpoints that serve-metrics exposes.
*/
package metrics
