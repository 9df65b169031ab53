/*
Package sched implements the fork/join job scheduler on top of a
pkg/job.Pool: job lifecycle transitions, parent/child completion
accounting, dependency wait lists, cooperative waiting, and signal-driven
wait queues.

A Scheduler owns the job pool and three independently locked registries, a
queue table, a context table, and a table of registered workers:

	s, err := sched.New(sched.Config{JobCapacity: 1024, Name: "demo"})
	ctx := s.CreateContext(0, threadID)
	defer s.ReleaseContext(ctx)

	id := ctx.CreateJob(sched.CreateJobOptions{Body: myBody})
	ctx.SubmitJob(id, job.Run, sched.SubmitOptions{TargetQueue: 0})
	ctx.WaitForJob(id)

Workers acquire one Context each and loop on RunNextJob, or use WorkerLoop
for the signal/panic-handling run loop. Terminate (or TerminateAndWait)
signals every queue with SignalTerminate, after which RunNextJob and
WaitForJob return immediately without dequeuing further work.
*/
package sched
