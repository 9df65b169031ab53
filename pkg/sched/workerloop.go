package sched

import (
	"github.com/cuemby/jobkit/pkg/job"
)

// WorkerLoopOptions configures WorkerLoop's handling of queue signals and
// body panics, supplementing spec §4.5/§7's worker-thread lifecycle with
// the original system's overridable _handle_signal/_handle_exception
// hooks.
type WorkerLoopOptions struct {
	// OnSignal is called when the context's default queue returns a
	// non-clear signal from RunNextJob. Returning true continues the loop
	// (only sensible for user-defined signals above SignalTerminate);
	// returning false exits the loop. A nil OnSignal always exits.
	OnSignal func(signal int32) bool
	// OnPanic is called if a job body panics during Execute. Returning
	// true resumes the loop for the next job; returning false exits.
	// A nil OnPanic re-panics.
	OnPanic func(recovered any) (restart bool)
}

// WorkerLoop runs ctx.RunNextJob in a loop until the queue signals and
// OnSignal declines to continue, matching the original's JobSystemThread
// run loop. It recovers panics from job bodies via OnPanic so one bad body
// does not take down the worker goroutine. It reports no exit code or exit
// message; when it runs under LaunchWorkers, the worker's context is
// released once the loop returns.
func WorkerLoop(ctx *Context, opts WorkerLoopOptions) {
	q := ctx.scheduler.queueFor(ctx.defaultQueue)
	for {
		if q != nil {
			if signal := q.peekSignal(); signal != SignalClear {
				if opts.OnSignal == nil || !opts.OnSignal(signal) {
					return
				}
			}
		}

		if !runNextJobGuarded(ctx, opts) {
			return
		}
	}
}

// runNextJobGuarded runs one job via ctx.RunNextJob with opts.OnPanic
// recovering any panic raised by the job's body. It returns false when the
// loop should stop: the queue signaled with no continuation, or a panic's
// handler declined to restart.
func runNextJobGuarded(ctx *Context, opts WorkerLoopOptions) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			if opts.OnPanic == nil {
				panic(r)
			}
			cont = opts.OnPanic(r)
		}
	}()

	id := ctx.RunNextJob()
	if id == job.None {
		if q := ctx.scheduler.queueFor(ctx.defaultQueue); q != nil {
			signal := q.peekSignal()
			if opts.OnSignal != nil {
				return opts.OnSignal(signal)
			}
		}
		return false
	}
	return true
}
