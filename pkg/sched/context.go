package sched

import (
	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/metrics"
	"github.com/rs/zerolog"
)

// Context is a thread-affine handle through which a single thread creates,
// submits, cancels, completes, and waits for jobs (spec §4.6). A Context
// must not be shared across goroutines; each worker goroutine owns exactly
// one.
type Context struct {
	scheduler    *Scheduler
	threadID     uint64
	defaultQueue QueueID
	logger       zerolog.Logger

	// depScratch is per-context scratch space for staging dependency lists.
	// SubmitJob does not use it; it reads dependencies directly from
	// SubmitOptions.
	depScratch []job.ID
}

// DefaultQueue returns the queue this context's RunNextJob and WaitForJob
// operate against.
func (c *Context) DefaultQueue() QueueID { return c.defaultQueue }

// ThreadID returns the host thread identifier this context is bound to.
func (c *Context) ThreadID() uint64 { return c.threadID }

// CreateJobOptions configures a new job at creation time.
type CreateJobOptions struct {
	// Body is invoked by the scheduler in Execute mode (if the job runs)
	// and exactly once in Cleanup mode. A zero Body is valid for
	// spawn-and-wait parents that exist only to gate children.
	Body job.Body
	// Parent is the job's parent, or job.None for a top-level job.
	Parent job.ID
}

// CreateJob allocates a new job record in NOT_SUBMITTED state (spec
// §4.6's create_job). The job is not visible to any queue or dependency
// until SubmitJob is called.
func (c *Context) CreateJob(opts CreateJobOptions) job.ID {
	s := c.scheduler
	s.poolMu.Lock()
	defer s.poolMu.Unlock()

	id := s.pool.Alloc()
	if !id.Valid() {
		return job.Invalid
	}
	rec := s.pool.Lookup(id)
	rec.Body = opts.Body
	rec.Parent = opts.Parent
	return id
}

// SubmitOptions carries the arguments to SubmitJob beyond the job and
// submit type.
type SubmitOptions struct {
	// TargetQueue is the queue the job is enqueued on once READY. Ignored
	// for SubmitType Cancel.
	TargetQueue QueueID
	// Dependencies lists jobs that must reach a terminal state before this
	// job becomes READY.
	Dependencies []job.ID
}

// SubmitJob runs the submit algorithm of spec §4.3 against id.
func (c *Context) SubmitJob(id job.ID, submitType job.SubmitType, opts SubmitOptions) job.SubmitResult {
	return c.scheduler.submit(id, submitType, opts)
}

// CancelJob runs the cancel algorithm of spec §4.3 against id.
func (c *Context) CancelJob(id job.ID) job.State {
	return c.scheduler.cancel(id)
}

// CompleteJob runs the completion algorithm of spec §4.3 against id. It is
// used directly after RunNextJobWithoutCompletion, once the caller's
// external event has finished finalizing the job's work.
func (c *Context) CompleteJob(id job.ID) {
	c.scheduler.complete(id)
}

// WaitForJob cooperatively waits for id to reach a terminal state. While
// waiting, the calling thread runs other ready jobs from its default queue
// rather than blocking idle (spec §4.6, §9 "Busy-waiting on completion").
//
// WaitForJob must never be called from the sole worker thread consuming a
// queue that only other workers feed: if every worker downstream is itself
// blocked in WaitForJob, no thread remains to advance the dependency chain
// and the call livelocks (spec §9 "Deadlock hazard"). The contract forbids
// this call pattern; it is not detected at runtime.
//
// Returns true once id is terminal, false if this context's default queue
// becomes signaled before id terminates.
func (c *Context) WaitForJob(id job.ID) bool {
	s := c.scheduler
	for {
		s.poolMu.Lock()
		rec := s.pool.Lookup(id)
		terminal := rec == nil || rec.State.Terminal()
		s.poolMu.Unlock()
		if terminal {
			return true
		}

		q := s.queueFor(c.defaultQueue)
		if q == nil {
			return false
		}
		next, signal := q.dequeueOrWait()
		if signal != SignalClear {
			return false
		}
		c.runJob(next)
	}
}

// RunNextJob blocks on the context's default queue; when a job arrives, it
// invokes the job's body in Execute mode, stores the result code, and
// completes the job. It returns job.None if the queue signals instead.
func (c *Context) RunNextJob() job.ID {
	q := c.scheduler.queueFor(c.defaultQueue)
	if q == nil {
		return job.None
	}
	id, signal := q.dequeueOrWait()
	if signal != SignalClear {
		return job.None
	}
	c.runJob(id)
	return id
}

// RunNextJobWithoutCompletion is identical to RunNextJob except it does not
// call complete for the job it runs; the caller must call CompleteJob once
// an external event finalizes the work (spec §4.6).
func (c *Context) RunNextJobWithoutCompletion() job.ID {
	q := c.scheduler.queueFor(c.defaultQueue)
	if q == nil {
		return job.None
	}
	id, signal := q.dequeueOrWait()
	if signal != SignalClear {
		return job.None
	}
	c.executeOnly(id)
	return id
}

// runJob executes id's body (unless canceled) and completes it.
func (c *Context) runJob(id job.ID) {
	c.executeOnly(id)
	c.scheduler.complete(id)
}

// executeOnly invokes id's body in Execute mode and stores its result code,
// without running the completion algorithm.
func (c *Context) executeOnly(id job.ID) {
	s := c.scheduler

	s.poolMu.Lock()
	rec := s.pool.Lookup(id)
	if rec == nil {
		s.poolMu.Unlock()
		return
	}
	canceled := rec.CancelFlag
	body := rec.Body
	if !canceled {
		rec.State = job.RUNNING
	}
	s.poolMu.Unlock()

	if canceled {
		return
	}

	timer := metrics.NewTimer()
	result := body.Call(job.Execute, id, c)
	timer.ObserveDuration(metrics.JobExecuteDuration)

	s.poolMu.Lock()
	if rec := s.pool.Lookup(id); rec != nil {
		rec.ResultCode = result
	}
	s.poolMu.Unlock()
}
