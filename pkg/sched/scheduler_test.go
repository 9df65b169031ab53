package sched

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runN calls RunNextJob exactly n times. Tests compute n from the known
// shape of the job graph they submitted, rather than looping until None:
// an empty, unsignaled queue blocks forever in dequeueOrWait by design
// (spec §4.4), so over-calling would hang the test.
func runN(t *testing.T, ctx *Context, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		ctx.RunNextJob()
	}
}

func countingAdapter(n *int32) job.Adapter {
	return func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
		if mode == job.Execute {
			atomic.AddInt32(n, 1)
		}
		return 0
	}
}

// TestSimpleFanOut covers scenario 1 (spec §8): parent P spawns children B
// and C, A depends on [B, C] and is also a child of P; A must execute after
// both B and C complete, and P must not complete until A does.
func TestSimpleFanOut(t *testing.T) {
	s, err := New(Config{JobCapacity: 16, Name: "t"})
	require.NoError(t, err)
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	var execB, execC, execA int32
	var bID, cID job.ID

	parentBody := job.Body{Adapter: func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
		if mode != job.Execute {
			return 0
		}
		c := ctxArg.(*Context)
		bID = c.CreateJob(CreateJobOptions{Body: countingBody(&execB), Parent: id})
		cID = c.CreateJob(CreateJobOptions{Body: countingBody(&execC), Parent: id})
		require.Equal(t, job.Success, c.SubmitJob(bID, job.Run, SubmitOptions{TargetQueue: 0}))
		require.Equal(t, job.Success, c.SubmitJob(cID, job.Run, SubmitOptions{TargetQueue: 0}))

		aID := c.CreateJob(CreateJobOptions{Body: countingBody(&execA), Parent: id})
		require.Equal(t, job.Success, c.SubmitJob(aID, job.Run, SubmitOptions{
			TargetQueue:  0,
			Dependencies: []job.ID{bID, cID},
		}))
		return 0
	}}

	p := ctx.CreateJob(CreateJobOptions{Body: parentBody})
	require.Equal(t, job.Success, ctx.SubmitJob(p, job.Run, SubmitOptions{TargetQueue: 0}))

	runN(t, ctx, 4) // p, b, c, a

	assert.Equal(t, int32(1), atomic.LoadInt32(&execB))
	assert.Equal(t, int32(1), atomic.LoadInt32(&execC))
	assert.Equal(t, int32(1), atomic.LoadInt32(&execA))
	assert.Nil(t, s.pool.Lookup(p), "parent must have reclaimed its slot after completing")
}

func countingBody(n *int32) job.Body {
	return job.Body{Adapter: countingAdapter(n)}
}

// TestDependencyCancelPropagation covers scenario 2: canceling a
// dependency does not cancel its dependent - the dependent becomes READY
// once the dependency reaches any terminal state, including CANCELED.
func TestDependencyCancelPropagation(t *testing.T) {
	s, err := New(Config{JobCapacity: 16, Name: "t"})
	require.NoError(t, err)
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	var execA int32
	b := ctx.CreateJob(CreateJobOptions{})
	require.Equal(t, job.Success, ctx.SubmitJob(b, job.Run, SubmitOptions{TargetQueue: 0}))

	a := ctx.CreateJob(CreateJobOptions{Body: countingBody(&execA)})
	require.Equal(t, job.Success, ctx.SubmitJob(a, job.Run, SubmitOptions{
		TargetQueue:  0,
		Dependencies: []job.ID{b},
	}))

	require.Equal(t, job.CANCELED, ctx.CancelJob(b))

	runN(t, ctx, 2) // stale dequeue of the already-freed b, then a

	assert.Equal(t, int32(1), atomic.LoadInt32(&execA), "A must still execute once B reaches a terminal state")
}

// TestParentCancelCascades covers scenario 3: canceling a parent flags its
// not-yet-running descendants (here C, already READY), and they reach
// terminal state without executing.
func TestParentCancelCascades(t *testing.T) {
	s, err := New(Config{JobCapacity: 16, Name: "t"})
	require.NoError(t, err)
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	var execC int32
	p := ctx.CreateJob(CreateJobOptions{})
	require.Equal(t, job.Success, ctx.SubmitJob(p, job.Run, SubmitOptions{TargetQueue: 0}))

	c := ctx.CreateJob(CreateJobOptions{Body: countingBody(&execC), Parent: p})
	require.Equal(t, job.Success, ctx.SubmitJob(c, job.Run, SubmitOptions{TargetQueue: 0}))

	require.Equal(t, job.CANCELED, ctx.CancelJob(p))

	runN(t, ctx, 2) // p (no-op, cancel-flagged), c (cancel-flagged, skips EXECUTE)

	assert.Equal(t, int32(0), atomic.LoadInt32(&execC), "canceled parent's child must not execute")
}

// TestWaiterOverflow covers scenario 4 / property P7: the (WaitersMax+1)th
// submit against a dependency returns TooManyWaiters and that job is
// canceled; the first WaitersMax submits succeed.
func TestWaiterOverflow(t *testing.T) {
	s, err := New(Config{JobCapacity: 64, Name: "t"})
	require.NoError(t, err)
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	d := ctx.CreateJob(CreateJobOptions{})
	require.Equal(t, job.Success, ctx.SubmitJob(d, job.Run, SubmitOptions{TargetQueue: 0}))

	for i := 0; i < job.WaitersMax; i++ {
		dependent := ctx.CreateJob(CreateJobOptions{})
		res := ctx.SubmitJob(dependent, job.Run, SubmitOptions{TargetQueue: 0, Dependencies: []job.ID{d}})
		require.Equal(t, job.Success, res, "dependent %d should fit under WaitersMax", i)
	}

	overflow := ctx.CreateJob(CreateJobOptions{})
	res := ctx.SubmitJob(overflow, job.Run, SubmitOptions{TargetQueue: 0, Dependencies: []job.ID{d}})
	assert.Equal(t, job.TooManyWaiters, res)
	assert.Nil(t, s.pool.Lookup(overflow), "overflowing job must have been canceled and reclaimed")
}

// TestCooperativeWait covers scenario 5: a context waiting on a job
// submitted by another thread runs other queued work while it waits.
func TestCooperativeWait(t *testing.T) {
	s, err := New(Config{JobCapacity: 16, Name: "t"})
	require.NoError(t, err)

	producer := s.CreateContext(0, 1)
	worker := s.CreateContext(0, 2)
	defer s.ReleaseContext(producer)
	defer s.ReleaseContext(worker)

	var otherRan int32
	other := producer.CreateJob(CreateJobOptions{Body: countingBody(&otherRan)})
	require.Equal(t, job.Success, producer.SubmitJob(other, job.Run, SubmitOptions{TargetQueue: 0}))

	target := producer.CreateJob(CreateJobOptions{})
	require.Equal(t, job.Success, producer.SubmitJob(target, job.Run, SubmitOptions{TargetQueue: 0}))

	done := worker.WaitForJob(target)
	assert.True(t, done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&otherRan), "worker must have run the other queued job while waiting")
}

// TestTerminateStopsDequeue covers property P6: after Terminate, no further
// dequeue returns a job and peekSignal reports TERMINATE.
func TestTerminateStopsDequeue(t *testing.T) {
	s, err := New(Config{JobCapacity: 8, Name: "t"})
	require.NoError(t, err)
	s.CreateQueue(0)
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	s.Terminate()
	assert.Equal(t, job.None, ctx.RunNextJob())
	assert.Equal(t, SignalTerminate, s.queueFor(0).peekSignal())
}

// TestTerminateAndWaitJoinsWorkers exercises the supplemented
// RegisterWorker/LaunchWorkers/TerminateAndWait lifecycle.
func TestTerminateAndWaitJoinsWorkers(t *testing.T) {
	s, err := New(Config{JobCapacity: 8, Name: "t"})
	require.NoError(t, err)

	s.RegisterWorker(1, 0)
	s.RegisterWorker(2, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	err = s.LaunchWorkers(func(ctx *Context) {
		defer wg.Done()
		WorkerLoop(ctx, WorkerLoopOptions{})
	})
	require.NoError(t, err)

	joined := s.TerminateAndWait(2 * time.Second)
	assert.True(t, joined)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker goroutines did not exit after TerminateAndWait")
	}
}

// TestCompletionFairnessInsertionOrder covers property P8: waiters of a
// completing job become READY in insertion order.
func TestCompletionFairnessInsertionOrder(t *testing.T) {
	s, err := New(Config{JobCapacity: 16, Name: "t"})
	require.NoError(t, err)
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	d := ctx.CreateJob(CreateJobOptions{})
	require.Equal(t, job.Success, ctx.SubmitJob(d, job.Run, SubmitOptions{TargetQueue: 0}))

	var order []int
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		i := i
		body := job.Body{Adapter: func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
			if mode == job.Execute {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			}
			return 0
		}}
		w := ctx.CreateJob(CreateJobOptions{Body: body})
		require.Equal(t, job.Success, ctx.SubmitJob(w, job.Run, SubmitOptions{TargetQueue: 0, Dependencies: []job.ID{d}}))
	}

	require.Equal(t, job.CANCELED, ctx.CancelJob(d))
	runN(t, ctx, 6) // stale dequeue of the already-freed d, then w0..w4 in order

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}
