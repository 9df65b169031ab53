package sched

import (
	"strconv"
	"sync"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/metrics"
)

// Signal values for a queue's out-of-band signal slot (spec §4.4).
const (
	SignalClear     int32 = 0
	SignalTerminate int32 = 1
	SignalUser      int32 = 2
)

// queue is a blocking FIFO of ready job identifiers plus a signal slot.
// Once the signal is non-zero, dequeueOrWait returns immediately with
// (job.None, signal) for every waiter until the signal is cleared - except
// SignalTerminate, which is permanent (spec §4.4: "implementations need not
// permit clearing it").
type queue struct {
	id QueueID

	mu     sync.Mutex
	cond   *sync.Cond
	ready  []job.ID
	signal int32
}

func newQueue(id QueueID) *queue {
	q := &queue{id: id}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// enqueue appends id and wakes one sleeper.
func (q *queue) enqueue(id job.ID) {
	q.mu.Lock()
	q.ready = append(q.ready, id)
	depth := len(q.ready)
	q.mu.Unlock()
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(int(q.id))).Set(float64(depth))
	q.cond.Signal()
}

// dequeueOrWait blocks until a job is available or the signal slot is
// non-zero, in which case it returns (job.None, signal). It never busy
// waits: the caller sleeps on q.cond between wakeups.
func (q *queue) dequeueOrWait() (job.ID, int32) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.ready) == 0 {
		if q.signal != SignalClear {
			return job.None, q.signal
		}
		q.cond.Wait()
	}
	if q.signal != SignalClear {
		return job.None, q.signal
	}

	id := q.ready[0]
	q.ready = q.ready[1:]
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(int(q.id))).Set(float64(len(q.ready)))
	return id, SignalClear
}

// signalValue sets the signal slot and wakes every sleeper. SignalTerminate
// latches permanently; once set it cannot be cleared by a later call.
func (q *queue) signalValue(value int32) {
	q.mu.Lock()
	if q.signal == SignalTerminate {
		q.mu.Unlock()
		return
	}
	q.signal = value
	q.mu.Unlock()
	metrics.QueueSignal.WithLabelValues(strconv.Itoa(int(q.id))).Set(float64(value))
	q.cond.Broadcast()
}

// peekSignal returns the current signal value without blocking.
func (q *queue) peekSignal() int32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.signal
}

// flush drops all queued identifiers without affecting their state. Jobs
// discarded this way remain READY but will never be dequeued again unless
// separately canceled - intended for shutdown after SignalTerminate (spec
// §4.4).
func (q *queue) flush() {
	q.mu.Lock()
	q.ready = nil
	q.mu.Unlock()
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(int(q.id))).Set(0)
}
