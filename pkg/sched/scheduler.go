// Package sched implements the fork/join job scheduler: the job lifecycle
// state machine, parent/child completion accounting, dependency wait lists,
// cooperative wait, and signal-driven wait queues described by the job
// scheduler half of the arena+scheduler runtime.
package sched

import (
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/metrics"
	"github.com/rs/zerolog"
)

// QueueID identifies a wait queue owned by a Scheduler.
type QueueID = job.QueueID

// Config configures the construction of a Scheduler.
type Config struct {
	// JobCapacity is the fixed size of the job record pool; must be a
	// power of two (spec §4.2).
	JobCapacity int
	// Name is a debug-only identifier surfaced in logs.
	Name string
}

// Scheduler owns the job pool, a registry of queues, and a registry of
// per-thread contexts. It mirrors the original system's three independently
// locked registries (queues, threads, contexts) rather than a single global
// lock - see the scheduler.go entry in DESIGN.md.
type Scheduler struct {
	name string

	poolMu sync.Mutex
	pool   *job.Pool

	queueMu sync.RWMutex
	queues  map[QueueID]*queue

	ctxMu    sync.RWMutex
	contexts map[uint64]*Context
	nextCtx  uint64

	workersMu sync.Mutex
	workers   []*registeredWorker
	launched  bool

	logger zerolog.Logger
}

type registeredWorker struct {
	threadID uint64
	queue    QueueID
	done     chan struct{}
}

// New constructs a Scheduler with a job pool of cfg.JobCapacity slots.
func New(cfg Config) (*Scheduler, error) {
	pool, err := job.NewPool(cfg.JobCapacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCapacity, err)
	}
	s := &Scheduler{
		name:     cfg.Name,
		pool:     pool,
		queues:   make(map[QueueID]*queue),
		contexts: make(map[uint64]*Context),
		logger:   log.WithComponent("scheduler").With().Str("scheduler_name", cfg.Name).Logger(),
	}
	return s, nil
}

// CreateQueue performs an idempotent lookup-or-create of the queue
// identified by id (spec §4.5).
func (s *Scheduler) CreateQueue(id QueueID) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if _, ok := s.queues[id]; ok {
		return
	}
	s.queues[id] = newQueue(id)
	metrics.WorkersTotal.WithLabelValues(fmt.Sprint(int32(id))).Set(0)
}

func (s *Scheduler) queueFor(id QueueID) *queue {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	return s.queues[id]
}

// WorkerCountForQueue counts contexts whose current default queue equals
// id, recomputed fresh on every call (spec §9's Open Question; see
// DESIGN.md - the original always recounts rather than caching).
func (s *Scheduler) WorkerCountForQueue(id QueueID) int {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	n := 0
	for _, ctx := range s.contexts {
		if ctx.DefaultQueue() == id {
			n++
		}
	}
	return n
}

// CreateContext creates a new thread-affine Context bound to defaultQueue,
// registering it under threadID (spec §4.5's create_context).
func (s *Scheduler) CreateContext(defaultQueue QueueID, threadID uint64) *Context {
	s.CreateQueue(defaultQueue)
	ctx := &Context{
		scheduler:    s,
		threadID:     threadID,
		defaultQueue: defaultQueue,
		logger:       s.logger.With().Uint64("thread_id", threadID).Logger(),
	}

	s.ctxMu.Lock()
	s.contexts[threadID] = ctx
	s.ctxMu.Unlock()
	metrics.WorkersTotal.WithLabelValues(fmt.Sprint(int32(defaultQueue))).Set(float64(s.WorkerCountForQueue(defaultQueue)))
	return ctx
}

// ReleaseContext unregisters ctx. It does not affect any job ctx created or
// submitted - those continue through the normal lifecycle.
func (s *Scheduler) ReleaseContext(ctx *Context) {
	s.ctxMu.Lock()
	delete(s.contexts, ctx.threadID)
	s.ctxMu.Unlock()
	metrics.WorkersTotal.WithLabelValues(fmt.Sprint(int32(ctx.defaultQueue))).Set(float64(s.WorkerCountForQueue(ctx.defaultQueue)))
}

// RegisterWorker pre-registers a worker thread against a queue before it is
// launched, supplementing spec §4.5 with the original's explicit
// registration step (spec §5: "Workers are host-created threads registered
// with the scheduler before launch").
func (s *Scheduler) RegisterWorker(threadID uint64, queueID QueueID) {
	s.CreateQueue(queueID)
	s.workersMu.Lock()
	defer s.workersMu.Unlock()
	s.workers = append(s.workers, &registeredWorker{threadID: threadID, queue: queueID, done: make(chan struct{})})
}

// LaunchWorkers starts a goroutine per registered worker, each acquiring a
// context on its queue and running body until its queue signals. It may be
// called at most once.
func (s *Scheduler) LaunchWorkers(body func(ctx *Context)) error {
	s.workersMu.Lock()
	if s.launched {
		s.workersMu.Unlock()
		return ErrThreadAlreadyStarted
	}
	s.launched = true
	workers := append([]*registeredWorker(nil), s.workers...)
	s.workersMu.Unlock()

	for _, w := range workers {
		w := w
		go func() {
			defer close(w.done)
			ctx := s.CreateContext(w.queue, w.threadID)
			defer s.ReleaseContext(ctx)
			body(ctx)
		}()
	}
	metrics.UpdateComponent("scheduler", true, fmt.Sprintf("%d workers launched", len(workers)))
	return nil
}

// Terminate signals every queue with SignalTerminate (spec §4.5).
func (s *Scheduler) Terminate() {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	for _, q := range s.queues {
		q.signalValue(SignalTerminate)
	}
	s.logger.Info().Msg("scheduler terminated")
}

// TerminateAndWait signals every queue and then waits up to timeout for
// every launched worker goroutine to exit, supplementing spec §5's
// "terminate may carry an optional per-thread join timeout". A timeout of
// zero waits indefinitely.
func (s *Scheduler) TerminateAndWait(timeout time.Duration) bool {
	s.Terminate()

	s.workersMu.Lock()
	workers := append([]*registeredWorker(nil), s.workers...)
	s.workersMu.Unlock()

	deadline := time.After(timeout)
	if timeout <= 0 {
		deadline = nil
	}
	for _, w := range workers {
		select {
		case <-w.done:
		case <-deadline:
			s.logger.Warn().Uint64("thread_id", w.threadID).Msg("worker did not exit before join timeout")
			metrics.UpdateComponent("scheduler", false, fmt.Sprintf("worker %d did not exit before join timeout", w.threadID))
			return false
		}
	}
	metrics.UpdateComponent("scheduler", true, "terminated cleanly")
	return true
}
