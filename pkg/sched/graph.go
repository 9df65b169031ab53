package sched

import (
	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/metrics"
)

// submit runs the submit algorithm of spec §4.3. It takes the pool lock for
// its entire body - a submit walks at most len(dependencies)+1 records, a
// bounded amount of work (spec §5).
func (s *Scheduler) submit(id job.ID, submitType job.SubmitType, opts SubmitOptions) job.SubmitResult {
	s.poolMu.Lock()

	rec := s.pool.Lookup(id)
	if rec == nil || rec.State != job.NOT_SUBMITTED {
		s.poolMu.Unlock()
		metrics.SubmitResultsTotal.WithLabelValues(job.InvalidJob.String()).Inc()
		return job.InvalidJob
	}

	if submitType == job.Cancel {
		rec.CancelFlag = true
		rec.State = job.CANCELED
		s.completeLocked(id)
		s.poolMu.Unlock()
		metrics.SubmitResultsTotal.WithLabelValues(job.Success.String()).Inc()
		return job.Success
	}

	for _, dep := range opts.Dependencies {
		depRec := s.pool.Lookup(dep)
		if depRec == nil || depRec.State.Terminal() {
			continue
		}
		if !depRec.AddWaiter(id) {
			rec.CancelFlag = true
			rec.State = job.CANCELED
			s.completeLocked(id)
			s.poolMu.Unlock()
			metrics.SubmitResultsTotal.WithLabelValues(job.TooManyWaiters.String()).Inc()
			return job.TooManyWaiters
		}
		rec.PredecessorsRemaining++
	}

	if rec.Parent != job.None {
		parent := s.pool.Lookup(rec.Parent)
		if parent == nil || parent.State.Terminal() {
			s.poolMu.Unlock()
			metrics.SubmitResultsTotal.WithLabelValues(job.InvalidJob.String()).Inc()
			return job.InvalidJob
		}
		parent.OutstandingChildren++
	}

	rec.TargetQueue = opts.TargetQueue
	if rec.PredecessorsRemaining == 0 {
		rec.State = job.READY
		s.enqueueLocked(id, rec.TargetQueue)
	} else {
		rec.State = job.NOT_READY
	}

	metrics.JobsCreatedTotal.Inc()
	s.poolMu.Unlock()
	metrics.SubmitResultsTotal.WithLabelValues(job.Success.String()).Inc()
	return job.Success
}

// enqueueLocked enqueues id on queueID, creating the queue if it does not
// yet exist. Callers hold poolMu; queue access takes queueMu and the
// queue's own mutex, a strictly downstream lock order (poolMu -> queueMu)
// observed everywhere in this package.
func (s *Scheduler) enqueueLocked(id job.ID, queueID QueueID) {
	s.CreateQueue(queueID)
	q := s.queueFor(queueID)
	q.enqueue(id)
}

// complete runs the completion algorithm of spec §4.3 against id, taking
// the pool lock for the duration (including any parent recursion).
func (s *Scheduler) complete(id job.ID) {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()
	s.completeLocked(id)
}

// completeLocked implements spec §4.3's completion algorithm. Callers must
// hold poolMu.
func (s *Scheduler) completeLocked(id job.ID) {
	rec := s.pool.Lookup(id)
	if rec == nil {
		return
	}

	// Step 1: a parent cannot finish completing while children remain
	// outstanding. The last child's own completion re-attempts this.
	if rec.OutstandingChildren > 0 {
		return
	}

	// Step 2: transition to COMPLETED, unless already CANCELED.
	if rec.State != job.CANCELED {
		rec.State = job.COMPLETED
		metrics.JobsCompletedTotal.Inc()
	} else {
		metrics.JobsCanceledTotal.Inc()
	}

	// Step 3: release every waiter whose last dependency this was.
	waiters := append([]job.ID(nil), rec.Waiters()...)
	for _, w := range waiters {
		wRec := s.pool.Lookup(w)
		if wRec == nil || wRec.State.Terminal() {
			continue
		}
		wRec.PredecessorsRemaining--
		if wRec.PredecessorsRemaining == 0 && wRec.State == job.NOT_READY {
			wRec.State = job.READY
			s.enqueueLocked(w, wRec.TargetQueue)
		}
	}

	// Step 4: roll up to the parent.
	parent := rec.Parent
	body := rec.Body
	if parent != job.None {
		if pRec := s.pool.Lookup(parent); pRec != nil {
			pRec.OutstandingChildren--
			if pRec.OutstandingChildren == 0 && (pRec.State == job.RUNNING || pRec.State.Terminal()) {
				s.completeLocked(parent)
			}
		}
	}

	// Step 5 & 6: invoke CLEANUP, then reclaim the slot. Cleanup runs with
	// the pool lock held, matching the teacher's practice of keeping
	// critical-section bodies short - adapters must not block.
	body.Call(job.Cleanup, id, nil)
	s.pool.Free(id)
}

// cancel runs the cancel algorithm of spec §4.3.
func (s *Scheduler) cancel(id job.ID) job.State {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()

	rec := s.pool.Lookup(id)
	if rec == nil {
		return job.UNINITIALIZED
	}
	switch rec.State {
	case job.UNINITIALIZED, job.COMPLETED, job.CANCELED, job.RUNNING:
		return rec.State
	}

	s.markDescendantsCancelFlagLocked(id)

	rec.CancelFlag = true
	rec.State = job.CANCELED
	s.completeLocked(id)
	return job.CANCELED
}

// markDescendantsCancelFlagLocked sets CancelFlag on every NOT_SUBMITTED or
// NOT_READY descendant of id reachable via parent back-pointers (spec
// invariant I6), widened to also cover READY descendants not yet executed:
// scenario 3 (spec §8) submits C before canceling parent P and still
// expects C to skip EXECUTE, which requires flagging it even though
// submit already moved it to READY. A RUNNING descendant is left alone -
// its body already started and runs to completion per §5's no-preemption
// rule. Descendants still reach a terminal state through the normal
// completion path in CLEANUP mode; this only flags them so executeOnly can
// skip EXECUTE.
func (s *Scheduler) markDescendantsCancelFlagLocked(id job.ID) {
	var children []job.ID
	s.pool.Each(func(candidateID job.ID, rec *job.Record) {
		if rec.Parent != id {
			return
		}
		switch rec.State {
		case job.NOT_SUBMITTED, job.NOT_READY, job.READY:
			rec.CancelFlag = true
		}
		children = append(children, candidateID)
	})
	for _, c := range children {
		s.markDescendantsCancelFlagLocked(c)
	}
}
