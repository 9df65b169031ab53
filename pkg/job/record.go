package job

// WaitersMax bounds the number of jobs that may wait on a single job's
// completion. Submitting a dependent job against a dependency whose waiter
// list is already full fails with TooManyWaiters (spec invariant I5).
const WaitersMax = 32

// QueueID identifies a wait queue owned by a scheduler.
type QueueID int32

// Record is a single job's state. Records live in a Pool slot addressed by
// an ID; all graph edges (parent, waiters) are IDs, never pointers, so the
// pool remains the sole owner of job memory (see invariant I4).
type Record struct {
	State State

	Parent                ID
	OutstandingChildren   int32
	PredecessorsRemaining int32

	waiters     [WaitersMax]ID
	waiterCount int32

	TargetQueue QueueID
	Body        Body

	CancelFlag bool
	ResultCode int32

	generation uint32
}

// reset clears a record for reuse, bumping its generation so that any ID
// minted before this reset now fails Pool.Lookup.
func (r *Record) reset() {
	r.State = UNINITIALIZED
	r.Parent = None
	r.OutstandingChildren = 0
	r.PredecessorsRemaining = 0
	r.waiterCount = 0
	for i := range r.waiters {
		r.waiters[i] = None
	}
	r.TargetQueue = 0
	r.Body = Body{}
	r.CancelFlag = false
	r.ResultCode = 0
	r.generation++
}

// Waiters returns the jobs currently waiting on this record's completion, in
// insertion order. The returned slice aliases internal storage and must not
// be retained past the caller's use of the pool lock.
func (r *Record) Waiters() []ID {
	return r.waiters[:r.waiterCount]
}

// AddWaiter appends w to the waiter list. It reports false if the list is
// already at WaitersMax capacity (invariant I5). Callers (the scheduler)
// must hold whatever lock serializes access to r.
func (r *Record) AddWaiter(w ID) bool {
	if int(r.waiterCount) >= WaitersMax {
		return false
	}
	r.waiters[r.waiterCount] = w
	r.waiterCount++
	return true
}
