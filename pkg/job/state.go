package job

// State is the lifecycle state of a job record.
type State int32

const (
	// UNINITIALIZED indicates a pool slot that has not been populated
	// (typically a stale lookup, or a slot not yet allocated).
	UNINITIALIZED State = iota
	// NOT_SUBMITTED indicates a job has been created but not yet submitted.
	NOT_SUBMITTED
	// NOT_READY indicates a job has been submitted but is waiting on one or
	// more unresolved dependencies.
	NOT_READY
	// READY indicates a job has no outstanding dependencies and is
	// enqueued on exactly one queue.
	READY
	// RUNNING indicates a job's body is actively executing.
	RUNNING
	// COMPLETED indicates a job has finished execution (successfully or
	// not - result_code conveys body success/failure).
	COMPLETED
	// CANCELED indicates a job was canceled before its body began.
	CANCELED
)

func (s State) String() string {
	switch s {
	case UNINITIALIZED:
		return "UNINITIALIZED"
	case NOT_SUBMITTED:
		return "NOT_SUBMITTED"
	case NOT_READY:
		return "NOT_READY"
	case READY:
		return "READY"
	case RUNNING:
		return "RUNNING"
	case COMPLETED:
		return "COMPLETED"
	case CANCELED:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether s is a state from which a job never transitions.
func (s State) Terminal() bool {
	return s == COMPLETED || s == CANCELED
}

// SubmitType selects whether a submit runs a job normally or cancels it
// immediately.
type SubmitType int32

const (
	// Run submits the job to execute normally.
	Run SubmitType = 0
	// Cancel submits the job and immediately cancels it; the job never runs.
	Cancel SubmitType = -1
)

// SubmitResult is the outcome of a submission.
type SubmitResult int32

const (
	// Success indicates the job was submitted (or canceled) successfully.
	Success SubmitResult = 0
	// InvalidJob indicates the job identifier was invalid, or the job was
	// not in a state that could be submitted.
	InvalidJob SubmitResult = -1
	// TooManyWaiters indicates a dependency's waiter list was already at
	// capacity; the job that tried to wait on it was canceled.
	TooManyWaiters SubmitResult = -2
)

func (r SubmitResult) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case InvalidJob:
		return "INVALID_JOB"
	case TooManyWaiters:
		return "TOO_MANY_WAITERS"
	default:
		return "UNKNOWN"
	}
}

// CallType selects the mode in which the callback adapter invokes a job's
// body.
type CallType int32

const (
	// Execute runs the job's work.
	Execute CallType = 0
	// Cleanup releases resources owned by the job's body. It is invoked
	// exactly once per job, whether or not Execute ever ran.
	Cleanup CallType = 1
)

func (c CallType) String() string {
	switch c {
	case Execute:
		return "EXECUTE"
	case Cleanup:
		return "CLEANUP"
	default:
		return "UNKNOWN"
	}
}
