package sched

import "errors"

// Construction and registration errors, reported synchronously at the
// boundary (spec §7).
var (
	// ErrInvalidCapacity is returned when a Scheduler is constructed with
	// a non-positive or non-power-of-two job capacity.
	ErrInvalidCapacity = errors.New("sched: job pool capacity must be a positive power of two")
	// ErrThreadAlreadyStarted is returned by LaunchWorkers if called more
	// than once on the same Scheduler.
	ErrThreadAlreadyStarted = errors.New("sched: workers already launched")
	// ErrNilQueue describes a queue identifier that has never been created
	// via CreateQueue. No function in this package returns it: operations
	// on an unknown queue return job.None or false instead.
	ErrNilQueue = errors.New("sched: unknown queue id")
	// ErrUnknownContext describes a context handle that was never created
	// via CreateContext, or already released. No function in this package
	// returns it.
	ErrUnknownContext = errors.New("sched: unknown or released context")
)
