package job

// Adapter is the narrow, typed seam between the scheduler and a host
// application's job bodies. The scheduler invokes it once in Execute mode
// (unless the job is canceled before running) and exactly once in Cleanup
// mode over the job's lifetime. The scheduler never inspects Body.Payload;
// unpacking host-language argument tuples and invoking user code is the
// adapter's responsibility.
type Adapter func(mode CallType, payload any, id ID, ctx any) int32

// Body pairs an opaque, adapter-owned payload with the adapter that knows
// how to run and clean it up. A host embedding jobkit typically builds one
// Body per job from whatever callable representation its own front end
// uses; jobkit only ever calls Adapter.
type Body struct {
	Adapter Adapter
	Payload any
}

// noopAdapter is used for jobs created without a body - parent "spawn and
// wait" jobs that exist only to gate children, for example - the body was
// never meant to mean anything for these records.
func noopAdapter(CallType, any, ID, any) int32 { return 0 }

// IsZero reports whether b has no adapter set.
func (b Body) IsZero() bool {
	return b.Adapter == nil
}

// Call invokes the body's adapter (or a no-op if none was set) in the given
// mode. The scheduler is the only intended caller.
func (b Body) Call(mode CallType, id ID, ctx any) int32 {
	if b.Adapter == nil {
		return noopAdapter(mode, b.Payload, id, ctx)
	}
	return b.Adapter(mode, b.Payload, id, ctx)
}
