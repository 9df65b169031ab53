package job

import "fmt"

// Pool is a pre-allocated table of job records addressed by stable,
// generation-checked identifiers. It implements spec's Job Record Pool
// component: allocation and recycling of slots, with stale references
// detected via a generation counter encoded in the identifier.
//
// Pool is not safe for concurrent use; callers (the scheduler) serialize
// access with their own lock, matching spec §5's "all state transitions
// require the scheduler lock."
type Pool struct {
	records  []Record
	freeList []int32
}

// NewPool allocates a pool with capacity slots. capacity must be a power of
// two and fit within MaxIndex, per spec §4.2.
func NewPool(capacity int) (*Pool, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("job: pool capacity %d must be a positive power of two", capacity)
	}
	if capacity > MaxIndex {
		return nil, fmt.Errorf("job: pool capacity %d exceeds maximum index %d", capacity, MaxIndex)
	}

	p := &Pool{
		records:  make([]Record, capacity),
		freeList: make([]int32, 0, capacity-1),
	}
	// Reserve index 0 so generation 0, index 0 (the zero ID) is never
	// allocated - it is permanently None/Invalid.
	p.records[0].generation = 1
	for i := capacity - 1; i >= 1; i-- {
		p.freeList = append(p.freeList, int32(i))
	}
	return p, nil
}

// Cap returns the number of slots in the pool.
func (p *Pool) Cap() int {
	return len(p.records)
}

// Alloc reserves a free slot and returns its identifier, or Invalid if the
// pool is exhausted (spec §7: "job pool full" -> allocation returns
// INVALID).
func (p *Pool) Alloc() ID {
	if len(p.freeList) == 0 {
		return Invalid
	}
	n := len(p.freeList) - 1
	idx := p.freeList[n]
	p.freeList = p.freeList[:n]

	rec := &p.records[idx]
	rec.reset()
	rec.State = NOT_SUBMITTED
	return makeID(int(idx), rec.generation)
}

// Lookup returns the record for id, or nil if id is stale, out of range, or
// None/Invalid (spec property P5).
func (p *Pool) Lookup(id ID) *Record {
	if id == None {
		return nil
	}
	idx := id.index()
	if idx < 0 || idx >= len(p.records) {
		return nil
	}
	rec := &p.records[idx]
	if rec.generation != id.generation() {
		return nil
	}
	return rec
}

// Each calls fn once for every currently-allocated record, in pool-index
// order, passing its live identifier. fn must not call Alloc or Free.
func (p *Pool) Each(fn func(id ID, rec *Record)) {
	for i := range p.records {
		rec := &p.records[i]
		if rec.State == UNINITIALIZED {
			continue
		}
		fn(makeID(i, rec.generation), rec)
	}
}

// Free returns id's slot to the free list, bumping its generation so the
// identifier can never again resolve via Lookup (invariant I4: callers must
// ensure state is terminal and all waiters/parent accounting are done
// before calling Free).
func (p *Pool) Free(id ID) {
	rec := p.Lookup(id)
	if rec == nil {
		return
	}
	idx := id.index()
	rec.reset()
	p.freeList = append(p.freeList, int32(idx))
}
