// Package job defines the job record pool and the identifiers, states, and
// callback adapter contract shared by the arena and scheduler packages.
package job

import "fmt"

// ID is an opaque identifier for a job record, packing a pool index and a
// generation counter so that stale references can be detected safely.
type ID uint64

const (
	// indexBits is the number of low bits of an ID reserved for the pool
	// index. The remaining high bits hold the generation counter.
	indexBits = 24
	indexMask = (ID(1) << indexBits) - 1
)

const (
	// None represents "no job" - for example, a job with no parent.
	None ID = 0
	// Invalid represents a failed operation that would otherwise return a
	// job ID, such as a create on an exhausted pool.
	Invalid ID = 0
)

// MaxIndex is the largest pool index representable in an ID.
const MaxIndex = int(indexMask)

func makeID(index int, generation uint32) ID {
	return ID(generation)<<indexBits | ID(index)&indexMask
}

func (id ID) index() int {
	return int(id & indexMask)
}

func (id ID) generation() uint32 {
	return uint32(id >> indexBits)
}

// Valid reports whether id is neither None nor Invalid. It does not verify
// that the job is still live; use Pool.Lookup for that.
func (id ID) Valid() bool {
	return id != None
}

func (id ID) String() string {
	if id == None {
		return "job.None"
	}
	return fmt.Sprintf("job.ID(index=%d, gen=%d)", id.index(), id.generation())
}
