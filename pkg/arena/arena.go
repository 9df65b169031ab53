// Package arena implements a growable sequence of fixed-size chunks served
// by bump allocation, with marker-based bulk reclamation. It is the memory
// side of jobkit: coarse buffers (image pixels, tensor backing stores,
// scratch) carved out of preallocated regions and freed in bulk rather than
// individually.
package arena

import (
	"fmt"
	"os"
	"sync"

	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/metrics"
	"github.com/rs/zerolog"
)

// DefaultAlignment is the alignment, in bytes, used when Allocate is called
// without an explicit override.
const DefaultAlignment = 16

// Config configures the construction of an Allocator.
type Config struct {
	// ChunkSize is the size, in bytes, of each chunk. Must be greater than
	// Alignment.
	ChunkSize int
	// Alignment is the default alignment for allocations and must be a
	// power of two, 1 <= Alignment <= host page size. Zero defaults to
	// DefaultAlignment.
	Alignment int
	// VirtualMemory selects page-reservation backing (mmap) over a plain
	// heap allocation per chunk.
	VirtualMemory bool
	// Growable allows the allocator to acquire additional chunks once the
	// current chunk is exhausted. A non-growable allocator returns nil
	// from Allocate once its single chunk is full.
	Growable bool
	// Name and Tag are debug-only identifiers surfaced in logs and are not
	// otherwise interpreted.
	Name string
	Tag  string
}

// Marker captures an Allocator's cursor position for later rollback via
// ResetTo.
type Marker struct {
	chunkIndex int
	cursor     int
}

// Region is a handle to a single allocation: a byte-buffer view into the
// arena's backing storage. Regions become dangling once the chunk backing
// them is released by ResetTo or Reset - by contract, per spec §4.1, the
// caller must ensure no live references remain.
type Region struct {
	bytes []byte
}

// Bytes returns the allocated byte range. The returned slice is valid only
// until the allocator is rolled back past this allocation.
func (r Region) Bytes() []byte { return r.bytes }

// Allocator is a memory arena: a growable (or fixed) sequence of chunks
// served by bump allocation.
type Allocator struct {
	mu     sync.Mutex
	chunks []*chunk

	chunkSize int
	alignment int
	pageSize  int
	virtual   bool
	growable  bool
	name      string
	tag       string

	logger zerolog.Logger
}

// New constructs an Allocator per cfg, or returns ErrInvalidAlignment /
// ErrInvalidChunkSize if cfg is invalid (spec §6).
func New(cfg Config) (*Allocator, error) {
	alignment := cfg.Alignment
	if alignment == 0 {
		alignment = DefaultAlignment
	}
	pageSize := os.Getpagesize()

	if alignment < 1 || alignment&(alignment-1) != 0 || alignment > pageSize {
		return nil, ErrInvalidAlignment
	}
	if cfg.ChunkSize <= alignment {
		return nil, ErrInvalidChunkSize
	}

	a := &Allocator{
		chunkSize: cfg.ChunkSize,
		alignment: alignment,
		pageSize:  pageSize,
		virtual:   cfg.VirtualMemory,
		growable:  cfg.Growable,
		name:      cfg.Name,
		tag:       cfg.Tag,
		logger:    log.WithComponent("arena").With().Str("arena_name", cfg.Name).Logger(),
	}

	first, err := a.newChunk(a.chunkSize)
	if err != nil {
		metrics.UpdateComponent("arena", false, err.Error())
		return nil, err
	}
	a.chunks = append(a.chunks, first)
	metrics.ArenaChunksTotal.WithLabelValues(a.name).Set(1)
	metrics.UpdateComponent("arena", true, "ready")
	return a, nil
}

func (a *Allocator) newChunk(size int) (*chunk, error) {
	if a.virtual {
		return newVMChunk(size)
	}
	return newHeapChunk(size, a.alignment), nil
}

// ChunkSize returns the configured nominal chunk size.
func (a *Allocator) ChunkSize() int { return a.chunkSize }

// PageSize returns the host page size observed at construction.
func (a *Allocator) PageSize() int { return a.pageSize }

// Growable reports whether the allocator may acquire additional chunks.
func (a *Allocator) Growable() bool { return a.growable }

// Virtual reports whether the allocator is backed by page-reserved memory.
func (a *Allocator) Virtual() bool { return a.virtual }

// Name returns the allocator's debug name.
func (a *Allocator) Name() string { return a.name }

// Tag returns the allocator's debug tag.
func (a *Allocator) Tag() string { return a.tag }

// DefaultAlignment returns the alignment this allocator was constructed
// with, for callers that want to pass it explicitly to Allocate rather than
// choosing their own.
func (a *Allocator) DefaultAlignment() int { return a.alignment }

// Allocate reserves length bytes aligned to alignment and returns a Region,
// or nil if the allocation could not be satisfied (spec §4.1). alignment
// must be a power of two no greater than the host page size; callers that
// want the allocator's configured default must pass DefaultAlignment()
// explicitly. Zero, non-power-of-two, and over-page-size alignments all
// fail with ErrInvalidAlignment (spec §4.1).
func (a *Allocator) Allocate(length, alignment int) (*Region, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	if alignment < 1 || alignment&(alignment-1) != 0 || alignment > a.pageSize {
		return nil, ErrInvalidAlignment
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	last := a.chunks[len(a.chunks)-1]
	if buf, ok := last.tryAllocate(length, alignment); ok {
		metrics.ArenaBytesAllocated.WithLabelValues(a.name).Add(float64(length))
		return &Region{bytes: buf}, nil
	}

	if !a.growable {
		a.logger.Debug().Int("length", length).Msg("allocation failed: non-growable arena exhausted")
		return nil, nil
	}

	size := a.chunkSize
	if needed := alignUpInt(length, a.pageSize); needed > size {
		size = needed
	}
	next, err := a.newChunk(size)
	if err != nil {
		wrapped := fmt.Errorf("arena: growing allocator %q: %w", a.name, err)
		metrics.UpdateComponent("arena", false, wrapped.Error())
		return nil, wrapped
	}
	a.chunks = append(a.chunks, next)
	metrics.ArenaChunksTotal.WithLabelValues(a.name).Set(float64(len(a.chunks)))

	buf, ok := next.tryAllocate(length, alignment)
	if !ok {
		// A freshly sized chunk must fit the request; this would indicate
		// a bug in size computation above, not a caller error.
		return nil, fmt.Errorf("arena: newly grown chunk of %d bytes could not satisfy a %d-byte allocation", size, length)
	}
	metrics.ArenaBytesAllocated.WithLabelValues(a.name).Add(float64(length))
	return &Region{bytes: buf}, nil
}

// Mark captures the allocator's current position.
func (a *Allocator) Mark() Marker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Marker{chunkIndex: len(a.chunks) - 1, cursor: a.chunks[len(a.chunks)-1].cursor}
}

// ResetTo rolls the allocator back to m, releasing every chunk acquired
// after m was taken and rewinding the cursor within m's chunk. Any Region
// obtained after m was taken becomes dangling.
func (a *Allocator) ResetTo(m Marker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetToLocked(m)
}

func (a *Allocator) resetToLocked(m Marker) {
	for i := len(a.chunks) - 1; i > m.chunkIndex; i-- {
		a.chunks[i].free()
	}
	a.chunks = a.chunks[:m.chunkIndex+1]
	a.chunks[m.chunkIndex].cursor = m.cursor
	metrics.ArenaChunksTotal.WithLabelValues(a.name).Set(float64(len(a.chunks)))
}

// Reset releases every chunk but the first and rewinds it to empty,
// equivalent to ResetTo(marker-at-construction).
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetToLocked(Marker{chunkIndex: 0, cursor: 0})
}

func alignUpInt(n, alignment int) int {
	if alignment <= 0 {
		return n
	}
	return (n + alignment - 1) &^ (alignment - 1)
}
