package arena

// newHeapChunk allocates a chunk backed by the Go heap, used when the
// allocator is configured without virtual_memory, or as the portable
// fallback where a host page-reservation backend is unavailable.
//
// alignment extra bytes are reserved beyond size so that tryAllocate can
// always find an aligned start within buf, regardless of where the Go
// runtime happens to place the underlying array.
func newHeapChunk(size, alignment int) *chunk {
	buf := make([]byte, size+alignment)
	return newChunkBase(buf, nil, false)
}
