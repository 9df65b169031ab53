//go:build windows

package arena

// newVMChunk falls back to the heap backend on Windows. No example in this
// module's dependency corpus wires golang.org/x/sys/windows' VirtualAlloc,
// so the virtual-memory flavor is only implemented for the mmap-based
// platforms covered by vm_chunk_unix.go; see DESIGN.md.
func newVMChunk(size int) (*chunk, error) {
	return newHeapChunk(size, pageSizeFallback), nil
}

const pageSizeFallback = 4096
