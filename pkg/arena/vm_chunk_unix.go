//go:build !windows

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// newVMChunk reserves and commits a page-aligned region via mmap, the
// "virtual-memory arena (per-chunk page-reserved region, commit as
// needed)" flavor named in spec §4.1. mmap'd regions are always aligned to
// the host page size, which covers every alignment this package accepts
// (alignment <= page_size), so no extra padding is needed the way
// newHeapChunk needs it.
func newVMChunk(size int) (*chunk, error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	release := func() {
		_ = unix.Munmap(buf)
	}
	return newChunkBase(buf, release, true), nil
}
