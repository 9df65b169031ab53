package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidAlignment(t *testing.T) {
	_, err := New(Config{ChunkSize: 4096, Alignment: 3})
	assert.ErrorIs(t, err, ErrInvalidAlignment)

	_, err = New(Config{ChunkSize: 4096, Alignment: 1 << 30})
	assert.ErrorIs(t, err, ErrInvalidAlignment)
}

func TestNewRejectsInvalidChunkSize(t *testing.T) {
	_, err := New(Config{ChunkSize: 8, Alignment: 16})
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestNewDefaultsAlignment(t *testing.T) {
	a, err := New(Config{ChunkSize: 4096})
	require.NoError(t, err)
	assert.Equal(t, DefaultAlignment, a.alignment)
}

func TestAllocateRejectsInvalidLength(t *testing.T) {
	a, err := New(Config{ChunkSize: 4096, Name: "t"})
	require.NoError(t, err)

	_, err = a.Allocate(0, a.DefaultAlignment())
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = a.Allocate(-1, a.DefaultAlignment())
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestAllocateRejectsZeroAlignment(t *testing.T) {
	a, err := New(Config{ChunkSize: 4096, Name: "t"})
	require.NoError(t, err)

	_, err = a.Allocate(64, 0)
	assert.ErrorIs(t, err, ErrInvalidAlignment, "alignment 0 is a caller error, not a request for the default (spec §4.1)")
}

func TestAllocateRejectsNonPowerOfTwoAlignment(t *testing.T) {
	a, err := New(Config{ChunkSize: 4096, Name: "t"})
	require.NoError(t, err)

	_, err = a.Allocate(64, 3)
	assert.ErrorIs(t, err, ErrInvalidAlignment)
}

func TestAllocateReturnsDistinctNonOverlappingRegions(t *testing.T) {
	a, err := New(Config{ChunkSize: 4096, Name: "t"})
	require.NoError(t, err)

	r1, err := a.Allocate(64, a.DefaultAlignment())
	require.NoError(t, err)
	require.NotNil(t, r1)

	r2, err := a.Allocate(64, a.DefaultAlignment())
	require.NoError(t, err)
	require.NotNil(t, r2)

	for i := range r1.Bytes() {
		r1.Bytes()[i] = 0xAA
	}
	for i := range r2.Bytes() {
		r2.Bytes()[i] = 0xBB
	}
	for _, b := range r1.Bytes() {
		assert.Equal(t, byte(0xAA), b, "writing r2 must not clobber r1")
	}
}

func TestAllocateNonGrowableReturnsNilOnExhaustion(t *testing.T) {
	a, err := New(Config{ChunkSize: 128, Alignment: 16, Name: "t", Growable: false})
	require.NoError(t, err)

	r, err := a.Allocate(256, a.DefaultAlignment())
	assert.NoError(t, err, "exhaustion of a non-growable arena is not an error (spec §4.1)")
	assert.Nil(t, r)
}

func TestAllocateGrowableAcquiresAnotherChunk(t *testing.T) {
	a, err := New(Config{ChunkSize: 128, Alignment: 16, Name: "t", Growable: true})
	require.NoError(t, err)

	_, err = a.Allocate(100, a.DefaultAlignment())
	require.NoError(t, err)

	before := len(a.chunks)
	r, err := a.Allocate(100, a.DefaultAlignment())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Greater(t, len(a.chunks), before)
}

func TestMarkAndResetToRewindsCursorAndReleasesChunks(t *testing.T) {
	a, err := New(Config{ChunkSize: 128, Alignment: 16, Name: "t", Growable: true})
	require.NoError(t, err)

	m := a.Mark()

	_, err = a.Allocate(100, a.DefaultAlignment())
	require.NoError(t, err)
	_, err = a.Allocate(100, a.DefaultAlignment())
	require.NoError(t, err)
	require.Greater(t, len(a.chunks), 1, "second allocation must have grown past the first chunk")

	a.ResetTo(m)
	assert.Len(t, a.chunks, 1, "ResetTo must release every chunk acquired after the marker")
	assert.Equal(t, 0, a.chunks[0].cursor)

	r, err := a.Allocate(100, a.DefaultAlignment())
	require.NoError(t, err)
	require.NotNil(t, r, "allocator must be usable again after ResetTo (P4)")
}

func TestResetReleasesAllButFirstChunk(t *testing.T) {
	a, err := New(Config{ChunkSize: 128, Alignment: 16, Name: "t", Growable: true})
	require.NoError(t, err)

	_, err = a.Allocate(100, a.DefaultAlignment())
	require.NoError(t, err)
	_, err = a.Allocate(100, a.DefaultAlignment())
	require.NoError(t, err)
	require.Greater(t, len(a.chunks), 1)

	a.Reset()
	assert.Len(t, a.chunks, 1)
	assert.Equal(t, 0, a.chunks[0].cursor)
}

func TestAllocateRespectsExplicitAlignment(t *testing.T) {
	a, err := New(Config{ChunkSize: 4096, Alignment: 8, Name: "t"})
	require.NoError(t, err)

	r, err := a.Allocate(1, 64)
	require.NoError(t, err)
	require.NotNil(t, r)

	addr := uintptr(unsafe.Pointer(&r.Bytes()[0]))
	assert.Equal(t, uintptr(0), addr%64, "region must be aligned to the requested 64-byte boundary")
}

func TestVirtualMemoryAllocatorServesAllocations(t *testing.T) {
	a, err := New(Config{ChunkSize: 4096, Alignment: 16, Name: "t", VirtualMemory: true})
	require.NoError(t, err)
	assert.True(t, a.Virtual())

	r, err := a.Allocate(256, a.DefaultAlignment())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Len(t, r.Bytes(), 256)
}
