package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocLookupFree(t *testing.T) {
	p, err := NewPool(8)
	require.NoError(t, err)

	id := p.Alloc()
	require.True(t, id.Valid())

	rec := p.Lookup(id)
	require.NotNil(t, rec)
	assert.Equal(t, NOT_SUBMITTED, rec.State)

	p.Free(id)
	assert.Nil(t, p.Lookup(id), "lookup after free must fail (P5)")
}

func TestPoolGenerationBumpInvalidatesStaleID(t *testing.T) {
	p, err := NewPool(4)
	require.NoError(t, err)

	first := p.Alloc()
	p.Free(first)

	second := p.Alloc()
	require.True(t, second.Valid())
	assert.NotEqual(t, first, second, "reused slot must mint a different identifier")
	assert.Nil(t, p.Lookup(first), "no false hit on the old identifier (P5)")
	assert.NotNil(t, p.Lookup(second))
}

func TestPoolExhaustionReturnsInvalid(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)

	// Capacity 2 reserves index 0, leaving exactly one allocatable slot.
	id := p.Alloc()
	require.True(t, id.Valid())

	assert.Equal(t, Invalid, p.Alloc())
}

func TestNewPoolRejectsNonPowerOfTwo(t *testing.T) {
	_, err := NewPool(3)
	assert.Error(t, err)

	_, err = NewPool(0)
	assert.Error(t, err)
}

func TestLookupRejectsNoneAndOutOfRange(t *testing.T) {
	p, err := NewPool(4)
	require.NoError(t, err)

	assert.Nil(t, p.Lookup(None))
	assert.Nil(t, p.Lookup(makeID(100, 1)))
}

func TestRecordWaitersBounded(t *testing.T) {
	var rec Record
	for i := 0; i < WaitersMax; i++ {
		require.True(t, rec.AddWaiter(ID(i+1)), "waiter %d should fit", i)
	}
	assert.False(t, rec.AddWaiter(ID(999)), "waiter list must reject past WaitersMax (P7)")
	assert.Len(t, rec.Waiters(), WaitersMax)
}

func TestStateTerminal(t *testing.T) {
	cases := map[State]bool{
		UNINITIALIZED: false,
		NOT_SUBMITTED: false,
		NOT_READY:     false,
		READY:         false,
		RUNNING:       false,
		COMPLETED:     true,
		CANCELED:      true,
	}
	for state, want := range cases {
		assert.Equal(t, want, state.Terminal(), "state %s", state)
	}
}
