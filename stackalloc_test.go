package rtcoro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackAllocatorLIFO(t *testing.T) {
	a := NewStackAllocator(64)
	require.True(t, a.IsEmpty())

	b1, off1 := a.Allocate(8, 1)
	require.Len(t, b1, 8)
	b2, off2 := a.Allocate(16, 1)
	require.Len(t, b2, 16)
	require.Equal(t, 24, a.AllocatedSize())
	require.Equal(t, 24, a.MaxAllocatedSize())

	a.Deallocate(off2, 16)
	require.Equal(t, 8, a.AllocatedSize())
	a.Deallocate(off1, 8)
	require.True(t, a.IsEmpty())
	require.Equal(t, 24, a.MaxAllocatedSize(), "high-water mark is non-decreasing")
}

func TestStackAllocatorExhaustion(t *testing.T) {
	a := NewStackAllocator(4)
	require.Panics(t, func() { a.Allocate(8, 1) })
}

func TestStackAllocatorNonLIFODeallocateUnderO1(t *testing.T) {
	SetAssertionLevel(AssertO1)
	defer SetAssertionLevel(AssertO1)

	a := NewStackAllocator(64)
	_, off1 := a.Allocate(8, 1)
	_, _ = a.Allocate(8, 1)
	require.Panics(t, func() { a.Deallocate(off1, 8) }, "freeing a non-topmost block is a precondition violation under AssertO1")
}

func TestStackAllocatorNonLIFODeallocateSilentUnderOff(t *testing.T) {
	SetAssertionLevel(AssertOff)
	defer SetAssertionLevel(AssertO1)

	a := NewStackAllocator(64)
	_, off1 := a.Allocate(8, 1)
	_, _ = a.Allocate(8, 1)
	require.NotPanics(t, func() { a.Deallocate(off1, 8) })
	require.Equal(t, 16, a.AllocatedSize(), "a rejected deallocation under AssertOff is a no-op")
}

func TestStackAllocatorAlignment(t *testing.T) {
	a := NewStackAllocator(64)
	a.Allocate(1, 1)
	_, off := a.Allocate(8, 8)
	require.Equal(t, 0, off%8)
}
