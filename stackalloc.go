package rtcoro

// StackAllocator is a bump allocator over a fixed arena, used as per-task
// frame storage for nested coroutines. Allocation is O(1); deallocation is
// valid only when it frees the block currently at the top of the stack
// (LIFO) — coroutine frames are freed in exactly that order, since a
// nested coroutine's frame is destroyed before its parent's.
type StackAllocator struct {
	arena  []byte
	top    int
	peak   int
	allocs int
	frees  int
	level  AssertionLevel
}

// NewStackAllocator creates an allocator owning a zeroed arena of size
// bytes.
func NewStackAllocator(size int) *StackAllocator {
	if size < 0 {
		size = 0
	}
	return &StackAllocator{arena: make([]byte, size), level: globalAssertLevel()}
}

// Capacity returns the total arena size in bytes.
func (a *StackAllocator) Capacity() int { return len(a.arena) }

// AllocatedSize returns the number of bytes currently live.
func (a *StackAllocator) AllocatedSize() int { return a.top }

// MaxAllocatedSize returns the high-water mark of AllocatedSize, which is
// monotonically non-decreasing over the allocator's lifetime.
func (a *StackAllocator) MaxAllocatedSize() int { return a.peak }

// IsEmpty reports whether there are no live blocks.
func (a *StackAllocator) IsEmpty() bool { return a.top == 0 }

// Allocate reserves size bytes aligned to align (which must be a power of
// two), returning the block and its starting offset. It panics with an
// [AllocationError] if the arena cannot satisfy the request.
func (a *StackAllocator) Allocate(size, align int) ([]byte, int) {
	if align <= 0 {
		align = 1
	}
	aligned := alignUp(a.top, align)
	end := aligned + size
	if end > len(a.arena) || end < 0 {
		panic(&AllocationError{
			Requested:  size,
			ArenaSize:  len(a.arena),
			LargestGap: len(a.arena) - aligned,
			AllocCount: a.allocs,
			FreeCount:  a.frees,
		})
	}
	a.top = end
	if a.top > a.peak {
		a.peak = a.top
	}
	a.allocs++
	return a.arena[aligned:end], aligned
}

// Deallocate frees the block of size bytes starting at offset. offset+size
// must equal the current top (LIFO discipline); violating this is a
// precondition violation, enforced according to the [AssertionLevel] that
// was in effect when the allocator was created: a silent no-op under
// AssertOff/AssertCritical, a fatal assertion under AssertO1/AssertFull.
func (a *StackAllocator) Deallocate(offset, size int) {
	if offset+size != a.top {
		if a.level >= AssertO1 {
			raisePrecondition("StackAllocator.Deallocate", "deallocation is not LIFO with the current top")
		}
		return
	}
	a.top = offset
	a.frees++
}

// alignUp rounds off up to the next multiple of align (align must be a
// power of two).
func alignUp(off, align int) int {
	if align <= 1 {
		return off
	}
	mask := align - 1
	return (off + mask) &^ mask
}
