package rtcoro

// currentFrameAllocator is the runtime's one piece of mutable process-wide
// state (spec §4.4): the allocator that a coroutine's generated frame is
// carved from. It is valid only within the enter/exit bracket of a
// coroutine lifecycle event and must always be saved and restored around
// any nested frame allocation — never read outside those brackets.
//
// Since exactly one task's goroutine is ever the "logical" thread of
// execution at a time (every other task goroutine is parked on resumeCh),
// a single package-level variable serves the same role a thread-local
// would in the host language, without actually needing one.
var currentFrameAllocator *StackAllocator

// setCurrentFrameAllocator installs alloc as the current frame allocator
// and returns the previous value, for the caller to restore.
func setCurrentFrameAllocator(alloc *StackAllocator) *StackAllocator {
	prev := currentFrameAllocator
	currentFrameAllocator = alloc
	return prev
}

// CurrentFrameAllocator returns the frame allocator in effect for the
// coroutine currently being constructed or torn down. It is only
// meaningful to call this from within a [Body] or from code a Body calls
// directly; calling it outside a coroutine lifecycle event returns nil.
func CurrentFrameAllocator() *StackAllocator {
	return currentFrameAllocator
}
