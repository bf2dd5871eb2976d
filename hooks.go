package rtcoro

import "sync"

// Hooks is the set of host-supplied primitives this package takes from the
// underlying MCU: a monotonic clock, an idle/sleep primitive, an interrupt
// mask for the single-core critical section, and bulk-copy primitives. The
// bulk-copy hooks are stored but not called by any code in this package.
// See SPEC_FULL.md §6.1.
type Hooks struct {
	// Now returns the current time. Required.
	Now func() TimePoint

	// SleepUntil blocks the calling goroutine (the scheduler's run loop)
	// until at least the given TimePoint, or until woken early by an
	// interrupt the host chooses to treat as significant. Optional;
	// defaults to a no-op, so the scheduler busy-waits through Spin.
	SleepUntil func(TimePoint)

	// DisableInterrupts and EnableInterrupts bracket a critical section on a
	// single-core target (crit_singlecore.go). Calls nest: only the
	// outermost Disable/Enable pair actually masks interrupts. Both default
	// to no-ops suitable for a hosted (non-bare-metal) build.
	DisableInterrupts func()
	EnableInterrupts  func()

	// Memcpy copies len(src) bytes from src to dst, synchronously.
	// Optional; defaults to the built-in copy.
	Memcpy func(dst, src []byte)

	// AsyncMemcpy copies len(src) bytes from src to dst using a DMA-style
	// engine, resolving done once the copy completes. Optional; it is nil
	// by default, and SetHooks installs no synchronous fallback for it.
	AsyncMemcpy func(dst, src []byte, done *Promise[struct{}])
}

var (
	hooksMu      sync.RWMutex
	activeHooks  = defaultHooks()
	disableDepth int
)

func defaultHooks() Hooks {
	return Hooks{
		Now:               func() TimePoint { return TimePoint{} },
		SleepUntil:        func(TimePoint) {},
		DisableInterrupts: func() {},
		EnableInterrupts:  func() {},
		Memcpy:            func(dst, src []byte) { copy(dst, src) },
		AsyncMemcpy:       nil,
	}
}

// SetHooks installs the host hook set. Now must be non-nil; a nil
// SleepUntil, DisableInterrupts or EnableInterrupts becomes a no-op, a nil
// Memcpy becomes the built-in copy, and a nil AsyncMemcpy stays nil.
func SetHooks(h Hooks) {
	if h.Now == nil {
		raisePrecondition("SetHooks", "Now is required")
		return
	}
	if h.SleepUntil == nil {
		h.SleepUntil = func(TimePoint) {}
	}
	if h.Memcpy == nil {
		h.Memcpy = func(dst, src []byte) { copy(dst, src) }
	}
	if h.DisableInterrupts == nil {
		h.DisableInterrupts = func() {}
	}
	if h.EnableInterrupts == nil {
		h.EnableInterrupts = func() {}
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	activeHooks = h
}

func hooks() Hooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return activeHooks
}

// now returns the host clock's current reading.
func now() TimePoint {
	return hooks().Now()
}

// disableInterrupts and enableInterrupts implement the nesting-counter
// behavior described for the single-core critical section (spec §4.3):
// only the outermost pair actually toggles the host mask.
func disableInterrupts() {
	h := hooks()
	if disableDepth == 0 {
		h.DisableInterrupts()
	}
	disableDepth++
}

func enableInterrupts() {
	disableDepth--
	if disableDepth == 0 {
		hooks().EnableInterrupts()
	}
}
