package rtcoro

import "sync/atomic"

// AssertionLevel selects how this package reacts to a violated
// precondition (spec §6.3/§7). Levels are ordered: a check guarded at
// AssertO1 also fires at AssertFull, but not at AssertCritical or below.
type AssertionLevel int32

const (
	// AssertOff disables the level-gated checks: a non-LIFO deallocate
	// becomes a no-op instead of fatal. Checks that are not level-gated
	// (null required hooks, scheduler admission overflow) fire at every
	// level, including this one.
	AssertOff AssertionLevel = iota
	// AssertCritical enables no level-gated check; only the checks that
	// fire at every level (null required hooks, scheduler admission
	// overflow) run.
	AssertCritical
	// AssertO1 additionally enables O(1) checks such as the stack
	// allocator's LIFO discipline.
	AssertO1
	// AssertFull enables every level-gated check. No check is gated at
	// AssertFull alone, so it currently behaves like AssertO1.
	AssertFull
)

var globalLevel atomic.Int32

func init() {
	globalLevel.Store(int32(AssertO1))
}

// SetAssertionLevel installs the process-wide assertion level.
func SetAssertionLevel(level AssertionLevel) {
	globalLevel.Store(int32(level))
}

func globalAssertLevel() AssertionLevel {
	return AssertionLevel(globalLevel.Load())
}

// assertCallback, when non-nil, is invoked instead of panicking when a
// precondition fires. It must not return; if it does, this package panics
// anyway, since Go has no equivalent of a non-returning builtin to trust.
var assertCallback atomic.Pointer[func(op, message string)]

// SetAssertCallback installs a callback invoked on every precondition
// violation in place of panicking. This is the stand-in for the source
// runtime's "assertion failures invoke a callback instead of throwing" build
// option (spec §6.3, §4.4). Passing nil restores the default panic
// behavior.
func SetAssertCallback(cb func(op, message string)) {
	if cb == nil {
		assertCallback.Store(nil)
		return
	}
	assertCallback.Store(&cb)
}

// raisePrecondition reports a violated precondition per the active policy:
// invokes the registered callback if one is set, otherwise panics with a
// [PreconditionError].
func raisePrecondition(op, message string) {
	if p := assertCallback.Load(); p != nil {
		(*p)(op, message)
		// The callback must not return; fall through to panic as a backstop.
	}
	panic(&PreconditionError{Op: op, Message: message})
}
