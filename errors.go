package rtcoro

import (
	"errors"
	"fmt"
)

// ErrBrokenPromise is returned by [Future.Get] when the peer [Promise] was
// dropped before a value was set. It is not fatal: [Future.AwaitResume]
// surfaces the same condition as a (zero, false) result instead of an error.
var ErrBrokenPromise = errors.New("rtcoro: broken promise")

// PreconditionError reports a violated runtime precondition, such as a null
// required hook, a non-LIFO deallocation, or an admission into a full
// scheduler collection.
//
// PreconditionError is fatal. A violation invokes the callback installed
// with [SetAssertCallback] if there is one and panics with a
// PreconditionError otherwise (or after the callback returns); the active
// [AssertionLevel] only decides whether level-gated checks run at all. See
// assert.go.
type PreconditionError struct {
	// Op names the operation that detected the violation, e.g.
	// "StackAllocator.Deallocate" or "Scheduler.Add".
	Op      string
	Message string
}

func (e *PreconditionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rtcoro: precondition violated in %s", e.Op)
	}
	return fmt.Sprintf("rtcoro: precondition violated in %s: %s", e.Op, e.Message)
}

// AllocationError reports a [StackAllocator] arena exhausted by a request
// it cannot satisfy. It carries enough context to diagnose the failure
// without a debugger attached.
type AllocationError struct {
	Requested  int
	ArenaSize  int
	LargestGap int
	AllocCount int
	FreeCount  int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf(
		"rtcoro: frame allocator exhausted: requested %d bytes, arena %d bytes, largest free %d bytes (%d allocs, %d frees)",
		e.Requested, e.ArenaSize, e.LargestGap, e.AllocCount, e.FreeCount,
	)
}

// MissedDeadlineError describes a deadline-based [Task] popped from the
// running collection after its deadline had already elapsed. It is
// informational: the scheduler's actual behavior (run anyway or drop) is
// decided by [Task.MissedDeadline], not by this error.
type MissedDeadlineError struct {
	TaskName string
	TaskID   uint64
	Overrun  Duration
}

func (e *MissedDeadlineError) Error() string {
	return fmt.Sprintf("rtcoro: task %q (id %d) missed its deadline by %d ticks", e.TaskName, e.TaskID, e.Overrun.Ticks)
}

// TaskFaultError wraps a panic recovered from inside a coroutine body. The
// scheduler observes [ExitFailure] and drops the task; TaskFaultError is
// what a caller inspecting the Err field of [Task.Result] will see.
type TaskFaultError struct {
	TaskName string
	TaskID   uint64
	Cause    error
}

func (e *TaskFaultError) Error() string {
	return fmt.Sprintf("rtcoro: task %q (id %d) faulted: %v", e.TaskName, e.TaskID, e.Cause)
}

func (e *TaskFaultError) Unwrap() error {
	return e.Cause
}

// WrapError wraps an error with a message and optional cause chain, such
// that errors.Is(result, cause) == true.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
