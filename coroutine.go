package rtcoro

// Awaitable is the minimal protocol a value must satisfy to be awaited from
// inside a coroutine body without being a [Future] itself (spec §4.4
// "signal forwarding"). A *Future[T] satisfies Awaitable[T] directly.
type Awaitable[T any] interface {
	AwaitReady() bool
	AwaitResume() (T, bool)
}

var (
	_ Awaitable[struct{}] = (*Future[struct{}])(nil)
)

// ExitKind reports how a task's root coroutine concluded.
type ExitKind uint8

const (
	// ExitSuccess means the root coroutine returned normally.
	ExitSuccess ExitKind = iota
	// ExitFailure means a panic propagated out of the root coroutine and
	// was recovered by the task's own goroutine.
	ExitFailure
)

// Exit is the final outcome of a task's root coroutine: the value returned
// on success, or the recovered cause on failure.
type Exit struct {
	Kind  ExitKind
	Value any
	Err   error
}

// Ctx is the per-task handle a coroutine body uses to suspend itself. It is
// threaded through every nested coroutine call by the caller (there is no
// implicit/ambient coroutine context; this mirrors the host language's
// compiler-synthesized coroutine frame with an explicit parameter instead).
type Ctx struct {
	task *Task
}

// Await suspends the calling coroutine until a is ready, then returns its
// resolved value and whether one was actually set (false means the peer
// Promise was dropped — a broken promise, not an error). Await is the
// generalized suspension point behind both `Future` awaits and any other
// type satisfying [Awaitable].
func Await[T any](c Ctx, a Awaitable[T]) (T, bool) {
	if a.AwaitReady() {
		return a.AwaitResume()
	}
	c.task.suspendAwait(a.AwaitReady)
	return a.AwaitResume()
}

// Yield suspends the calling coroutine until the scheduler's next tick,
// with no deadline accounting.
func Yield(c Ctx) {
	c.task.suspendSignal(Signal{Kind: SignalNextCycle})
}

// Delay suspends the calling coroutine for at least d, preserving the
// task's current ready/deadline window width (spec §4.6 ImplicitDelay).
func Delay(c Ctx, d Duration) {
	c.task.suspendSignal(Signal{Kind: SignalImplicitDelay, Ready: d})
}

// DelayUntil suspends the calling coroutine for a window of [ready,
// deadline] from the moment it suspends (spec §4.6 ExplicitDelay).
func DelayUntil(c Ctx, ready, deadline Duration) {
	c.task.suspendSignal(ExplicitDelay(ready, deadline))
}
