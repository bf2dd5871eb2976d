package rtcoro

import "fmt"

// taskYield is what a task's goroutine sends back to the scheduler each
// time it suspends or finishes running.
type taskYield struct {
	signal Signal
	exit   *Exit
}

// Body is a task's root coroutine. It receives a [Ctx] to suspend itself
// with and returns a value consumed as the task's [Exit] on success; a
// returned error is carried in Exit.Err with ExitKind still ExitSuccess
// (mirroring a coroutine that "returns" an error value rather than
// throwing — the host language's exception path is instead modeled by
// panicking, which the task's goroutine recovers into an [ExitFailure]).
type Body func(Ctx) (any, error)

// Task wraps one root coroutine, its frame allocator, and its scheduling
// parameters (spec §4.5). Each Task owns exactly one goroutine for its
// entire lifetime; nested coroutine awaits inside Body are plain nested Go
// calls sharing that one goroutine's stack, so the real call stack stands
// in for the language's chained coroutine frames.
type Task struct {
	ID       uint64
	Name     string
	Priority int

	// DeadlineBased tasks always carry Priority == PMax and are ordered by
	// Deadline instead of Priority in the running queue.
	DeadlineBased bool

	// ImmediatelyReady admits the task straight to running regardless of
	// ReadyTime.
	ImmediatelyReady bool

	ReadyTime TimePoint
	Deadline  TimePoint

	FrameAlloc *StackAllocator

	// MissedDeadline is consulted when a deadline-based task is popped from
	// running after its Deadline has already elapsed. The default (nil)
	// behaves as "run anyway". Returning false causes the scheduler to drop
	// the task instead (spec §4.5: "a policy decision, not a failure").
	MissedDeadline func(overrun Duration) bool

	// NextSchedule computes the new ready time for a NextCycle signal,
	// given the previous ready time. The default re-arms immediately at
	// now(), i.e. every cycle.
	NextSchedule func(previousReady TimePoint) TimePoint

	body Body

	resumeCh chan struct{}
	yieldCh  chan taskYield

	started bool
	exited  bool
	exit    Exit

	pendingReady func() bool

	execStart, execEnd TimePoint
}

// PMax is the highest (and deadline-based tasks' forced) priority value.
const PMax = int(^uint(0) >> 1)

// NewPriorityTask constructs a task that is immediately ready to run at the
// given static priority.
func NewPriorityTask(name string, priority int, alloc *StackAllocator, body Body) *Task {
	return newTask(name, priority, false, true, TimePoint{}, TimePoint{}, alloc, body)
}

// NewScheduledTask constructs a task that becomes ready no earlier than
// ready, at the given static priority.
func NewScheduledTask(name string, priority int, ready TimePoint, alloc *StackAllocator, body Body) *Task {
	return newTask(name, priority, false, false, ready, TimePoint{}, alloc, body)
}

// NewDeadlineTask constructs a deadline-based task, forced to PMax
// priority and ordered against other deadline-based tasks by deadline.
func NewDeadlineTask(name string, ready, deadline TimePoint, alloc *StackAllocator, body Body) *Task {
	return newTask(name, PMax, true, false, ready, deadline, alloc, body)
}

// NewRelativeDeadlineTask is [NewDeadlineTask] with deadline expressed as
// ready+duration.
func NewRelativeDeadlineTask(name string, ready TimePoint, duration Duration, alloc *StackAllocator, body Body) *Task {
	return NewDeadlineTask(name, ready, ready.Add(duration), alloc, body)
}

func newTask(name string, priority int, deadlineBased, immediatelyReady bool, ready, deadline TimePoint, alloc *StackAllocator, body Body) *Task {
	if alloc == nil {
		raisePrecondition("NewTask", "frame allocator is required")
	}
	if body == nil {
		raisePrecondition("NewTask", "coroutine body is required")
	}
	return &Task{
		Name:             name,
		Priority:         priority,
		DeadlineBased:    deadlineBased,
		ImmediatelyReady: immediatelyReady,
		ReadyTime:        ready,
		Deadline:         deadline,
		FrameAlloc:       alloc,
		body:             body,
		resumeCh:         make(chan struct{}),
		yieldCh:          make(chan taskYield),
	}
}

// suspendSignal is called from inside Body (via [Yield], [Delay],
// [DelayUntil]) to hand a scheduling directive back to the scheduler and
// block until resumed.
func (t *Task) suspendSignal(sig Signal) {
	t.yieldCh <- taskYield{signal: sig}
	<-t.resumeCh
}

// suspendAwait is called from inside Body (via [Await]) when the awaited
// value was not already ready. ready is polled by the scheduler's promote
// step to decide when to move this task out of the awaiting collection.
func (t *Task) suspendAwait(ready func() bool) {
	t.pendingReady = ready
	t.yieldCh <- taskYield{signal: Signal{Kind: SignalAwait}}
	<-t.resumeCh
}

// start launches the task's dedicated goroutine. Called once, by the
// scheduler, on first resume.
func (t *Task) start() {
	t.started = true
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.yieldCh <- taskYield{exit: &Exit{
					Kind: ExitFailure,
					Err: &TaskFaultError{
						TaskName: t.Name,
						TaskID:   t.ID,
						Cause:    toError(r),
					},
				}}
			}
		}()

		<-t.resumeCh
		ctx := Ctx{task: t}
		v, err := t.body(ctx)
		t.yieldCh <- taskYield{exit: &Exit{Kind: ExitSuccess, Value: v, Err: err}}
	}()
}

// resume implements the five-step protocol of spec §4.5: set the thread-
// local frame allocator, record execution.start, drive the task's
// goroutine to its next suspension point (or completion), record
// execution.end, and return the signal that suspended it.
//
// The frame allocator is installed fresh on every resume (not just once at
// goroutine creation): while t's goroutine runs, it is the only one of the
// scheduler's task goroutines not parked on its own resumeCh, so bracketing
// the exchange this way reproduces the spec's "set current_frame_allocator
// = task.frame_allocator" step each time the scheduler re-enters the task,
// even though the goroutine itself persists across resumes.
//
// "instant_resume" — re-entering the leaf without returning to the
// scheduler's queue machinery — falls out for free here: it is simply the
// task's own goroutine making a nested Go call into a child coroutine
// without ever sending on yieldCh. There is no separate instant_resume
// flag to clear.
func (t *Task) resume(hookNow func() TimePoint) taskYield {
	if !t.started {
		t.start()
	}
	prevAlloc := setCurrentFrameAllocator(t.FrameAlloc)
	t.execStart = hookNow()
	t.resumeCh <- struct{}{}
	y := <-t.yieldCh
	t.execEnd = hookNow()
	setCurrentFrameAllocator(prevAlloc)
	if y.exit != nil {
		t.exited = true
		t.exit = *y.exit
	}
	return y
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// ExecutionWindow returns the [start, end] timestamps of the task's most
// recent resume.
func (t *Task) ExecutionWindow() (start, end TimePoint) {
	return t.execStart, t.execEnd
}

// Exited reports whether the task's root coroutine has returned or
// faulted.
func (t *Task) Exited() bool { return t.exited }

// Result returns the task's final [Exit]. Valid only once Exited is true.
func (t *Task) Result() Exit { return t.exit }

// lessPriority implements the running queue's ordering predicate (spec
// §4.5): deadline-based tasks outrank all priority-based tasks; among
// deadline-based tasks, earlier deadline outranks; among priority-based
// tasks, higher Priority outranks. lessPriority(a, b) reports whether a is
// strictly lower-ranked than b.
func lessPriority(a, b *Task) bool {
	if a.DeadlineBased != b.DeadlineBased {
		return b.DeadlineBased
	}
	if a.DeadlineBased {
		return b.Deadline.Before(a.Deadline)
	}
	return a.Priority < b.Priority
}

// laterReadyTime implements the waiting queue's ordering predicate: a
// strict comparison on ReadyTime.
func laterReadyTime(a, b *Task) bool {
	return b.ReadyTime.Before(a.ReadyTime)
}
