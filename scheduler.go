package rtcoro

import (
	"github.com/joeycumines/go-rtcoro/internal/dualpq"
)

// waitingLess orders the waiting (min-heap) side by ready time ascending,
// so the earliest-ready task is always on top. It is the argument-swapped
// form of [laterReadyTime] (which answers "is a strictly later-ready than
// b"): ready-time-ascending order is equivalently "is b later-ready than
// a".
func waitingLess(a, b *Task) bool { return laterReadyTime(b, a) }

// awaitingEntry pairs an awaiting task with the readiness predicate it
// suspended on ([Task.suspendAwait]); the scheduler polls ready during
// promote and moves the task back to running once it reports true.
type awaitingEntry struct {
	task  *Task
	ready func() bool
}

// Scheduler is the cooperative, priority- and deadline-based dispatcher
// described in spec §4.6: three task collections — waiting (by ready time),
// running (by the priority/deadline predicate), awaiting (by an external
// readiness predicate) — and a promote/dispatch loop driven by [Hooks.Now].
//
// A Scheduler is not safe for concurrent use; it is driven by a single
// goroutine calling [Scheduler.Spin] or [Scheduler.Run] repeatedly, which
// mirrors the target's single-threaded cooperative execution model (spec
// §5). Futures may be resolved from other goroutines standing in for
// interrupt context; that crossing is handled entirely inside Future's own
// critical section, not by the Scheduler.
type Scheduler struct {
	cap int

	pq *dualpq.Queue[*Task]

	awaiting []awaitingEntry

	nextID uint64

	logger  Logger
	metrics *SchedulerMetrics

	state schedulerState

	sleepUntil func(TimePoint)
}

// NewScheduler constructs a Scheduler with a fixed admission capacity of
// capacity tasks shared between the waiting and running collections (the
// awaiting collection is unordered and grows with capacity too, since a
// task only ever occupies one of the three at a time — see spec §4.6
// "|waiting|+|running|+|awaiting| <= N").
func NewScheduler(capacity int, opts ...SchedulerOption) *Scheduler {
	if capacity <= 0 {
		raisePrecondition("NewScheduler", "capacity must be positive")
	}
	cfg := resolveSchedulerOptions(opts)
	s := &Scheduler{
		cap:      capacity,
		pq:       dualpq.New[*Task](capacity, waitingLess, lessPriority),
		awaiting: make([]awaitingEntry, 0, capacity),
		logger:   cfg.logger,
		sleepUntil: func(until TimePoint) {
			hooks().SleepUntil(until)
		},
	}
	if cfg.metricsEnabled {
		s.metrics = newSchedulerMetrics()
	}
	if cfg.sleepUntil != nil {
		s.sleepUntil = cfg.sleepUntil
	}
	s.state.store(schedulerAwake)
	return s
}

// Metrics returns the Scheduler's metrics, or nil if metrics were not
// enabled via [WithSchedulerMetrics].
func (s *Scheduler) Metrics() *SchedulerMetrics { return s.metrics }

// Len reports the total number of tasks currently admitted, across all
// three collections.
func (s *Scheduler) Len() int {
	return s.pq.LeftLen() + s.pq.RightLen() + len(s.awaiting)
}

// Full reports whether admission capacity is exhausted.
func (s *Scheduler) Full() bool {
	return s.Len() >= s.cap
}

// Add admits task, assigning it a monotonically increasing ID, and places
// it in running (if its ready time has already elapsed, or
// [Task.ImmediatelyReady] is set) or waiting otherwise (spec §4.6
// "Admission"). Admitting into a full scheduler is a precondition
// violation.
func (s *Scheduler) Add(task *Task) {
	if s.Full() {
		raisePrecondition("Scheduler.Add", "scheduler is at capacity")
		return
	}
	s.nextID++
	task.ID = s.nextID

	n := now()
	if task.ImmediatelyReady || task.ReadyTime.BeforeOrEqual(n) {
		s.pq.PushRight(task)
		s.log(func(l Logger) { l.LogAdd(n, task.Name, task.ID, CollectionRunning) })
	} else {
		s.pq.PushLeft(task)
		s.log(func(l Logger) { l.LogAdd(n, task.Name, task.ID, CollectionWaiting) })
	}
	if s.metrics != nil {
		s.metrics.recordAdmit()
		s.sampleQueueDepths()
	}
}

// promote moves every waiting task whose ready time has elapsed, and every
// awaiting task whose readiness predicate now returns true, into running
// (spec §4.6 step 1).
func (s *Scheduler) promote() {
	n := now()

	if len(s.awaiting) > 0 {
		kept := s.awaiting[:0]
		for _, e := range s.awaiting {
			if e.ready() {
				s.pq.PushRight(e.task)
				s.log(func(l Logger) { l.LogMove(n, e.task.Name, e.task.ID, CollectionAwaiting, CollectionRunning) })
			} else {
				kept = append(kept, e)
			}
		}
		s.awaiting = kept
	}

	for {
		top, ok := s.pq.TopLeft()
		if !ok || !top.ReadyTime.BeforeOrEqual(n) {
			break
		}
		task, _ := s.pq.PopLeft()
		s.pq.PushRight(task)
		s.log(func(l Logger) { l.LogMove(n, task.Name, task.ID, CollectionWaiting, CollectionRunning) })
	}
}

// Spin runs exactly one iteration of the promote/dispatch loop (spec
// §4.6). If a task was popped from running (dispatched, or dropped for a
// missed deadline), it returns true; if running was empty and the
// scheduler instead invoked its sleep hook, it returns false.
func (s *Scheduler) Spin() bool {
	s.state.store(schedulerRunning)
	s.promote()

	task, ok := s.pq.PopRight()
	if !ok {
		n := now()
		var waitUntil TimePoint
		if w, ok := s.pq.TopLeft(); ok {
			waitUntil = w.ReadyTime
		} else {
			waitUntil = n
		}
		s.log(func(l Logger) { l.LogSleep(n, waitUntil) })
		s.state.store(schedulerSleeping)
		s.sleepUntil(waitUntil)
		return false
	}

	if task.DeadlineBased {
		n := now()
		if task.Deadline.Before(n) {
			overrun := n.Sub(task.Deadline)
			runAnyway := true
			if task.MissedDeadline != nil {
				runAnyway = task.MissedDeadline(overrun)
			}
			if !runAnyway {
				s.drop(task)
				if s.metrics != nil {
					s.metrics.recordMissedDeadline()
				}
				return true
			}
			if s.metrics != nil {
				s.metrics.recordMissedDeadline()
			}
		}
	}

	y := task.resume(now)
	s.log(func(l Logger) { l.LogResume(task.execStart, task.execEnd, task.Name, task.ID) })
	if s.metrics != nil {
		s.metrics.recordResume(task.execEnd.Sub(task.execStart))
	}

	if task.Exited() {
		s.drop(task)
		if s.metrics != nil {
			s.metrics.recordDispatch()
			s.sampleQueueDepths()
		}
		return true
	}

	switch y.signal.Kind {
	case SignalAwait:
		n := now()
		s.awaiting = append(s.awaiting, awaitingEntry{task: task, ready: task.pendingReady})
		s.log(func(l Logger) { l.LogMove(n, task.Name, task.ID, CollectionRunning, CollectionAwaiting) })

	case SignalNextCycle:
		n := now()
		prevReady := task.ReadyTime
		if task.NextSchedule != nil {
			task.ReadyTime = task.NextSchedule(prevReady)
		} else {
			task.ReadyTime = n
		}
		s.pq.PushLeft(task)
		s.log(func(l Logger) { l.LogMove(n, task.Name, task.ID, CollectionRunning, CollectionWaiting) })

	case SignalImplicitDelay:
		n := now()
		width := task.Deadline.Sub(task.ReadyTime)
		task.ReadyTime = n.Add(y.signal.Ready)
		task.Deadline = task.ReadyTime.Add(width)
		s.pq.PushLeft(task)
		s.log(func(l Logger) { l.LogMove(n, task.Name, task.ID, CollectionRunning, CollectionWaiting) })

	case SignalExplicitDelay:
		n := now()
		task.ReadyTime = n.Add(y.signal.Ready)
		task.Deadline = n.Add(y.signal.Deadline)
		s.pq.PushLeft(task)
		s.log(func(l Logger) { l.LogMove(n, task.Name, task.ID, CollectionRunning, CollectionWaiting) })

	default:
		raisePrecondition("Scheduler.Spin", "task yielded without a valid signal")
	}

	if s.metrics != nil {
		s.metrics.recordDispatch()
		s.sampleQueueDepths()
	}
	return true
}

// drop removes task from the scheduler's bookkeeping after it exits,
// normally or by fault (spec §4.6/§7: "the scheduler observes an
// Exit::Failure and drops the task normally").
func (s *Scheduler) drop(task *Task) {
	s.log(func(l Logger) { l.LogDelete(now(), task.Name, task.ID) })
}

// Run drives Spin in a loop until stop returns true. It is a convenience
// wrapper; callers needing finer control (e.g. integrating with a host
// main loop) should call Spin directly.
func (s *Scheduler) Run(stop func() bool) {
	for !stop() {
		s.Spin()
	}
	s.state.store(schedulerTerminated)
}

func (s *Scheduler) log(f func(Logger)) {
	if s.logger != nil {
		f(s.logger)
	}
}

func (s *Scheduler) sampleQueueDepths() {
	s.metrics.sampleQueues(s.pq.LeftLen(), s.pq.RightLen(), len(s.awaiting))
}
