package rtcoro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually-advanced clock for deterministic scheduler tests,
// standing in for the hardware free-running counter (spec §6.1 `now`).
type fakeClock struct {
	tick uint64
}

func (c *fakeClock) now() TimePoint { return TimePoint{NewDuration(c.tick, 1, 1)} }

func installFakeClock(t *testing.T) *fakeClock {
	t.Helper()
	c := &fakeClock{}
	old := hooks()
	SetHooks(Hooks{
		Now:        c.now,
		SleepUntil: func(TimePoint) {},
		Memcpy:     func(dst, src []byte) { copy(dst, src) },
	})
	t.Cleanup(func() { SetHooks(old) })
	return c
}

func tp(tick uint64) TimePoint { return TimePoint{NewDuration(tick, 1, 1)} }

func TestSchedulerNestedCoroutineAllocatorLIFO(t *testing.T) {
	// S4.
	installFakeClock(t)
	alloc := NewStackAllocator(256)
	body := func(c Ctx) (any, error) {
		a := CurrentFrameAllocator()
		require.Same(t, alloc, a)
		_, rootOff := a.Allocate(8, 8)

		result := func() int {
			_, childOff := a.Allocate(16, 8)
			defer a.Deallocate(childOff, 16)
			return 18
		}()

		require.Equal(t, 8, a.AllocatedSize(), "child frame must be freed before root resumes")
		a.Deallocate(rootOff, 8)
		return result, nil
	}

	task := NewPriorityTask("root", 1, alloc, body)
	s := NewScheduler(4)
	s.Add(task)
	require.True(t, s.Spin())
	require.True(t, task.Exited())
	require.Equal(t, 18, task.Result().Value)
	require.True(t, alloc.IsEmpty())
}

func TestSchedulerPromotesWaitingTaskAtReadyTime(t *testing.T) {
	// S5.
	clock := installFakeClock(t)
	var ranA, ranB bool

	a := NewPriorityTask("A", 1, NewStackAllocator(64), func(c Ctx) (any, error) {
		ranA = true
		return nil, nil
	})
	a.ReadyTime = tp(0)

	b := NewScheduledTask("B", 1, tp(1000), NewStackAllocator(64), func(c Ctx) (any, error) {
		ranB = true
		return nil, nil
	})

	s := NewScheduler(4)
	s.Add(a)
	s.Add(b)

	clock.tick = 0
	require.True(t, s.Spin())
	require.True(t, ranA)
	require.False(t, ranB, "B is not yet ready at tick 0")

	clock.tick = 1000
	require.True(t, s.Spin())
	require.True(t, ranB)
}

func TestSchedulerDeadlineOutranksPriority(t *testing.T) {
	// S6.
	clock := installFakeClock(t)
	clock.tick = 0
	var order []string

	p := NewPriorityTask("P", 5, NewStackAllocator(64), func(c Ctx) (any, error) {
		order = append(order, "P")
		return nil, nil
	})
	d := NewDeadlineTask("D", tp(0), tp(100), NewStackAllocator(64), func(c Ctx) (any, error) {
		order = append(order, "D")
		return nil, nil
	})

	s := NewScheduler(4)
	s.Add(p)
	s.Add(d)
	require.True(t, s.Spin())
	require.Equal(t, []string{"D"}, order, "deadline-based task must dispatch first")
}

func TestSchedulerMissedDeadlineDrop(t *testing.T) {
	// S7.
	clock := installFakeClock(t)
	clock.tick = 10
	var resumed bool

	d := NewDeadlineTask("D", tp(0), tp(9), NewStackAllocator(64), func(c Ctx) (any, error) {
		resumed = true
		return nil, nil
	})
	d.MissedDeadline = func(overrun Duration) bool {
		require.Equal(t, uint64(1), overrun.Ticks)
		return false
	}

	s := NewScheduler(4)
	s.Add(d)
	require.True(t, s.Spin())
	require.False(t, resumed, "a dropped missed-deadline task must not be resumed")
}

func TestSchedulerMissedDeadlineDefaultRunsAnyway(t *testing.T) {
	clock := installFakeClock(t)
	clock.tick = 10
	var resumed bool

	d := NewDeadlineTask("D", tp(0), tp(9), NewStackAllocator(64), func(c Ctx) (any, error) {
		resumed = true
		return nil, nil
	})

	s := NewScheduler(4)
	s.Add(d)
	require.True(t, s.Spin())
	require.True(t, resumed)
}

func TestSchedulerYieldRequeuesToWaiting(t *testing.T) {
	clock := installFakeClock(t)
	clock.tick = 0
	cycles := 0

	task := NewPriorityTask("cycler", 1, NewStackAllocator(64), func(c Ctx) (any, error) {
		for cycles < 3 {
			cycles++
			Yield(c)
		}
		return cycles, nil
	})

	s := NewScheduler(4)
	s.Add(task)
	for !task.Exited() {
		s.Spin()
	}
	require.Equal(t, 3, cycles)
	require.Equal(t, 3, task.Result().Value)
}

func TestSchedulerExplicitDelayWindow(t *testing.T) {
	clock := installFakeClock(t)
	clock.tick = 0

	task := NewPriorityTask("delayed", 1, NewStackAllocator(64), func(c Ctx) (any, error) {
		DelayUntil(c, NewDuration(50, 1, 1), NewDuration(200, 1, 1))
		return "done", nil
	})

	s := NewScheduler(4)
	s.Add(task)
	require.True(t, s.Spin()) // first resume: suspends via DelayUntil
	require.False(t, task.Exited())
	require.Equal(t, uint64(50), task.ReadyTime.Ticks)
	require.Equal(t, uint64(200), task.Deadline.Ticks)

	clock.tick = 50
	require.True(t, s.Spin())
	require.True(t, task.Exited())
	require.Equal(t, "done", task.Result().Value)
}

func TestSchedulerAwaitFuture(t *testing.T) {
	clock := installFakeClock(t)
	clock.tick = 0
	f, p := NewFuture[int]()

	task := NewPriorityTask("waiter", 1, NewStackAllocator(64), func(c Ctx) (any, error) {
		v, ok := Await[int](c, f)
		if !ok {
			return nil, ErrBrokenPromise
		}
		return v, nil
	})

	s := NewScheduler(4)
	s.Add(task)
	require.True(t, s.Spin()) // suspends awaiting the future
	require.False(t, task.Exited())
	require.Equal(t, 1, s.Len())

	// promote() should not move it until the future resolves: nothing is
	// runnable, so Spin falls through to the sleep hook.
	require.False(t, s.Spin())
	require.False(t, task.Exited())

	p.SetValue(99)
	require.True(t, s.Spin())
	require.True(t, task.Exited())
	require.Equal(t, 99, task.Result().Value)
}

func TestSchedulerAdmissionAtCapacityPanics(t *testing.T) {
	installFakeClock(t)
	s := NewScheduler(1)
	s.Add(NewPriorityTask("a", 1, NewStackAllocator(8), func(c Ctx) (any, error) { return nil, nil }))
	require.Panics(t, func() {
		s.Add(NewPriorityTask("b", 1, NewStackAllocator(8), func(c Ctx) (any, error) { return nil, nil }))
	})
}

func TestSchedulerTaskFaultIsDroppedNotPropagated(t *testing.T) {
	installFakeClock(t)
	task := NewPriorityTask("faulty", 1, NewStackAllocator(64), func(c Ctx) (any, error) {
		panic("boom")
	})
	s := NewScheduler(4)
	s.Add(task)
	require.NotPanics(t, func() { s.Spin() })
	require.True(t, task.Exited())
	require.Equal(t, ExitFailure, task.Result().Kind)
	var faultErr *TaskFaultError
	require.ErrorAs(t, task.Result().Err, &faultErr)
}

func TestSchedulerMetricsTracksDispatchesAndDepths(t *testing.T) {
	installFakeClock(t)
	s := NewScheduler(4, WithSchedulerMetrics(true))
	task := NewPriorityTask("a", 1, NewStackAllocator(64), func(c Ctx) (any, error) { return nil, nil })
	s.Add(task)
	s.Spin()
	snap := s.Metrics().Snapshot()
	require.EqualValues(t, 1, snap.Admitted)
	require.EqualValues(t, 1, snap.Dispatched)
}
