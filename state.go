package rtcoro

import "sync/atomic"

// schedulerRunState is the lifecycle state of a [Scheduler]'s dispatch
// loop, tracked purely for diagnostics/host integration (spec §4.6 does
// not itself name a state machine — the scheduler's actual behavior is
// entirely captured by its three task collections). Modeled as an atomic
// value rather than a mutex-guarded field so that [Scheduler.state] can be
// read from a host monitoring goroutine without contending with Spin.
type schedulerRunState uint32

const (
	// schedulerAwake is the initial state: constructed, never spun.
	schedulerAwake schedulerRunState = iota
	// schedulerRunning means a [Scheduler.Spin] call is actively promoting
	// or dispatching.
	schedulerRunning
	// schedulerSleeping means Spin found running empty and is blocked in
	// the sleep hook.
	schedulerSleeping
	// schedulerTerminated means [Scheduler.Run] returned after its stop
	// predicate reported true.
	schedulerTerminated
)

func (s schedulerRunState) String() string {
	switch s {
	case schedulerAwake:
		return "awake"
	case schedulerRunning:
		return "running"
	case schedulerSleeping:
		return "sleeping"
	case schedulerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// schedulerState is a lock-free holder for a [schedulerRunState].
type schedulerState struct {
	v atomic.Uint32
}

func (s *schedulerState) store(v schedulerRunState) { s.v.Store(uint32(v)) }

// Load returns the scheduler's current run state.
func (s *schedulerState) Load() schedulerRunState { return schedulerRunState(s.v.Load()) }

// State returns the Scheduler's current run state, for host diagnostics.
func (s *Scheduler) State() schedulerRunState { return s.state.Load() }
