package rtcoro

import "sync"

// SchedulerMetrics tracks low-overhead runtime statistics for a
// [Scheduler]: resume-latency distribution and collection depth gauges.
// It is attached at construction via [WithSchedulerMetrics] and is safe
// for concurrent reads from any goroutine while the scheduler's own
// goroutine records into it from [Scheduler.Spin].
type SchedulerMetrics struct {
	mu sync.Mutex

	latency pSquareMultiQuantile

	dispatched     uint64
	admitted       uint64
	missedDeadline uint64

	waitingDepth, waitingPeak   int
	runningDepth, runningPeak   int
	awaitingDepth, awaitingPeak int
}

func newSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{
		latency: newPSquareMultiQuantile(0.50, 0.90, 0.95, 0.99),
	}
}

func (m *SchedulerMetrics) recordResume(d Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Ticks is the finest granularity the runtime's own clock exposes;
	// using it directly (rather than a host wall-clock reading) keeps the
	// quantile estimator meaningful under the simulated/overflow-aware
	// clock used in tests.
	m.latency.update(float64(d.Ticks))
}

func (m *SchedulerMetrics) recordDispatch() {
	m.mu.Lock()
	m.dispatched++
	m.mu.Unlock()
}

func (m *SchedulerMetrics) recordAdmit() {
	m.mu.Lock()
	m.admitted++
	m.mu.Unlock()
}

func (m *SchedulerMetrics) recordMissedDeadline() {
	m.mu.Lock()
	m.missedDeadline++
	m.mu.Unlock()
}

func (m *SchedulerMetrics) sampleQueues(waiting, running, awaiting int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitingDepth, m.runningDepth, m.awaitingDepth = waiting, running, awaiting
	if waiting > m.waitingPeak {
		m.waitingPeak = waiting
	}
	if running > m.runningPeak {
		m.runningPeak = running
	}
	if awaiting > m.awaitingPeak {
		m.awaitingPeak = awaiting
	}
}

// Snapshot is a point-in-time copy of a [SchedulerMetrics], safe to read
// without further locking.
type Snapshot struct {
	Dispatched     uint64
	Admitted       uint64
	MissedDeadline uint64

	WaitingDepth, WaitingPeak   int
	RunningDepth, RunningPeak   int
	AwaitingDepth, AwaitingPeak int

	// ResumeLatencyTicksP50/P90/P95/P99 are streaming quantile estimates
	// (spec §8 has no latency requirement; this is purely diagnostic) of
	// Task.ExecutionWindow's (end-start) width, in clock ticks.
	ResumeLatencyTicksP50 float64
	ResumeLatencyTicksP90 float64
	ResumeLatencyTicksP95 float64
	ResumeLatencyTicksP99 float64
	ResumeLatencyTicksMax float64
}

// Snapshot returns a consistent copy of the current metrics.
func (m *SchedulerMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Dispatched:            m.dispatched,
		Admitted:              m.admitted,
		MissedDeadline:        m.missedDeadline,
		WaitingDepth:          m.waitingDepth,
		WaitingPeak:           m.waitingPeak,
		RunningDepth:          m.runningDepth,
		RunningPeak:           m.runningPeak,
		AwaitingDepth:         m.awaitingDepth,
		AwaitingPeak:          m.awaitingPeak,
		ResumeLatencyTicksP50: m.latency.quantile(0),
		ResumeLatencyTicksP90: m.latency.quantile(1),
		ResumeLatencyTicksP95: m.latency.quantile(2),
		ResumeLatencyTicksP99: m.latency.quantile(3),
		ResumeLatencyTicksMax: m.latency.Max(),
	}
}
