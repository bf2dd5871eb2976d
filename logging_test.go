package rtcoro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	adds, moves, resumes, deletes, sleeps int
}

func (r *recordingLogger) LogAdd(TimePoint, string, uint64, Collection)              { r.adds++ }
func (r *recordingLogger) LogMove(TimePoint, string, uint64, Collection, Collection) { r.moves++ }
func (r *recordingLogger) LogResume(TimePoint, TimePoint, string, uint64)            { r.resumes++ }
func (r *recordingLogger) LogDelete(TimePoint, string, uint64)                       { r.deletes++ }
func (r *recordingLogger) LogSleep(TimePoint, TimePoint)                             { r.sleeps++ }

var _ Logger = (*recordingLogger)(nil)

func TestSchedulerLogsAddResumeAndDelete(t *testing.T) {
	installFakeClock(t)
	rec := &recordingLogger{}
	s := NewScheduler(4, WithLogger(rec))
	task := NewPriorityTask("t", 1, NewStackAllocator(16), func(c Ctx) (any, error) { return nil, nil })
	s.Add(task)
	require.Equal(t, 1, rec.adds)

	s.Spin()
	require.Equal(t, 1, rec.resumes)
	require.Equal(t, 1, rec.deletes)
}

func TestSchedulerLogsSleepWhenIdle(t *testing.T) {
	installFakeClock(t)
	rec := &recordingLogger{}
	s := NewScheduler(4, WithLogger(rec))
	require.False(t, s.Spin())
	require.Equal(t, 1, rec.sleeps)
}

func TestSchedulerLogsMoveOnYield(t *testing.T) {
	installFakeClock(t)
	rec := &recordingLogger{}
	s := NewScheduler(4, WithLogger(rec))
	task := NewPriorityTask("t", 1, NewStackAllocator(16), func(c Ctx) (any, error) {
		Yield(c)
		return nil, nil
	})
	s.Add(task)
	s.Spin()
	require.Equal(t, 1, rec.moves, "NextCycle moves the task back to waiting")
}

func TestNullLoggerIsNoop(t *testing.T) {
	var l NullLogger
	require.NotPanics(t, func() {
		l.LogAdd(TimePoint{}, "n", 1, CollectionRunning)
		l.LogMove(TimePoint{}, "n", 1, CollectionRunning, CollectionWaiting)
		l.LogResume(TimePoint{}, TimePoint{}, "n", 1)
		l.LogDelete(TimePoint{}, "n", 1)
		l.LogSleep(TimePoint{}, TimePoint{})
	})
}

func TestOutputLoggerWritesJSONLines(t *testing.T) {
	var buf recordingWriter
	l := NewOutputLogger(&buf)
	l.LogAdd(tp(1), "task", 1, CollectionRunning)
	require.Greater(t, buf.n, 0)
}

type recordingWriter struct{ n int }

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}
