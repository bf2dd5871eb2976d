// logging.go - structured logging for the scheduler.
//
// The five-call contract below (spec §6.2) is deliberately narrow: a
// logger is not a general-purpose sink, it is exactly the set of events the
// scheduler itself can name without interpretation. Richer diagnostics
// belong in the host's own logging, hung off the same [Logger] via a
// custom implementation.
package rtcoro

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Collection identifies which of the scheduler's three task collections a
// task was moved to or from, for [Logger.LogAdd] and [Logger.LogMove].
type Collection uint8

const (
	CollectionWaiting Collection = iota
	CollectionRunning
	CollectionAwaiting
	CollectionNone
)

func (c Collection) String() string {
	switch c {
	case CollectionWaiting:
		return "waiting"
	case CollectionRunning:
		return "running"
	case CollectionAwaiting:
		return "awaiting"
	default:
		return "none"
	}
}

// Logger is the scheduler's structured logging contract (spec §6.2): five
// calls, one per event the scheduler can observe about its own bookkeeping.
// A Logger implementation must not block the scheduler for long; calls are
// made synchronously from inside [Scheduler.Add] (LogAdd) and
// [Scheduler.Spin] (all other events).
type Logger interface {
	// LogAdd records a task's admission into the collection `to`.
	LogAdd(now TimePoint, name string, id uint64, to Collection)
	// LogMove records a task moved from collection `from` to `to`.
	LogMove(now TimePoint, name string, id uint64, from, to Collection)
	// LogResume records one resume's execution window.
	LogResume(start, end TimePoint, name string, id uint64)
	// LogDelete records a task's removal (completed, faulted, or dropped).
	LogDelete(now TimePoint, name string, id uint64)
	// LogSleep records the scheduler entering its sleep hook until `until`.
	LogSleep(now TimePoint, until TimePoint)
}

// NullLogger discards every event. A Scheduler built without [WithLogger]
// holds no logger at all and skips logging, which has the same effect.
type NullLogger struct{}

func (NullLogger) LogAdd(TimePoint, string, uint64, Collection)              {}
func (NullLogger) LogMove(TimePoint, string, uint64, Collection, Collection) {}
func (NullLogger) LogResume(TimePoint, TimePoint, string, uint64)            {}
func (NullLogger) LogDelete(TimePoint, string, uint64)                       {}
func (NullLogger) LogSleep(TimePoint, TimePoint)                             {}

var _ Logger = NullLogger{}

// OutputLogger writes one structured JSON line per event, via logiface and
// the stumpy encoder — the scheduler's non-hosted logging story mirrored
// onto this package's actual bookkeeping events instead of generic
// messages.
type OutputLogger struct {
	log *logiface.Logger[*stumpy.Event]
}

// NewOutputLogger constructs an OutputLogger writing to w (os.Stderr if
// nil).
func NewOutputLogger(w io.Writer) *OutputLogger {
	if w == nil {
		w = os.Stderr
	}
	return &OutputLogger{
		log: stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		),
	}
}

var _ Logger = (*OutputLogger)(nil)

func (o *OutputLogger) LogAdd(now TimePoint, name string, id uint64, to Collection) {
	o.log.Info().
		Uint64(`tick`, now.Ticks).
		Str(`task`, name).
		Uint64(`id`, id).
		Str(`to`, to.String()).
		Log(`task added`)
}

func (o *OutputLogger) LogMove(now TimePoint, name string, id uint64, from, to Collection) {
	o.log.Info().
		Uint64(`tick`, now.Ticks).
		Str(`task`, name).
		Uint64(`id`, id).
		Str(`from`, from.String()).
		Str(`to`, to.String()).
		Log(`task moved`)
}

func (o *OutputLogger) LogResume(start, end TimePoint, name string, id uint64) {
	o.log.Debug().
		Uint64(`start`, start.Ticks).
		Uint64(`end`, end.Ticks).
		Str(`task`, name).
		Uint64(`id`, id).
		Log(`task resumed`)
}

func (o *OutputLogger) LogDelete(now TimePoint, name string, id uint64) {
	o.log.Info().
		Uint64(`tick`, now.Ticks).
		Str(`task`, name).
		Uint64(`id`, id).
		Log(`task deleted`)
}

func (o *OutputLogger) LogSleep(now TimePoint, until TimePoint) {
	o.log.Debug().
		Uint64(`tick`, now.Ticks).
		Uint64(`until`, until.Ticks).
		Log(`scheduler sleeping`)
}
