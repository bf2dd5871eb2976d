package rtcoro

// schedulerOptions holds configuration accumulated from [SchedulerOption]
// values passed to [NewScheduler].
type schedulerOptions struct {
	logger         Logger
	metricsEnabled bool
	sleepUntil     func(TimePoint)
}

// SchedulerOption configures a [Scheduler] at construction, following the
// functional-options-via-interface pattern used throughout this package's
// teacher lineage: an unexported implementation wraps a closure over
// *schedulerOptions, so new option kinds never break existing call sites.
type SchedulerOption interface {
	applyScheduler(*schedulerOptions)
}

type schedulerOptionFunc func(*schedulerOptions)

func (f schedulerOptionFunc) applyScheduler(o *schedulerOptions) { f(o) }

// WithLogger attaches a [Logger] that the Scheduler calls synchronously
// from inside [Scheduler.Add] for every admission and from inside
// [Scheduler.Spin] for every move, resume, deletion, and sleep event (spec
// §6.2). The default is no logging.
func WithLogger(l Logger) SchedulerOption {
	return schedulerOptionFunc(func(o *schedulerOptions) { o.logger = l })
}

// WithSchedulerMetrics enables [SchedulerMetrics] collection, retrievable
// via [Scheduler.Metrics]. Disabled by default: recording a resume-latency
// sample and sampling queue depths on every [Scheduler.Spin] is cheap but
// not free, and a deeply embedded target may not want the extra bookkeeping
// in its hot path.
func WithSchedulerMetrics(enabled bool) SchedulerOption {
	return schedulerOptionFunc(func(o *schedulerOptions) { o.metricsEnabled = enabled })
}

// WithSleepUntil overrides this Scheduler's sleep hook independently of the
// package-wide [Hooks.SleepUntil] installed via [SetHooks] — useful for a
// host running more than one Scheduler with different idle strategies
// (e.g. one backed by a low-power timer, one busy-waiting for tests).
func WithSleepUntil(f func(TimePoint)) SchedulerOption {
	return schedulerOptionFunc(func(o *schedulerOptions) { o.sleepUntil = f })
}

func resolveSchedulerOptions(opts []SchedulerOption) *schedulerOptions {
	cfg := &schedulerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyScheduler(cfg)
	}
	return cfg
}
