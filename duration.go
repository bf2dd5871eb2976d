package rtcoro

// RoundMode selects the rounding policy used when converting a [Duration]
// between periods of different resolution.
type RoundMode uint8

const (
	// RoundDown truncates toward zero.
	RoundDown RoundMode = iota
	// RoundUp rounds away from zero.
	RoundUp
	// RoundNearest rounds to the nearest representable value, ties away
	// from zero.
	RoundNearest
)

// tickClock is the Clock shared by every Duration and TimePoint in this
// package: a 64-bit natural-wrap ring, matching the widest build-time tick
// width (see SPEC_FULL.md §3.1). Narrower tick widths are available via
// Clock[uint8]/Clock[uint16]/Clock[uint32] directly for callers modeling a
// specific hardware timer register.
var tickClock = NewClock[uint64](^uint64(0))

// Duration is a tick count tagged with a rational period, expressed as
// Num/Den seconds per tick (e.g. Num=1, Den=1_000_000 for microsecond
// ticks). Arithmetic on the Ticks field is modulo 2^64, matching a
// free-running 64-bit hardware counter.
type Duration struct {
	Ticks uint64
	Num   uint64
	Den   uint64
}

// NewDuration constructs a Duration of the given tick count and period.
func NewDuration(ticks, num, den uint64) Duration {
	if den == 0 {
		panic(&PreconditionError{Op: "NewDuration", Message: "denominator must be nonzero"})
	}
	return Duration{Ticks: ticks, Num: num, Den: den}
}

// Add returns d+other, wrapping modulo 2^64. Both operands must share a
// period; callers crossing periods must DurationCast first.
func (d Duration) Add(other Duration) Duration {
	return Duration{Ticks: tickClock.Add(d.Ticks, other.Ticks), Num: d.Num, Den: d.Den}
}

// Sub returns d-other, wrapping modulo 2^64.
func (d Duration) Sub(other Duration) Duration {
	return Duration{Ticks: tickClock.Sub(d.Ticks, other.Ticks), Num: d.Num, Den: d.Den}
}

// Less reports d < other under half-range ordering.
func (d Duration) Less(other Duration) bool {
	return tickClock.Less(d.Ticks, other.Ticks)
}

// LessEqual reports d <= other under half-range ordering.
func (d Duration) LessEqual(other Duration) bool {
	return tickClock.LessEqual(d.Ticks, other.Ticks)
}

// DurationCast converts d from its own period to the period toNum/toDen,
// rounding per mode. This is the only sanctioned lossy conversion; nothing
// in this package implicitly truncates a Duration.
func DurationCast(d Duration, toNum, toDen uint64, mode RoundMode) Duration {
	if toDen == 0 {
		panic(&PreconditionError{Op: "DurationCast", Message: "denominator must be nonzero"})
	}
	// new_ticks = ticks * (d.Num*toDen) / (d.Den*toNum)
	num := d.Num * toDen
	den := d.Den * toNum
	ticks := castRatio(d.Ticks, num, den, mode)
	return Duration{Ticks: ticks, Num: toNum, Den: toDen}
}

// castRatio computes round(x*num/den) per mode. It returns x unchanged when
// num == den, and otherwise computes in two steps to reduce the risk of
// overflowing the intermediate product.
func castRatio(x, num, den uint64, mode RoundMode) uint64 {
	if num == den {
		return x
	}
	// x*num may overflow uint64 for large x; split x*num/den into
	// (x/den)*num + (x%den)*num/den to reduce (not eliminate) overflow risk,
	// which is sufficient for the tick magnitudes this runtime targets.
	q := x / den
	r := x % den
	whole := q * num
	rem := r * num
	wholeFromRem := rem / den
	remFromRem := rem % den

	result := whole + wholeFromRem
	switch mode {
	case RoundDown:
		return result
	case RoundUp:
		if remFromRem != 0 {
			return result + 1
		}
		return result
	case RoundNearest:
		if remFromRem*2 >= den {
			return result + 1
		}
		return result
	default:
		return result
	}
}

// TimePoint is a Duration measured from an unspecified epoch.
type TimePoint struct {
	Duration
}

// Sub returns the distance from other to t as t-other modulo 2^64. When
// other is "after" t under half-range ordering, Ticks holds 2^64 minus the
// distance, which reads as the negative distance when reinterpreted as an
// int64; the unsigned Ticks field itself is then a large value.
func (t TimePoint) Sub(other TimePoint) Duration {
	return Duration{Ticks: tickClock.Sub(t.Ticks, other.Ticks), Num: t.Num, Den: t.Den}
}

// Add returns t advanced by d.
func (t TimePoint) Add(d Duration) TimePoint {
	return TimePoint{t.Duration.Add(d)}
}

// Before reports t < other under half-range ordering.
func (t TimePoint) Before(other TimePoint) bool {
	return t.Duration.Less(other.Duration)
}

// BeforeOrEqual reports t <= other under half-range ordering.
func (t TimePoint) BeforeOrEqual(other TimePoint) bool {
	return t.Duration.LessEqual(other.Duration)
}
