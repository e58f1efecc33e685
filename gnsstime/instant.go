package gnsstime

import "time"

// Instant is a point in time: a duration since a named clock's epoch.
// Two instants may only be compared or subtracted when their clocks are
// equal (spec.md §4.B); the one exception that mixes clocks deliberately
// is TimeConverter.Convert.
type Instant struct {
	clock      ClockId
	sinceEpoch FixedTimeDuration
}

// NewInstant returns the zero-duration instant on the given clock.
func NewInstant(clock ClockId) Instant {
	return Instant{clock: clock}
}

// NewInstantAt returns the instant d after clock's epoch.
func NewInstantAt(clock ClockId, d FixedTimeDuration) Instant {
	return Instant{clock: clock, sinceEpoch: d}
}

// Gnss builds a GNSS-system instant from a week number and time-of-week
// in seconds.
func Gnss(sys System, week int64, tow float64) Instant {
	return Instant{clock: GnssClock(sys), sinceEpoch: Weeks(week).Add(Seconds(tow))}
}

// GnssDuration builds a GNSS-system instant directly from a since-epoch duration.
func GnssDuration(sys System, d FixedTimeDuration) Instant {
	return Instant{clock: GnssClock(sys), sinceEpoch: d}
}

// ReceiverInstant builds a receiver-clock instant from a since-epoch duration.
func ReceiverInstant(d FixedTimeDuration, instance ...uint32) Instant {
	return Instant{clock: ReceiverClock(instance...), sinceEpoch: d}
}

// ReceiverInstantFromTicks builds a receiver-clock instant from a sample
// counter and sample rate (Hz).
func ReceiverInstantFromTicks(sampleCount int64, sampleRate float64, instance ...uint32) Instant {
	return ReceiverInstant(Ticks(sampleCount, sampleRate), instance...)
}

// CurrentUnix returns the host's current time tagged as a Unix-clock instant.
func CurrentUnix() Instant {
	now := time.Now()
	return Instant{clock: UnixClock(), sinceEpoch: Seconds(float64(now.Unix())).Add(NanoSeconds(float64(now.Nanosecond())))}
}

// CurrentUtc returns the host's current UTC time tagged as a UTC-clock instant.
func CurrentUtc() Instant {
	now := time.Now().UTC()
	return Utc_(now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute(), now.Second())
}

// Utc_ builds a UTC-clock instant from a calendar date and time of day. The
// date is always interpreted in UTC, regardless of the host's time zone
// setting, so Utc_(1980,1,1,0,0,0) maps to exactly 315532800 s since the Unix
// epoch; time.Date with time.UTC gives this directly, so no extra offset
// correction is applied.
func Utc_(year, month, day, hour, minute, second int) Instant {
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return Instant{clock: UtcClock(), sinceEpoch: Seconds(float64(t.Unix()))}
}

// Clock returns the instant's clock id.
func (in Instant) Clock() ClockId { return in.clock }

// SinceEpoch returns the duration since the clock's epoch.
func (in Instant) SinceEpoch() FixedTimeDuration { return in.sinceEpoch }

// Week returns the GNSS week number of the instant.
func (in Instant) Week() int64 { return in.sinceEpoch.AsWeeks() }

// TimeOfWeek returns the duration since the start of the instant's week.
func (in Instant) TimeOfWeek() FixedTimeDuration {
	return in.sinceEpoch.Sub(Weeks(in.Week()))
}

// Add returns the instant in.SinceEpoch()+d on the same clock.
func (in Instant) Add(d FixedTimeDuration) Instant {
	return Instant{clock: in.clock, sinceEpoch: in.sinceEpoch.Add(d)}
}

// Sub returns the instant in.SinceEpoch()-d on the same clock.
func (in Instant) Sub(d FixedTimeDuration) Instant {
	return Instant{clock: in.clock, sinceEpoch: in.sinceEpoch.Sub(d)}
}

// Diff returns in - other as a FixedTimeDuration. Panics if the two
// instants' clocks differ: this is a programming error (spec.md §7), not
// a recoverable condition.
func (in Instant) Diff(other Instant) FixedTimeDuration {
	if in.clock != other.clock {
		incompatibleClocksPanic(in.clock, other.clock)
	}
	return in.sinceEpoch.Sub(other.sinceEpoch)
}

// Less reports whether in occurs before other. Panics on clock mismatch,
// unlike the source (spec.md §9 Open Questions), so antisymmetry of "<"
// is never silently violated.
func (in Instant) Less(other Instant) bool {
	if in.clock != other.clock {
		incompatibleClocksPanic(in.clock, other.clock)
	}
	return in.sinceEpoch.Less(other.sinceEpoch)
}

// Equal reports whether in and other name the same clock and duration.
func (in Instant) Equal(other Instant) bool {
	return in.clock == other.clock && in.sinceEpoch.Equal(other.sinceEpoch)
}

func (in Instant) String() string {
	return in.clock.String() + " " + in.sinceEpoch.String()
}
