package gnsstime

import "errors"

// Error taxonomy per spec.md §7. Conversion failures are recoverable and are
// returned as error values (TimeConverter.Convert returns (Instant{}, err));
// comparing or subtracting instants on different clocks is the one fail-fast
// condition, surfaced as a panic by incompatibleClocksPanic because it is a
// caller bug, not a recoverable runtime condition.
var (
	// ErrUnknownClock is returned by TimeConverter.Convert when a conversion
	// names a clock with no epoch-offset table entry.
	ErrUnknownClock = errors.New("gnsstime: unknown clock: no epoch offset registered")

	// ErrReceiverEpochUnset is returned by TimeConverter.Convert when a
	// receiver clock has not yet had its epoch registered via
	// TimeConverter.SetReceiverEpoch.
	ErrReceiverEpochUnset = errors.New("gnsstime: receiver epoch not yet set")

	// ErrBadLeapSecondFile is returned by LoadLeapSecondFile when the file
	// contains no record parseable in either the plain-text or USNO format.
	ErrBadLeapSecondFile = errors.New("gnsstime: no leap second records parsed from file")
)

// incompatibleClocksPanic is raised by Instant comparison/subtraction when
// the two operands' clocks differ. This is a programming error per
// spec.md §7/§9 (unlike the source, which silently returns false and
// breaks antisymmetry of "<").
func incompatibleClocksPanic(a, b ClockId) {
	panic("gnsstime: incompatible clocks: " + a.String() + " vs " + b.String())
}
