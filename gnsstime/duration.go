/*------------------------------------------------------------------------------
* duration.go : fixed-point duration arithmetic for multi-decade GNSS time spans
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package gnsstime

import (
	"fmt"
	"math"
	"math/big"
)

const (
	secondsPerHour int64 = 3600
	secondsPerDay  int64 = 24 * secondsPerHour
	secondsPerWeek int64 = 7 * secondsPerDay

	// femtoSecondsPerSecond is the sub-second resolution: 1 fs = 1e-15 s.
	femtoSecondsPerSecond int64 = 1_000_000_000_000_000
)

var bigFemtoSecondsPerSecond = big.NewInt(femtoSecondsPerSecond)

// FixedTimeDuration is a signed duration represented as whole seconds plus a
// sub-second remainder in units of 1 femtosecond. The pair is always kept
// normalised with the sub-second component in the half-open interval
// [0, 1e15), so the sign of the duration is carried by the seconds field
// alone (the sub-second field is never negative). This convention lets
// equality and ordering compare the two int64 fields directly with no
// special-casing.
type FixedTimeDuration struct {
	seconds   int64
	subSecond int64 // femtoseconds, always in [0, femtoSecondsPerSecond)
}

// Zero is the zero-length duration.
var Zero = FixedTimeDuration{}

func normalise(seconds, subSecond int64) FixedTimeDuration {
	q := subSecond / femtoSecondsPerSecond
	r := subSecond % femtoSecondsPerSecond
	if r < 0 {
		r += femtoSecondsPerSecond
		q--
	}
	return FixedTimeDuration{seconds: seconds + q, subSecond: r}
}

// Weeks builds a duration of n whole weeks.
func Weeks(n int64) FixedTimeDuration {
	return FixedTimeDuration{seconds: n * secondsPerWeek}
}

// Days builds a duration of n whole days.
func Days(n int64) FixedTimeDuration {
	return FixedTimeDuration{seconds: n * secondsPerDay}
}

// Hours builds a duration of n whole hours.
func Hours(n int64) FixedTimeDuration {
	return FixedTimeDuration{seconds: n * secondsPerHour}
}

// Seconds builds a duration from a floating-point second count.
func Seconds(s float64) FixedTimeDuration {
	whole := math.Floor(s)
	frac := s - whole
	return normalise(int64(whole), int64(math.Round(frac*float64(femtoSecondsPerSecond))))
}

// MilliSeconds builds a duration from a floating-point millisecond count.
func MilliSeconds(ms float64) FixedTimeDuration { return Seconds(ms * 1e-3) }

// MicroSeconds builds a duration from a floating-point microsecond count.
func MicroSeconds(us float64) FixedTimeDuration { return Seconds(us * 1e-6) }

// NanoSeconds builds a duration from a floating-point nanosecond count.
func NanoSeconds(ns float64) FixedTimeDuration { return Seconds(ns * 1e-9) }

// Ticks builds a duration from a tick count at the given (integer) tick rate
// in Hz. The ticks-modulo-rate residue is converted through a fractional
// seconds double, which bounds the rounding error below one tick as called
// for in spec.md §3.
func Ticks(ticks int64, rate float64) FixedTimeDuration {
	intRate := int64(rate)
	if intRate == 0 {
		return Zero
	}
	whole := ticks / intRate
	rem := ticks % intRate
	frac := float64(rem) / float64(intRate)
	return Seconds(float64(whole)).Add(Seconds(frac))
}

// Add returns d + other.
func (d FixedTimeDuration) Add(other FixedTimeDuration) FixedTimeDuration {
	return normalise(d.seconds+other.seconds, d.subSecond+other.subSecond)
}

// Sub returns d - other.
func (d FixedTimeDuration) Sub(other FixedTimeDuration) FixedTimeDuration {
	return normalise(d.seconds-other.seconds, d.subSecond-other.subSecond)
}

// Neg returns -d.
func (d FixedTimeDuration) Neg() FixedTimeDuration {
	return normalise(-d.seconds, -d.subSecond)
}

func (d FixedTimeDuration) toBig() *big.Int {
	n := new(big.Int).Mul(big.NewInt(d.seconds), bigFemtoSecondsPerSecond)
	return n.Add(n, big.NewInt(d.subSecond))
}

func fromBig(n *big.Int) FixedTimeDuration {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(n, bigFemtoSecondsPerSecond, r)
	return normalise(q.Int64(), r.Int64())
}

// Mul returns d * n using an exact widening multiply so that no precision is
// lost for any product representable in the (seconds, sub-second) pair. This
// is the Go-idiomatic equivalent of the source's split-halves 128-bit
// multiply (see DESIGN.md): math/big.Int gives an exact intermediate without
// relying on the shift-into-sign-bit trick the C++ reference uses.
func (d FixedTimeDuration) Mul(n int64) FixedTimeDuration {
	return fromBig(new(big.Int).Mul(d.toBig(), big.NewInt(n)))
}

// Div returns d / n (truncated toward zero), computed with the same exact
// widening intermediate as Mul.
func (d FixedTimeDuration) Div(n int64) FixedTimeDuration {
	return fromBig(new(big.Int).Quo(d.toBig(), big.NewInt(n)))
}

// RemainderMod returns the unique r such that r + k*m == d for some integer k
// and 0 <= r < m, for m > 0. Uses Euclidean division (math/big.Int.DivMod)
// so the result is exact and always non-negative regardless of the sign of d.
func (d FixedTimeDuration) RemainderMod(m FixedTimeDuration) FixedTimeDuration {
	a := d.toBig()
	b := m.toBig()
	q, r := new(big.Int), new(big.Int)
	q.DivMod(a, b, r)
	return fromBig(r)
}

// AsSeconds returns the duration as a floating-point second count. This may
// lose precision for very large durations (multi-decade spans at femtosecond
// resolution exceed float64's ~15-17 significant digits); callers needing
// exactness should use the integer accessors instead.
func (d FixedTimeDuration) AsSeconds() float64 {
	return float64(d.seconds) + float64(d.subSecond)/float64(femtoSecondsPerSecond)
}

// AsWeeks returns floor(seconds / 604800) as a whole week count.
func (d FixedTimeDuration) AsWeeks() int64 {
	weeks := d.seconds / secondsPerWeek
	if d.seconds%secondsPerWeek != 0 && (d.seconds < 0) {
		weeks--
	}
	return weeks
}

// AsTicks returns the duration expressed as an integer tick count at the
// given sample rate (Hz).
func (d FixedTimeDuration) AsTicks(rate float64) int64 {
	whole := int64(float64(d.seconds) * rate)
	frac := math.Round(float64(d.subSecond) / float64(femtoSecondsPerSecond) * rate)
	return whole + int64(frac)
}

// Compare returns -1, 0 or +1 as d is less than, equal to, or greater than other.
func (d FixedTimeDuration) Compare(other FixedTimeDuration) int {
	if d.seconds != other.seconds {
		if d.seconds < other.seconds {
			return -1
		}
		return 1
	}
	if d.subSecond != other.subSecond {
		if d.subSecond < other.subSecond {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether d < other.
func (d FixedTimeDuration) Less(other FixedTimeDuration) bool { return d.Compare(other) < 0 }

// Equal reports whether d == other (bit-exact on the normalised pair).
func (d FixedTimeDuration) Equal(other FixedTimeDuration) bool { return d == other }

// String renders the duration as "N Week(s) T s" where T is the floating
// time-of-week, per spec.md §4.A.
func (d FixedTimeDuration) String() string {
	weeks := d.AsWeeks()
	plural := "s"
	if weeks == 1 || weeks == -1 {
		plural = ""
	}
	tow := float64(d.seconds-weeks*secondsPerWeek) + float64(d.subSecond)/float64(femtoSecondsPerSecond)
	return fmt.Sprintf("%d Week%s %v s", weeks, plural, tow)
}
