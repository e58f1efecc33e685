package gnsstime

import "fmt"

// System identifies a clock family: a GNSS constellation time scale, a
// terrestrial time scale (UTC, Unix, NTP, TAI), or the receiver's own
// free-running clock.
type System int

const (
	Receiver System = iota
	Gps
	Galileo
	Glonass
	BeiDou
	Irnss
	Qzss
	Sbas
	Utc
	Unix
	Ntp
	Tai
)

// systemNames gives the short rendering used by ClockId.String, matching the
// teacher's Time2Str-style terse abbreviations ("Rx.", "GPS", ...).
var systemNames = map[System]string{
	Receiver: "Rx.",
	Gps:      "GPS",
	Galileo:  "GAL",
	Glonass:  "GLO",
	BeiDou:   "BDS",
	Irnss:    "IRN",
	Qzss:     "QZS",
	Sbas:     "SBS",
	Utc:      "UTC",
	Unix:     "Unix",
	Ntp:      "NTP",
	Tai:      "TAI",
}

// keepsLeapSecondsTable records whether each clock system counts leap seconds.
// TAI is explicitly normalised to false here (spec.md §9 Open Questions:
// the source's KeepsLeapSeconds switch omits the kTai case on one path; we
// make the omission the rule rather than the bug).
var keepsLeapSecondsTable = map[System]bool{
	Receiver: false,
	Gps:      false,
	Galileo:  false,
	Glonass:  true,
	BeiDou:   false,
	Irnss:    false,
	Qzss:     false,
	Sbas:     false,
	Utc:      true,
	Unix:     true,
	Ntp:      true,
	Tai:      false,
}

// SystemClockID is the reserved instance id meaning "the global reference
// clock of this system", as opposed to a specific receiver/hardware instance.
const SystemClockID uint32 = 0xFFFFFFFF

// ClockId names a clock system plus, optionally, a specific instance of it.
type ClockId struct {
	system     System
	instanceID uint32
}

// GnssClock builds a ClockId for a GNSS constellation time scale.
func GnssClock(sys System, id ...uint32) ClockId {
	return ClockId{system: sys, instanceID: resolveID(id)}
}

// UtcClock builds a ClockId for UTC.
func UtcClock(id ...uint32) ClockId { return ClockId{system: Utc, instanceID: resolveID(id)} }

// UnixClock builds a ClockId for Unix time.
func UnixClock(id ...uint32) ClockId { return ClockId{system: Unix, instanceID: resolveID(id)} }

// NtpClock builds a ClockId for NTP time.
func NtpClock(id ...uint32) ClockId { return ClockId{system: Ntp, instanceID: resolveID(id)} }

// TaiClock builds a ClockId for TAI.
func TaiClock(id ...uint32) ClockId { return ClockId{system: Tai, instanceID: resolveID(id)} }

// ReceiverClock builds a ClockId for a specific receiver instance (default 0).
func ReceiverClock(id ...uint32) ClockId {
	instance := uint32(0)
	if len(id) > 0 {
		instance = id[0]
	}
	return ClockId{system: Receiver, instanceID: instance}
}

func resolveID(id []uint32) uint32 {
	if len(id) > 0 {
		return id[0]
	}
	return SystemClockID
}

// System returns the clock's system.
func (c ClockId) System() System { return c.system }

// InstanceID returns the clock's instance id.
func (c ClockId) InstanceID() uint32 { return c.instanceID }

// IsGnss reports whether c names one of the GNSS constellation time scales.
func (c ClockId) IsGnss() bool {
	switch c.system {
	case Gps, Galileo, Glonass, BeiDou, Irnss, Qzss, Sbas:
		return true
	default:
		return false
	}
}

// IsSystemClock reports whether c names the global reference clock of its
// system, as opposed to a specific hardware/software instance.
func (c ClockId) IsSystemClock() bool { return c.instanceID == SystemClockID }

// KeepsLeapSeconds reports whether c's system counts leap seconds.
func (c ClockId) KeepsLeapSeconds() bool { return keepsLeapSecondsTable[c.system] }

// CompatibleWith reports whether c and other share the same clock system.
// Compatibility alone does not make two instants comparable: Instant.Diff
// and Instant.Less require equal ClockIds (system and instance id) and
// panic otherwise (spec.md §4.B, §7).
func (c ClockId) CompatibleWith(other ClockId) bool { return c.system == other.system }

func (c ClockId) String() string {
	name := systemNames[c.system]
	if c.IsSystemClock() {
		return name
	}
	return fmt.Sprintf("%s#%d", name, c.instanceID)
}
