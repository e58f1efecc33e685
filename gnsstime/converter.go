package gnsstime

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// epochOffsetEntry pairs a clock with the duration from the NTP epoch
// (1900-01-01 00:00 UTC) to that clock's own epoch, counted leap-free
// (spec.md §3 EpochOffsetEntry).
type epochOffsetEntry struct {
	clock  ClockId
	offset FixedTimeDuration
}

// leapSecondEntry pairs an NTP-time instant with the cumulative leap-second
// count that applies from that instant onward (spec.md §3 LeapSecondEntry).
type leapSecondEntry struct {
	ntpEpoch        FixedTimeDuration
	cumulativeLeaps int64
}

// TimeConverter holds the epoch-offset table and leap-second table needed to
// convert Instants between clocks, and the mutable registry of receiver
// clock epochs (spec.md §4.D). A TimeConverter owns its own tables; nothing
// is process-global (spec.md §9: the source's singleton is re-architected as
// an explicitly constructed, explicitly injected handle).
type TimeConverter struct {
	mu           sync.Mutex
	epochOffsets []epochOffsetEntry
	leapSeconds  []leapSecondEntry // kept in descending order of ntpEpoch
}

func yearsAsDays(n int64) FixedTimeDuration { return Days(n * 365) }

// leapTransitionsNtpSeconds are the historical leap-second transition
// instants, expressed as whole seconds since the NTP epoch, in chronological
// (ascending) order. Seeded from the same 28-entry table the teacher's
// gnss_time_converter.cc carries.
var leapTransitionsNtpSeconds = []int64{
	2272060800, 2287785600, 2303683200, 2335219200, 2366755200, 2398291200,
	2429913600, 2461449600, 2492985600, 2524521600, 2571782400, 2603318400,
	2634854400, 2698012800, 2776982400, 2840140800, 2871676800, 2918937600,
	2950473600, 2982009600, 3029443200, 3076704000, 3124137600, 3345062400,
	3439756800, 3550089600, 3644697600, 3692217600,
}

// NewTimeConverter builds a converter with the standard GNSS/UTC/Unix/NTP/TAI
// epoch-offset table and the historical leap-second table pre-loaded. No
// receiver clock is registered yet; conversions involving a receiver clock
// fail with ErrReceiverEpochUnset until SetReceiverEpoch is called.
func NewTimeConverter() *TimeConverter {
	c := &TimeConverter{}

	unixOffset := yearsAsDays(70).Add(Days(17))
	gpsOffset := unixOffset.Add(yearsAsDays(10)).Add(Days(2)).Add(Days(5)).Add(Seconds(19))
	galileoOffset := gpsOffset.Add(Weeks(1024))
	beidouOffset := gpsOffset.Add(yearsAsDays(26)).Add(Days(7)).Sub(Days(5)).Add(Seconds(14))

	c.epochOffsets = []epochOffsetEntry{
		{clock: GnssClock(Gps), offset: gpsOffset},
		{clock: GnssClock(Galileo), offset: galileoOffset},
		{clock: GnssClock(Glonass), offset: gpsOffset},
		{clock: GnssClock(BeiDou), offset: beidouOffset},
		{clock: UnixClock(), offset: unixOffset},
		{clock: UtcClock(), offset: unixOffset},
		{clock: NtpClock(), offset: Zero},
		{clock: TaiClock(), offset: Zero},
	}

	cumulative := int64(10)
	for _, secs := range leapTransitionsNtpSeconds {
		c.AddLeapSecondAt(NewInstantAt(NtpClock(), Seconds(float64(secs))), cumulative)
		cumulative++
	}

	return c
}

func (c *TimeConverter) findOffset(clock ClockId) (FixedTimeDuration, bool) {
	for _, e := range c.epochOffsets {
		if e.clock == clock {
			return e.offset, true
		}
	}
	return Zero, false
}

// convertNoLeaps performs the pure epoch-offset shift between two clocks,
// with no leap-second adjustment (spec.md §4.D algorithm step 1).
func (c *TimeConverter) convertNoLeaps(in Instant, outClock ClockId) (Instant, error) {
	if in.clock == outClock {
		return in, nil
	}

	inOffset, ok := c.findOffset(in.clock)
	if !ok {
		return Instant{}, unknownClockErr(in.clock)
	}
	outOffset, ok := c.findOffset(outClock)
	if !ok {
		return Instant{}, unknownClockErr(outClock)
	}

	delta := inOffset.Sub(outOffset)
	return NewInstantAt(outClock, in.sinceEpoch.Add(delta)), nil
}

func unknownClockErr(clock ClockId) error {
	if clock.System() == Receiver {
		return ErrReceiverEpochUnset
	}
	return ErrUnknownClock
}

// leapsAt returns the cumulative leap-second count applying at the given NTP
// instant, by linearly scanning the descending leap table for the first
// entry whose ntpEpoch is strictly less than the query (spec.md §4.D
// algorithm step 2). A query earlier than every table entry yields zero.
func (c *TimeConverter) leapsAt(ntpSinceEpoch FixedTimeDuration) int64 {
	for _, e := range c.leapSeconds {
		if e.ntpEpoch.Less(ntpSinceEpoch) {
			return e.cumulativeLeaps
		}
	}
	return 0
}

// Convert maps in to the given output clock, applying both the epoch-offset
// shift and, when exactly one of the two clocks keeps leap seconds, the
// leap-second correction. Returns (Instant{}, err) with err one of
// ErrUnknownClock / ErrReceiverEpochUnset when the conversion cannot be
// performed; this is always recoverable by the caller (spec.md §7).
func (c *TimeConverter) Convert(in Instant, outClock ClockId) (Instant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.convertLocked(in, outClock)
}

func (c *TimeConverter) convertLocked(in Instant, outClock ClockId) (Instant, error) {
	out, err := c.convertNoLeaps(in, outClock)
	if err != nil {
		return Instant{}, err
	}

	if in.clock.KeepsLeapSeconds() == outClock.KeepsLeapSeconds() {
		return out, nil
	}

	ntp, err := c.convertNoLeaps(in, NtpClock())
	if err != nil {
		return Instant{}, err
	}

	leaps := c.leapsAt(ntp.sinceEpoch)
	if leaps == 0 {
		return out, nil
	}

	delta := Seconds(float64(leaps))
	if outClock.KeepsLeapSeconds() {
		return out.Sub(delta), nil
	}
	return out.Add(delta), nil
}

// AddLeapSecondAt inserts a new leap-second transition. The new entry must be
// later (in NTP time) than every existing entry; otherwise the table is left
// unmodified and false is returned (spec.md §4.D, ErrLeapSecondOutOfOrder in
// the error taxonomy). An entry whose NTP epoch matches the table head
// exactly is treated as a replace of that head's cumulative count rather than
// rejected (spec.md §9 Open Questions: "treat duplicates as 'replace'").
func (c *TimeConverter) AddLeapSecondAt(leapEpoch Instant, cumulativeLeaps int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ntp, err := c.convertNoLeaps(leapEpoch, NtpClock())
	if err != nil {
		return false
	}

	if len(c.leapSeconds) > 0 {
		if c.leapSeconds[0].ntpEpoch.Equal(ntp.sinceEpoch) {
			c.leapSeconds[0].cumulativeLeaps = cumulativeLeaps
			return true
		}
		if !c.leapSeconds[0].ntpEpoch.Less(ntp.sinceEpoch) {
			return false
		}
	}

	entry := leapSecondEntry{ntpEpoch: ntp.sinceEpoch, cumulativeLeaps: cumulativeLeaps}
	c.leapSeconds = append([]leapSecondEntry{entry}, c.leapSeconds...)
	return true
}

// AddLeapSecond adds a leap-second transition given as a UTC calendar date,
// converting it to NTP time and delegating to AddLeapSecondAt. This is the
// entry point LoadLeapSecondFile feeds each parsed record through.
func (c *TimeConverter) AddLeapSecond(year, month, day, hour, minute, second int, cumulativeLeaps int64) bool {
	return c.AddLeapSecondAt(Utc_(year, month, day, hour, minute, second), cumulativeLeaps)
}

var usnoMonths = [...]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// LoadLeapSecondFile loads a leap-second table from disk, recognising either
// of the two formats the teacher's Read_Leaps/ReadLeapsText/ReadLeapsUsno
// accept: a plain-text table of "year month day hour min sec utc-gpst"
// records (an optional trailing '#' comment is stripped), or the USNO
// leapsec.dat format ("YYYY MON D =JD nnnnnn.5 TAI-UTC= nn.0 S ..."). Each
// parsed record is handed to AddLeapSecond. Returns the number of records
// parsed, including any that AddLeapSecond rejected as out of order, or an
// error if the file cannot be opened or no record in either format could be
// parsed.
func (c *TimeConverter) LoadLeapSecondFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := c.loadLeapsText(f)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		n, err = c.loadLeapsUsno(f)
		if err != nil {
			return 0, err
		}
	}
	if n == 0 {
		return 0, ErrBadLeapSecondFile
	}
	return n, nil
}

// loadLeapsText parses the plain-text "year month day hour min sec
// utc-gpst" leap table format. utc-gpst is negative (GPS does not count
// leap seconds, UTC does); the table's cumulative-leaps convention is
// TAI-UTC, so cumulativeLeaps = 19 − utc_gpst (GPS−UTC = TAI−UTC − 19).
func (c *TimeConverter) loadLeapsText(f *os.File) (int, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		line := strings.SplitN(scanner.Text(), "#", 2)[0]
		if strings.TrimSpace(line) == "" {
			continue
		}
		var year, month, day, hour, minute, second int
		var utcGpst float64
		if _, err := fmt.Sscanf(line, "%d %d %d %d %d %d %f", &year, &month, &day, &hour, &minute, &second, &utcGpst); err != nil {
			continue
		}
		c.AddLeapSecond(year, month, day, hour, minute, second, int64(19-utcGpst))
		n++
	}
	return n, scanner.Err()
}

// loadLeapsUsno parses the USNO leapsec.dat format, where each applicable
// line already carries the TAI-UTC cumulative count directly.
func (c *TimeConverter) loadLeapsUsno(f *os.File) (int, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		var year, day int
		var month string
		var jd, taiUtc float64
		fields, err := fmt.Sscanf(scanner.Text(), "%d %s %d =JD %f TAI-UTC= %f", &year, &month, &day, &jd, &taiUtc)
		if err != nil || fields < 5 || year < 1980 {
			continue
		}
		monthIdx := -1
		for i, name := range usnoMonths {
			if strings.EqualFold(name, month) {
				monthIdx = i + 1
				break
			}
		}
		if monthIdx < 0 {
			continue
		}
		c.AddLeapSecond(year, monthIdx, day, 0, 0, 0, int64(taiUtc))
		n++
	}
	return n, scanner.Err()
}

// SetReceiverEpoch registers (or replaces) the epoch of the receiver clock
// with the given instance id, such that its duration-zero corresponds to
// epoch (first converted to TAI). If epoch cannot be converted to TAI (e.g.
// it is itself an unregistered receiver clock), the table is left unchanged.
func (c *TimeConverter) SetReceiverEpoch(instanceID uint32, epoch Instant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	taiEpoch, err := c.convertLocked(epoch, TaiClock())
	if err != nil {
		return
	}

	rxClock := ReceiverClock(instanceID)
	entry := epochOffsetEntry{clock: rxClock, offset: taiEpoch.sinceEpoch}

	for i, e := range c.epochOffsets {
		if e.clock == rxClock {
			c.epochOffsets[i] = entry
			return
		}
	}
	c.epochOffsets = append(c.epochOffsets, entry)
}
