package gnsstime_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odrisci/gnss-sdr/gnsstime"
)

func Test_gnss_round_trip_identity(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	in := gnsstime.Gnss(gnsstime.Gps, 2100, 12345.5)

	gal, err := c.Convert(in, gnsstime.GnssClock(gnsstime.Galileo))
	assert.NoError(t, err)
	out, err := c.Convert(gal, gnsstime.GnssClock(gnsstime.Gps))
	assert.NoError(t, err)
	assert.True(t, out.Equal(in))
}

func Test_galileo_is_gps_plus_1024_weeks(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	gps := gnsstime.Gnss(gnsstime.Gps, 2100, 0)

	gal, err := c.Convert(gps, gnsstime.GnssClock(gnsstime.Galileo))
	assert.NoError(t, err)
	assert.Equal(t, int64(2100-1024), gal.Week())
}

func Test_known_gps_epoch_in_utc(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	gpsEpoch := gnsstime.Gnss(gnsstime.Gps, 0, 0)

	utc, err := c.Convert(gpsEpoch, gnsstime.UtcClock())
	assert.NoError(t, err)
	assert.True(t, utc.Equal(gnsstime.Utc_(1980, 1, 6, 0, 0, 0)))
}

func Test_receiver_conversion_fails_before_set_succeeds_after(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	rx := gnsstime.ReceiverInstant(gnsstime.Seconds(5), 9)

	_, err := c.Convert(rx, gnsstime.GnssClock(gnsstime.Gps))
	assert.ErrorIs(t, err, gnsstime.ErrReceiverEpochUnset)

	c.SetReceiverEpoch(9, gnsstime.Gnss(gnsstime.Gps, 2100, 0))

	out, err := c.Convert(rx, gnsstime.GnssClock(gnsstime.Gps))
	assert.NoError(t, err)
	assert.True(t, out.Week() >= 2100)
}

func Test_unknown_clock_returns_error(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	in := gnsstime.Gnss(gnsstime.Gps, 2100, 0)

	_, err := c.Convert(in, gnsstime.GnssClock(gnsstime.Irnss))
	assert.ErrorIs(t, err, gnsstime.ErrUnknownClock)
}

func Test_add_leap_second_rejects_non_monotonic(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	past := gnsstime.NewInstantAt(gnsstime.NtpClock(), gnsstime.Seconds(1_000_000_000))

	ok := c.AddLeapSecondAt(past, 99)
	assert.False(t, ok)

	future := gnsstime.NewInstantAt(gnsstime.NtpClock(), gnsstime.Seconds(4_000_000_000))
	ok = c.AddLeapSecondAt(future, 38)
	assert.True(t, ok)
}

func Test_add_leap_second_duplicate_epoch_replaces(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	epoch := gnsstime.NewInstantAt(gnsstime.NtpClock(), gnsstime.Seconds(4_000_000_000))

	assert.True(t, c.AddLeapSecondAt(epoch, 38))
	assert.True(t, c.AddLeapSecondAt(epoch, 39))

	// The replace must have taken effect rather than being rejected or
	// appended as a second entry: a query just after the epoch sees the
	// replacement's cumulative count, not the original.
	query := gnsstime.NewInstantAt(gnsstime.NtpClock(), gnsstime.Seconds(4_000_000_001))
	tai, err := c.Convert(query, gnsstime.TaiClock())
	assert.NoError(t, err)
	assert.True(t, tai.SinceEpoch().Equal(query.SinceEpoch().Add(gnsstime.Seconds(39))))
}

func Test_load_leap_second_file_text_format(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "leaps-*.txt")
	assert.NoError(t, err)
	_, err = f.WriteString("2017 1 1 0 0 0 -18 # leap\n2015 7 1 0 0 0 -17\n")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	c := gnsstime.NewTimeConverter()
	n, err := c.LoadLeapSecondFile(f.Name())
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func Test_load_leap_second_file_usno_format(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "leapsec-*.dat")
	assert.NoError(t, err)
	_, err = f.WriteString("2017 JAN  1 =JD 2457754.5  TAI-UTC=  37.0       S + (MJD - 41317.) X 0.0      S\n")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	c := gnsstime.NewTimeConverter()
	n, err := c.LoadLeapSecondFile(f.Name())
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func Test_load_leap_second_file_missing_returns_error(t *testing.T) {
	c := gnsstime.NewTimeConverter()
	_, err := c.LoadLeapSecondFile("/nonexistent/leaps.dat")
	assert.Error(t, err)
}
