package gnsstime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odrisci/gnss-sdr/gnsstime"
)

func Test_instant_add_sub_diff(t *testing.T) {
	a := gnsstime.Gnss(gnsstime.Gps, 2000, 100.0)
	b := a.Add(gnsstime.Seconds(50))

	assert.True(t, b.Diff(a).Equal(gnsstime.Seconds(50)))
	assert.True(t, a.Diff(b).Equal(gnsstime.Seconds(-50)))
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func Test_instant_diff_panics_on_clock_mismatch(t *testing.T) {
	a := gnsstime.Gnss(gnsstime.Gps, 2000, 0)
	b := gnsstime.Gnss(gnsstime.Galileo, 2000, 0)

	assert.Panics(t, func() { a.Diff(b) })
	assert.Panics(t, func() { a.Less(b) })
}

func Test_instant_week_and_time_of_week(t *testing.T) {
	in := gnsstime.Gnss(gnsstime.Gps, 2200, 123456.5)
	assert.Equal(t, int64(2200), in.Week())
	assert.True(t, in.TimeOfWeek().Equal(gnsstime.Seconds(123456.5)))
}

func Test_utc_known_epoch(t *testing.T) {
	// GPS epoch in UTC is 1980-01-06 00:00:00, i.e. 315964800 s after the
	// Unix epoch (1970-01-01 00:00:00 UTC).
	gpsEpochUtc := gnsstime.Utc_(1980, 1, 6, 0, 0, 0)
	assert.True(t, gpsEpochUtc.SinceEpoch().Equal(gnsstime.Seconds(315964800)))
}

func Test_equal_requires_same_clock_and_duration(t *testing.T) {
	a := gnsstime.ReceiverInstant(gnsstime.Seconds(10), 1)
	b := gnsstime.ReceiverInstant(gnsstime.Seconds(10), 1)
	c := gnsstime.ReceiverInstant(gnsstime.Seconds(10), 2)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
