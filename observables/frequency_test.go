package observables_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odrisci/gnss-sdr/gnsstime"
	"github.com/odrisci/gnss-sdr/observables"
)

func Test_gps_band_centers(t *testing.T) {
	ft := observables.NewFrequencyTable()

	f, ok := ft.Frequency(gnsstime.Gps, observables.SignalL1, 0)
	assert.True(t, ok)
	assert.Equal(t, 1575.42e6, f)

	f, ok = ft.Frequency(gnsstime.Gps, observables.SignalL5, 0)
	assert.True(t, ok)
	assert.Equal(t, 1176.45e6, f)
}

func Test_galileo_e5_band(t *testing.T) {
	ft := observables.NewFrequencyTable()
	f, ok := ft.Frequency(gnsstime.Galileo, observables.SignalE5, 0)
	assert.True(t, ok)
	assert.Equal(t, 1191.795e6, f)
}

func Test_glonass_fdma_slots(t *testing.T) {
	ft := observables.NewFrequencyTable()

	f0, ok := ft.Frequency(gnsstime.Glonass, observables.SignalL1, 0)
	assert.True(t, ok)
	assert.Equal(t, 1602.0e6, f0)

	fPlus1, _ := ft.Frequency(gnsstime.Glonass, observables.SignalL1, 1)
	assert.Equal(t, 1602.0e6+0.5625e6, fPlus1)

	fMinus7, _ := ft.Frequency(gnsstime.Glonass, observables.SignalL1, -7)
	assert.Equal(t, 1602.0e6-7*0.5625e6, fMinus7)
}

func Test_beidou_b1_uses_band_code_2(t *testing.T) {
	ft := observables.NewFrequencyTable()

	f, ok := ft.Frequency(gnsstime.BeiDou, observables.SignalB1, 0)
	assert.True(t, ok)
	assert.Equal(t, 1561.098e6, f)

	_, ok = ft.Frequency(gnsstime.BeiDou, observables.Signal('1'), 0)
	assert.False(t, ok)
}

func Test_unknown_signal_not_ok(t *testing.T) {
	ft := observables.NewFrequencyTable()
	_, ok := ft.Frequency(gnsstime.Gps, observables.Signal('9'), 0)
	assert.False(t, ok)
}
