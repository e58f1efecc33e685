package observables_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odrisci/gnss-sdr/gnsstime"
	"github.com/odrisci/gnss-sdr/observables"
)

type recordingSink struct {
	epochs []observables.Epoch
}

func (r *recordingSink) WriteEpoch(e observables.Epoch) error {
	r.epochs = append(r.epochs, e)
	return nil
}

func Test_engine_bootstraps_receiver_epoch_on_first_flush(t *testing.T) {
	conv := gnsstime.NewTimeConverter()
	sink := &recordingSink{}
	cfg := observables.DefaultConfig()
	engine := observables.NewObservablesEngine(conv, 1, cfg, sink)
	engine.SetChannelCount(4)

	m := observables.ChannelMeasurement{
		ChannelID:             0,
		PRN:                   5,
		System:                gnsstime.Gps,
		Signal:                observables.SignalL1,
		SampleRateHz:          4_000_000,
		TrackingSampleCounter: 0,
		Week:                  2100,
		TowMs:                 100.0 * 1000.0,
		ValidWord:             true,
	}
	engine.HandleChannelMeasurement(m)

	err := engine.FlushEpoch(engine.NextEpochTime())
	assert.NoError(t, err)

	// Once bootstrapped, the receiver instance's clock should resolve
	// against the converter without error.
	out, err := conv.Convert(gnsstime.ReceiverInstant(gnsstime.Zero, 1), gnsstime.GnssClock(gnsstime.Gps))
	assert.NoError(t, err)
	assert.Equal(t, int64(2100), out.Week())
}

func Test_engine_flush_epoch_emits_measurements_and_resets(t *testing.T) {
	conv := gnsstime.NewTimeConverter()
	sink := &recordingSink{}
	cfg := observables.DefaultConfig()
	engine := observables.NewObservablesEngine(conv, 1, cfg, sink)
	engine.SetChannelCount(2)

	engine.HandleChannelMeasurement(observables.ChannelMeasurement{
		ChannelID:             0,
		PRN:                   5,
		System:                gnsstime.Gps,
		Signal:                observables.SignalL1,
		SampleRateHz:          4_000_000,
		TrackingSampleCounter: 4_000, // 1 ms of samples at 4 MHz
		Week:                  2100,
		TowMs:                 100.0 * 1000.0,
		ValidWord:             true,
	})

	epochTime := engine.NextEpochTime()
	err := engine.FlushEpoch(epochTime)
	assert.NoError(t, err)
	assert.Len(t, sink.epochs, 1)
	assert.Len(t, sink.epochs[0].Measurements, 1)
	assert.Equal(t, 5, sink.epochs[0].Measurements[0].PRN)
	assert.True(t, sink.epochs[0].Measurements[0].ValidPseudorange)

	// A second flush with no new measurements produces an empty epoch.
	err = engine.FlushEpoch(engine.NextEpochTime())
	assert.NoError(t, err)
	assert.Len(t, sink.epochs[1].Measurements, 0)
}

func Test_engine_bootstrap_pseudorange_is_nominal_transit(t *testing.T) {
	conv := gnsstime.NewTimeConverter()
	sink := &recordingSink{}
	cfg := observables.DefaultConfig()
	engine := observables.NewObservablesEngine(conv, 1, cfg, sink)
	engine.SetChannelCount(1)

	const fs = 4_000_000.0
	engine.HandleChannelMeasurement(observables.ChannelMeasurement{
		ChannelID:             0,
		PRN:                   12,
		System:                gnsstime.Gps,
		Signal:                observables.SignalL1,
		SampleRateHz:          fs,
		TrackingSampleCounter: 0,
		Week:                  2048,
		TowMs:                 604500.0,
		ValidWord:             true,
	})

	err := engine.FlushEpoch(engine.NextEpochTime())
	assert.NoError(t, err)
	assert.Len(t, sink.epochs[0].Measurements, 1)

	out := sink.epochs[0].Measurements[0]
	assert.True(t, out.ValidPseudorange)
	assert.InDelta(t, 0.07*299792458.0, out.PseudorangeM, 0.07*299792458.0*0.01)
}

func Test_engine_clock_correction_shifts_next_epoch(t *testing.T) {
	conv := gnsstime.NewTimeConverter()
	sink := &recordingSink{}
	cfg := observables.DefaultConfig()
	engine := observables.NewObservablesEngine(conv, 1, cfg, sink)
	engine.SetChannelCount(1)

	engine.HandleChannelMeasurement(observables.ChannelMeasurement{
		ChannelID:             0,
		PRN:                   3,
		System:                gnsstime.Gps,
		Signal:                observables.SignalL1,
		SampleRateHz:          4_000_000,
		TrackingSampleCounter: 0,
		Week:                  2100,
		TowMs:                 100.0 * 1000.0,
		ValidWord:             true,
	})
	assert.NoError(t, engine.FlushEpoch(engine.NextEpochTime()))

	// Before any bootstrap has happened, a correction is simply ignored.
	unaligned := observables.NewObservablesEngine(conv, 2, cfg, sink)
	unaligned.HandlePvtClockCorrection(0.001)
	_, err := conv.Convert(gnsstime.ReceiverInstant(gnsstime.Zero, 2), gnsstime.GnssClock(gnsstime.Gps))
	assert.ErrorIs(t, err, gnsstime.ErrReceiverEpochUnset)

	// A 1 ms correction pulls the next epoch boundary 1 ms earlier than one
	// full 20 ms interval after the previous boundary.
	engine.HandlePvtClockCorrection(0.001)
	assert.NoError(t, engine.FlushEpoch(engine.NextEpochTime()))
	assert.Len(t, sink.epochs, 2)
	step := sink.epochs[1].RxTime.Diff(sink.epochs[0].RxTime)
	assert.True(t, step.Equal(gnsstime.Seconds(0.02).Sub(gnsstime.Seconds(0.001))))
}
