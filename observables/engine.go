package observables

import (
	"log"
	"math"
	"sync"

	"github.com/odrisci/gnss-sdr/gnsstime"
)

// speedOfLightMps is the vacuum speed of light, used to turn a transit-time
// duration into a pseudorange in metres.
const speedOfLightMps = 299792458.0

// defaultNominalTransitTimeMs is the bootstrap assumption for how long a
// signal took to reach the receiver before the receiver clock has been
// disciplined against a PVT solution (spec.md §9 Open Questions: a
// configurable with this default, not a hard-coded constant).
const defaultNominalTransitTimeMs = 70.0

// Config configures an ObservablesEngine.
type Config struct {
	RateHz               float64
	NominalTransitTimeMs float64
}

// DefaultConfig returns the engine defaults: 50 Hz (20 ms interval), 70 ms
// nominal transit time.
func DefaultConfig() Config {
	return Config{
		RateHz:               50.0,
		NominalTransitTimeMs: defaultNominalTransitTimeMs,
	}
}

// Epoch is one receiver-synchronous set of channel observables, ready to be
// handed to a Sink. RxTime is the engine's own epoch-boundary instant (the
// nominal epoch tick, corrected by the current rx_epoch_offset); each
// channel's own propagated instant lives on ChannelMeasurement.RxTime.
type Epoch struct {
	RxTime       gnsstime.Instant
	Measurements []ChannelMeasurement
}

// Sink receives completed epochs. dump.Sink and dump.StreamSink both
// implement this.
type Sink interface {
	WriteEpoch(Epoch) error
}

// ObservablesEngine aligns raw per-channel tracking measurements onto a
// common receiver-time grid and emits receiver-synchronous Epochs. Its
// concurrency model is the teacher's: a single mutex guards all mutable
// state (RtkSvr.Lock/RtkSvrLock in rtksvr.go), and channel measurements
// arrive one at a time via HandleChannelMeasurement from whatever goroutine
// owns the corresponding tracking channel.
type ObservablesEngine struct {
	mu sync.Mutex

	cfg        Config
	converter  *gnsstime.TimeConverter
	freqTable  FrequencyTable
	instanceID uint32

	channels []ChannelMeasurement

	rxEpochAligned bool
	rxEpochOffset  gnsstime.FixedTimeDuration
	epochTicks     int64

	sink Sink
}

// NewObservablesEngine builds an engine bound to converter (so the caller
// controls clock/leap-second state) and to instanceID, the receiver clock
// instance this engine's epochs are tagged with.
func NewObservablesEngine(converter *gnsstime.TimeConverter, instanceID uint32, cfg Config, sink Sink) *ObservablesEngine {
	return &ObservablesEngine{
		cfg:        cfg,
		converter:  converter,
		freqTable:  NewFrequencyTable(),
		instanceID: instanceID,
		sink:       sink,
	}
}

// SetChannelCount allocates (or reallocates) the fixed set of channel slots
// the engine tracks. Existing measurements are discarded.
func (e *ObservablesEngine) SetChannelCount(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channels = make([]ChannelMeasurement, n)
	for i := range e.channels {
		e.channels[i].ChannelID = i
	}
}

// HandleChannelMeasurement records a tracking channel's latest measurement.
// It does not by itself emit an epoch; call FlushEpoch once every channel
// expected this cycle has reported (or on the rate-hz timer).
func (e *ObservablesEngine) HandleChannelMeasurement(m ChannelMeasurement) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m.ChannelID < 0 || m.ChannelID >= len(e.channels) {
		log.Printf("observables: channel measurement for out-of-range channel %d ignored", m.ChannelID)
		return
	}
	e.channels[m.ChannelID] = m
}

// bootstrapLocked seeds the receiver clock's epoch the first time a channel
// measurement with a valid decoded transmit time fails to convert against a
// registered receiver epoch (spec.md §4.F.2.d): true time "now" is assumed
// to be the channel's decoded transmit time plus the nominal transit time,
// and that true instant is pinned against the receiver's current
// sample-time reading to derive the absolute instant at which the
// receiver's sample counter was zero. The residual between the receiver's
// raw sample-domain instant and the nominal one, each folded modulo one
// observable interval, becomes the initial rx_epoch_offset so that future
// epoch ticks land on the same grid this measurement implies.
func (e *ObservablesEngine) bootstrapLocked(tTx, tRx gnsstime.Instant) {
	nominalTransit := gnsstime.MilliSeconds(e.cfg.NominalTransitTimeMs)
	tRxNominal := tTx.Add(nominalTransit)
	receiverZero := tRxNominal.Sub(tRx.SinceEpoch())

	e.converter.SetReceiverEpoch(e.instanceID, receiverZero)
	e.rxEpochAligned = true

	interval := gnsstime.Seconds(1.0 / e.cfg.RateHz)
	rawMod := tRx.SinceEpoch().RemainderMod(interval)
	nominalMod := tRxNominal.SinceEpoch().RemainderMod(interval)
	e.rxEpochOffset = rawMod.Sub(nominalMod).RemainderMod(interval)
}

// HandlePvtClockCorrection re-centres the receiver clock epoch once a PVT
// solution is available, mirroring msg_handler_pvt_to_observables (spec.md
// §4.F clock-correction handler): the zero-duration receiver instant is
// converted to GPS time and re-anchored deltaSeconds later, then the
// running epoch offset absorbs deltaSeconds modulo one observable interval
// so epochs keep landing on the configured rate-hz grid instead of
// drifting off it by whole intervals.
func (e *ObservablesEngine) HandlePvtClockCorrection(deltaSeconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rxEpochAligned {
		return
	}

	zero := gnsstime.ReceiverInstant(gnsstime.Zero, e.instanceID)
	gps, err := e.converter.Convert(zero, gnsstime.GnssClock(gnsstime.Gps))
	if err != nil {
		log.Printf("observables: clock correction ignored: %v", err)
		return
	}

	newEpoch := gps.Add(gnsstime.Seconds(deltaSeconds))
	e.converter.SetReceiverEpoch(e.instanceID, newEpoch)

	interval := gnsstime.Seconds(1.0 / e.cfg.RateHz)
	e.rxEpochOffset = e.rxEpochOffset.Add(gnsstime.Seconds(deltaSeconds)).RemainderMod(interval)
}

// FlushEpoch computes observables for every currently-valid channel and
// hands the resulting Epoch to the configured Sink, then clears the
// per-epoch measurement state (empty_current_measurements in the teacher's
// domain). Channels with no live measurement are omitted from the epoch.
// epochRxInstant is the nominal (uncorrected) receiver-clock instant the
// epoch channel ticked at; NextEpochTime produces it.
func (e *ObservablesEngine) FlushEpoch(epochRxInstant gnsstime.Instant) error {
	e.mu.Lock()

	out := make([]ChannelMeasurement, 0, len(e.channels))
	for i := range e.channels {
		ch := &e.channels[i]
		if ch.Empty() {
			continue
		}
		out = append(out, e.computeObservableLocked(epochRxInstant, *ch))
		ch.Reset()
	}
	targetBoundary := epochRxInstant.Sub(e.rxEpochOffset)
	sink := e.sink
	e.mu.Unlock()

	epoch := Epoch{RxTime: targetBoundary, Measurements: out}
	if sink == nil {
		return nil
	}
	return sink.WriteEpoch(epoch)
}

// computeObservableLocked turns a raw channel measurement into a
// pseudorange/phase/Doppler observable, following spec.md §4.F.2 b-f:
// form the receive instant t_rx from the channel's own sample counter and
// rate, convert it onto the measurement's GNSS clock (bootstrapping the
// receiver epoch on first failure), derive the raw pseudorange from the
// transmit instant t_tx (itself corrected by the residual code phase),
// then propagate phase/range/sample-counter from t_rx to the epoch
// boundary using the channel's own Doppler and carrier wavelength.
func (e *ObservablesEngine) computeObservableLocked(epochRxInstant gnsstime.Instant, m ChannelMeasurement) ChannelMeasurement {
	gnssClock := gnsstime.GnssClock(m.System)
	tRx := gnsstime.ReceiverInstantFromTicks(m.TrackingSampleCounter, m.SampleRateHz, e.instanceID)

	var tTx gnsstime.Instant
	haveTx := m.ValidWord
	if haveTx {
		codePhase := gnsstime.Ticks(int64(math.Round(m.CodePhaseSamples)), m.SampleRateHz)
		symbolTime := gnsstime.Weeks(m.Week).Add(gnsstime.MilliSeconds(m.TowMs)).Sub(codePhase)
		tTx = gnsstime.GnssDuration(m.System, symbolTime)
	}

	tRxGnss, err := e.converter.Convert(tRx, gnssClock)
	if err != nil && haveTx {
		e.bootstrapLocked(tTx, tRx)
		tRxGnss, err = e.converter.Convert(tRx, gnssClock)
	}
	if err != nil {
		log.Printf("observables: channel %d: rx time conversion failed: %v", m.ChannelID, err)
		m.ValidPseudorange = false
		return m
	}
	m.RxTime = tRxGnss

	if haveTx {
		transit := tRxGnss.Diff(tTx).RemainderMod(gnsstime.Weeks(1))
		m.PseudorangeM = speedOfLightMps * transit.AsSeconds()
		m.ValidPseudorange = true
	}

	// Step f: propagate from t_rx to the epoch boundary
	// (epoch_rx_instant − rx_epoch_offset).
	targetBoundary := epochRxInstant.Sub(e.rxEpochOffset)
	dt := targetBoundary.Diff(tRx)
	dtSeconds := dt.AsSeconds()

	m.RxTime = m.RxTime.Add(dt)
	m.CarrierPhaseCyc -= m.CarrierDopplerHz * dtSeconds
	if carrierFreq, ok := e.Frequency(m); ok && carrierFreq != 0 {
		wavelength := speedOfLightMps / carrierFreq
		m.PseudorangeM -= m.CarrierDopplerHz * dtSeconds * wavelength
	}
	m.TrackingSampleCounter += int64(math.Round(dtSeconds * m.SampleRateHz))

	return m
}

// NextEpochTime advances the engine's internal epoch-tick counter by one
// observable interval and returns the nominal (uncorrected) receiver-clock
// instant that tick lands on; FlushEpoch applies rx_epoch_offset itself.
func (e *ObservablesEngine) NextEpochTime() gnsstime.Instant {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.epochTicks++
	return gnsstime.ReceiverInstant(gnsstime.Seconds(float64(e.epochTicks)/e.cfg.RateHz), e.instanceID)
}

// Frequency resolves the carrier frequency for a channel's assigned
// constellation/signal/frequency-slot, delegating to the engine's
// FrequencyTable.
func (e *ObservablesEngine) Frequency(m ChannelMeasurement) (float64, bool) {
	return e.freqTable.Frequency(m.System, m.Signal, m.FreqNum)
}
