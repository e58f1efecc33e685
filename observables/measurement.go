package observables

import "github.com/odrisci/gnss-sdr/gnsstime"

// ChannelMeasurement is a single tracking channel's contribution to one
// receiver-synchronous epoch: everything the ObservablesEngine needs to
// compute a pseudorange/phase/Doppler observable and route it to the right
// RINEX-style observation slot (spec.md §3 ChannelMeasurement / §4.F inputs).
type ChannelMeasurement struct {
	ChannelID int
	System    gnsstime.System
	Signal    Signal
	PRN       int
	FreqNum   int // GLONASS frequency slot; unused by every other system

	// SampleRateHz (fs) and TrackingSampleCounter together form the
	// receiver-clock receive instant t_rx = ticks(TrackingSampleCounter,
	// SampleRateHz). TrackingSampleCounter is also an output: the engine
	// propagates it forward by round(dt*fs) when re-timing to the epoch
	// boundary.
	SampleRateHz          float64
	TrackingSampleCounter int64

	// Week, TowMs and CodePhaseSamples are the tracking loop's decoded
	// time-of-transmission, valid only when ValidWord is set: t_tx =
	// weeks(Week) + ms(TowMs) − ticks(CodePhaseSamples, SampleRateHz).
	Week             int64
	TowMs            float64
	CodePhaseSamples float64
	ValidWord        bool

	CarrierPhaseCyc  float64
	CarrierDopplerHz float64
	CN0DbHz          float64

	// RxTime is an output: the measurement's receive instant projected onto
	// its own GNSS system clock and propagated to the epoch boundary
	// (t_rx_gnss in spec.md §4.F). Its TimeOfWeek().AsSeconds() is the
	// output contract's rx_time field.
	RxTime           gnsstime.Instant
	PseudorangeM     float64
	ValidPseudorange bool
}

// Reset clears a channel slot back to the empty pattern: PRN=0, every flag
// false, channel id preserved (spec.md §4.E, verbatim).
func (m *ChannelMeasurement) Reset() {
	id := m.ChannelID
	*m = ChannelMeasurement{ChannelID: id}
}

// Empty reports whether the channel currently carries no live measurement
// (spec.md §3: "An empty record has PRN=0, all flags false").
func (m *ChannelMeasurement) Empty() bool {
	return m.PRN == 0
}
